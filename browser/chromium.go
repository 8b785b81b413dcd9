// Copyright 2020 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package browser

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/chromedb"
	"github.com/creachadair/cookiescan/internal/keyring"
	"github.com/creachadair/cookiescan/internal/locate"
	"github.com/creachadair/cookiescan/internal/lock"
)

// defaultSettle is how long Chromium waits after killing a browser process
// for the OS to release its lock on the cookie database.
const defaultSettle = 2 * time.Second

// Chromium is a cookiescan.Strategy for one Chromium-family product (Chrome,
// Edge, Brave, and so on -- anything with family.IsChromium() true).
type Chromium struct {
	family cookiescan.BrowserFamily
	keys   *keyring.Provider

	// RelaunchPath and RelaunchArgs, if set, tell Query how to bring the
	// browser back up after Force kills it to release a locked database.
	RelaunchPath string
	RelaunchArgs []string
	Settle       time.Duration
}

// NewChromium returns a Strategy for family, which must satisfy
// family.IsChromium(). keys may be shared across several Chromium
// strategies (e.g. by register.go) so the master secret for each family is
// fetched from the OS keystore at most once per process; a nil keys creates
// a private Provider.
func NewChromium(family cookiescan.BrowserFamily, keys *keyring.Provider) *Chromium {
	if keys == nil {
		keys = &keyring.Provider{}
	}
	return &Chromium{family: family, keys: keys, Settle: defaultSettle}
}

// Family implements cookiescan.Strategy.
func (c *Chromium) Family() cookiescan.BrowserFamily { return c.family }

// Query implements cookiescan.Strategy.
func (c *Chromium) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	hits, err := c.hits(opt)
	if err != nil {
		return nil, fmt.Errorf("browser: locating %v stores: %w", c.family, err)
	}
	var out []cookiescan.Cookie
	for _, h := range hits {
		cs, err := c.queryHit(ctx, h, opt)
		if err != nil {
			// A failed store (locked, corrupt, permission-denied) must not
			// abort the other profiles of the same browser; it just
			// contributes no records.
			log.Printf("browser: %v store %s: %v", c.family, h.Path, err)
			continue
		}
		out = append(out, cs...)
	}
	return out, nil
}

// hits resolves the store(s) to scan: the explicit opt.Store path if given,
// otherwise whatever locate.Chromium finds.
func (c *Chromium) hits(opt cookiescan.QueryOptions) ([]locate.Hit, error) {
	if opt.Store != "" {
		return []locate.Hit{{Family: c.family, Profile: opt.Profile, Path: opt.Store}}, nil
	}
	return locate.Chromium(c.family, opt.Profile)
}

func (c *Chromium) queryHit(ctx context.Context, h locate.Hit, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	store, err := chromedb.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("browser: opening %s: %w", h.Path, err)
	}
	defer store.Close()

	var localState string
	if h.Root != "" {
		localState = filepath.Join(h.Root, "Local State")
	}
	secret, err := c.keys.Get(ctx, c.family, localState)
	if err != nil {
		// No master secret: continue keyless. chromedb.Store already treats
		// an unset key as decrypted=false per record rather than failing.
		log.Printf("browser: master secret for %v: %v; continuing keyless", c.family, err)
	} else {
		store.SetKey(toChromeKey(secret))
	}

	cs, err := store.Query(ctx, opt)
	if err != nil && opt.Force && lock.IsLocked(err) {
		if rerr := lock.Resolve(ctx, chromiumProcessKeys[c.family], c.RelaunchPath, c.RelaunchArgs, c.settle()); rerr != nil {
			return nil, cookiescan.NewError("browser.Chromium.Query", cookiescan.KindLocked,
				fmt.Errorf("resolving lock on %s: %w", h.Path, rerr))
		}
		cs, err = store.Query(ctx, opt)
	}
	if err != nil {
		if lock.IsLocked(err) {
			return nil, cookiescan.NewError("browser.Chromium.Query", cookiescan.KindLocked,
				fmt.Errorf("querying %s: %w", h.Path, err))
		}
		return nil, fmt.Errorf("browser: querying %s: %w", h.Path, err)
	}

	for i := range cs {
		cs[i].Meta.Browser = c.family
		cs[i].Meta.Profile = h.Profile
	}
	return cs, nil
}

func (c *Chromium) settle() time.Duration {
	if c.Settle <= 0 {
		return defaultSettle
	}
	return c.Settle
}

// toChromeKey converts a keyring.Secret into the chromedb.Key shape its
// scheme requires.
func toChromeKey(secret keyring.Secret) chromedb.Key {
	if secret.Kind == keyring.KindRawKey {
		return chromedb.GCMKey(secret.RawKey)
	}
	return chromedb.DeriveCBCKey(secret.Passphrase, cbcIterations())
}
