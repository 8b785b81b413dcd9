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

// Package keyring obtains and memoizes the master secret Chromium uses to
// encrypt cookie values, for whichever product and OS cookiescan is
// currently examining. A secret is fetched at most once per process per
// (family, OS) pair; concurrent callers for the same pair block on the
// first fetch rather than racing the OS keystore.
package keyring

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/platform"
)

// Kind distinguishes the shape of a fetched Secret.
type Kind int

// Enumerators for Kind.
const (
	KindPassphrase Kind = iota // macOS/Linux: a passphrase to run through PBKDF2
	KindRawKey                 // Windows: an already-unwrapped AES-256 key
)

// Secret is a master secret fetched from the OS keystore.
type Secret struct {
	Kind       Kind
	Passphrase string // valid when Kind == KindPassphrase
	RawKey     []byte // valid when Kind == KindRawKey

	UsedFallback bool // true if the documented Linux fallback passphrase was used
}

// chromeService names the macOS Keychain service/account pair and the
// Linux secret-tool application ID for each Chromium product. Opera and
// Opera GX intentionally share one macOS keychain entry, matching what
// Chromium itself does for that product pair.
type chromeService struct {
	macOSService string
	macOSAccount string
	linuxAppID   string
}

var chromeServices = map[cookiescan.BrowserFamily]chromeService{
	cookiescan.Chrome:   {"Chrome Safe Storage", "Chrome", "chrome"},
	cookiescan.Chromium: {"Chromium Safe Storage", "Chromium", "chromium"},
	cookiescan.Edge:     {"Microsoft Edge Safe Storage", "Microsoft Edge", "microsoft-edge"},
	cookiescan.Brave:    {"Brave Safe Storage", "Brave", "brave"},
	cookiescan.Arc:      {"Arc Safe Storage", "Arc", "arc"},
	cookiescan.Opera:    {"Opera Safe Storage", "Opera", "opera"},
	cookiescan.OperaGX:  {"Opera Safe Storage", "Opera", "opera"}, // shared with Opera
	cookiescan.Vivaldi:  {"Vivaldi Safe Storage", "Vivaldi", "vivaldi"},
	cookiescan.Whale:    {"Whale Safe Storage", "Whale", "naver-whale"},
}

// A Provider fetches and memoizes master secrets. The zero value is ready
// to use.
type Provider struct {
	cache sync.Map // cookiescan.BrowserFamily -> *entry
}

type entry struct {
	once   sync.Once
	secret Secret
	err    error
}

// Get returns the master secret for family, fetching it from the OS
// keystore on first use and memoizing the result (including errors) for
// the remainder of the process.
//
// localStatePath is only consulted on Windows, where the DPAPI-wrapped key
// lives in the profile's "Local State" file rather than a system keystore.
func (p *Provider) Get(ctx context.Context, family cookiescan.BrowserFamily, localStatePath string) (Secret, error) {
	svc, ok := chromeServices[family]
	if !ok {
		return Secret{}, cookiescan.NewError("keyring.Get", cookiescan.KindNoSecret,
			fmt.Errorf("no keystore mapping for %v", family))
	}

	v, _ := p.cache.LoadOrStore(family, &entry{})
	e := v.(*entry)
	e.once.Do(func() {
		e.secret, e.err = fetch(ctx, family, svc, localStatePath)
	})
	return e.secret, e.err
}

// chromeFallbackService is the Keychain entry Chrome itself creates; some
// Chromium forks that don't establish their own entry reuse it.
var chromeFallbackService = chromeService{macOSService: "Chrome Safe Storage", macOSAccount: "Chrome"}

func fetch(ctx context.Context, family cookiescan.BrowserFamily, svc chromeService, localStatePath string) (Secret, error) {
	switch platform.Current() {
	case platform.Darwin:
		pass, err := platform.ReadKeychainSecret(ctx, svc.macOSService, svc.macOSAccount)
		if err != nil && family != cookiescan.Chrome {
			// Retry once against Chrome's own entry: some Chromium forks
			// never create a keychain item of their own.
			pass, err = platform.ReadKeychainSecret(ctx, chromeFallbackService.macOSService, chromeFallbackService.macOSAccount)
		}
		if err != nil {
			return Secret{}, cookiescan.NewError("keyring.fetch", cookiescan.KindNoSecret,
				fmt.Errorf("reading keychain: %w", err))
		}
		return Secret{Kind: KindPassphrase, Passphrase: pass}, nil

	case platform.Linux:
		pass, fallback, err := platform.ReadLinuxSecret(ctx, svc.linuxAppID)
		if err != nil {
			return Secret{}, cookiescan.NewError("keyring.fetch", cookiescan.KindNoSecret,
				fmt.Errorf("reading secret-tool: %w", err))
		}
		if fallback {
			log.Printf("keyring: no secret-tool entry for %s; using documented fallback passphrase", svc.linuxAppID)
		}
		return Secret{Kind: KindPassphrase, Passphrase: pass, UsedFallback: fallback}, nil

	case platform.Windows:
		key, err := platform.ReadDPAPIKey(filepath.Clean(localStatePath))
		if err != nil {
			return Secret{}, cookiescan.NewError("keyring.fetch", cookiescan.KindNoSecret,
				fmt.Errorf("reading DPAPI key: %w", err))
		}
		return Secret{Kind: KindRawKey, RawKey: key}, nil

	default:
		return Secret{}, cookiescan.NewError("keyring.fetch", cookiescan.KindUnsupportedOS, platform.ErrUnsupportedOS)
	}
}
