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

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/firefox"
	"github.com/creachadair/cookiescan/internal/locate"
)

// Gecko is the cookiescan.Strategy for Firefox's cookies.sqlite. Gecko
// cookie values are never encrypted, so this strategy needs no keyring.
type Gecko struct{}

// Family implements cookiescan.Strategy.
func (Gecko) Family() cookiescan.BrowserFamily { return cookiescan.Firefox }

// Query implements cookiescan.Strategy.
func (g Gecko) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	hits, err := g.hits(opt)
	if err != nil {
		return nil, fmt.Errorf("browser: locating Firefox stores: %w", err)
	}
	var out []cookiescan.Cookie
	for _, h := range hits {
		cs, err := g.queryHit(ctx, h, opt)
		if err != nil {
			// A failed profile must not abort the others; it just
			// contributes no records.
			log.Printf("browser: Firefox store %s: %v", h.Path, err)
			continue
		}
		out = append(out, cs...)
	}
	return out, nil
}

func (Gecko) hits(opt cookiescan.QueryOptions) ([]locate.Hit, error) {
	if opt.Store != "" {
		return []locate.Hit{{Family: cookiescan.Firefox, Profile: opt.Profile, Path: opt.Store}}, nil
	}
	return locate.Gecko(opt.Profile)
}

func (Gecko) queryHit(ctx context.Context, h locate.Hit, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	store, err := firefox.Open(h.Path)
	if err != nil {
		return nil, fmt.Errorf("browser: opening %s: %w", h.Path, err)
	}
	defer store.Close()

	cs, err := store.Query(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("browser: querying %s: %w", h.Path, err)
	}
	for i := range cs {
		cs[i].Meta.Profile = h.Profile
	}
	return cs, nil
}
