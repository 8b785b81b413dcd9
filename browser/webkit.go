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
	"github.com/creachadair/cookiescan/bincookie"
	"github.com/creachadair/cookiescan/internal/locate"
)

// WebKit is the cookiescan.Strategy for Safari's .binarycookies files.
// Safari has no profile concept and no decryption step.
type WebKit struct{}

// Family implements cookiescan.Strategy.
func (WebKit) Family() cookiescan.BrowserFamily { return cookiescan.Safari }

// Query implements cookiescan.Strategy.
func (w WebKit) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	hits, err := w.hits(opt)
	if err != nil {
		return nil, fmt.Errorf("browser: locating Safari stores: %w", err)
	}
	var out []cookiescan.Cookie
	for _, h := range hits {
		// A failed store (corrupt, permission-denied) must not abort the
		// other store files of the same browser; it just contributes no
		// records.
		store, err := bincookie.Open(h.Path)
		if err != nil {
			log.Printf("browser: opening %s: %v", h.Path, err)
			continue
		}
		cs, err := store.Query(ctx, opt)
		if err != nil {
			log.Printf("browser: querying %s: %v", h.Path, err)
			continue
		}
		out = append(out, cs...)
	}
	return out, nil
}

func (WebKit) hits(opt cookiescan.QueryOptions) ([]locate.Hit, error) {
	if opt.Store != "" {
		return []locate.Hit{{Family: cookiescan.Safari, Path: opt.Store}}, nil
	}
	return locate.Safari()
}
