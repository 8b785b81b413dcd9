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
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/creachadair/cookiescan"
)

// Composite fans a single Query out across several Strategy values
// concurrently and merges their results. It is itself a cookiescan.Strategy
// so it can stand in for a single family when a caller wants to query, say,
// "every Chromium product" in one call; its Family always reports
// cookiescan.FamilyUnknown since it does not represent one format.
type Composite struct {
	Strategies []cookiescan.Strategy

	// Concurrency bounds how many Strategies run at once; <= 0 means
	// unbounded (one goroutine per Strategy).
	Concurrency int
}

// Family implements cookiescan.Strategy.
func (*Composite) Family() cookiescan.BrowserFamily { return cookiescan.FamilyUnknown }

// Query implements cookiescan.Strategy, running each of c.Strategies
// concurrently and concatenating their results. A failing branch is logged
// and its results dropped; Query only returns an error if every branch
// failed, since the aggregate succeeds whenever any branch does.
func (c *Composite) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	if len(c.Strategies) == 0 {
		return nil, nil
	}
	// Each fan-out gets its own correlation id so concurrent branches' log
	// lines (master secret fetches, lock resolutions) can be told apart.
	corrID := uuid.NewString()
	log.Printf("browser: composite query %s: %d strategies", corrID, len(c.Strategies))

	limit := c.Concurrency
	if limit <= 0 {
		limit = len(c.Strategies)
	}
	sem := make(chan struct{}, limit)

	type result struct {
		cookies []cookiescan.Cookie
		err     error
	}
	results := make([]result, len(c.Strategies))

	var wg sync.WaitGroup
	for i, s := range c.Strategies {
		i, s := i, s
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			cs, err := s.Query(ctx, opt)
			results[i] = result{cookies: cs, err: err}
		}()
	}
	wg.Wait()

	var out []cookiescan.Cookie
	var errs []error
	for _, r := range results {
		if r.err != nil {
			log.Printf("browser: composite query %s: branch failed: %v", corrID, r.err)
			errs = append(errs, r.err)
			continue
		}
		out = append(out, r.cookies...)
	}
	if len(errs) == len(c.Strategies) {
		return nil, fmt.Errorf("browser: composite query %s: every branch failed: %w", corrID, errors.Join(errs...))
	}
	log.Printf("browser: composite query %s: %d cookies, %d branch failures", corrID, len(out), len(errs))
	return out, nil
}
