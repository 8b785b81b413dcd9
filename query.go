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

package cookiescan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// registry holds the Strategy implementations available to Query and
// QueryAll. This package does not import the Strategy implementations
// directly -- that would create an import cycle, since each Strategy
// implementation (see package browser) needs the types declared here.
// Instead, a Strategy package registers itself from an init function, and
// callers pull it in with a blank import, the same pattern database/sql
// uses for drivers.
var (
	registryMu sync.Mutex
	registry   = map[BrowserFamily]Strategy{}
)

// RegisterStrategy installs s as the Strategy responsible for s.Family().
// A later call for the same family replaces the previous registration.
func RegisterStrategy(s Strategy) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Family()] = s
}

// registered returns the currently registered strategies, restricted to
// only if only != FamilyUnknown, in a stable order.
func registered(only BrowserFamily) []Strategy {
	registryMu.Lock()
	defer registryMu.Unlock()
	var out []Strategy
	for fam, s := range registry {
		if only == FamilyUnknown || fam == only {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Family() < out[j].Family() })
	return out
}

// Query returns the cookies matching opt, across every registered Strategy
// (or just opt.Browser, if it names one). A Strategy that fails contributes
// no records but does not abort the others; Query only returns an error if
// every registered Strategy failed.
func Query(ctx context.Context, opt QueryOptions) ([]Cookie, error) {
	strats := registered(opt.Browser)
	if len(strats) == 0 {
		return nil, fail("Query", KindNotFound, errors.New("no browser strategies registered; import a package that calls RegisterStrategy"))
	}
	var out []Cookie
	var errs []error
	for _, s := range strats {
		cs, err := s.Query(ctx, opt)
		if err != nil {
			errs = append(errs, fmt.Errorf("querying %v: %w", s.Family(), err))
			continue
		}
		out = append(out, cs...)
	}
	if len(errs) == len(strats) {
		return nil, fail("Query", KindNotFound, errors.Join(errs...))
	}
	return out, nil
}

// QueryAll runs Query once per entry in specs and aggregates the results.
// Lookups run concurrently, bounded by opt.Concurrency (unbounded if <= 0).
func QueryAll(ctx context.Context, specs []Spec, opt BatchOptions) ([]Cookie, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	limit := opt.Concurrency
	if limit <= 0 {
		limit = len(specs)
	}
	sem := make(chan struct{}, limit)

	type result struct {
		cookies []Cookie
		err     error
	}
	results := make([]result, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		i, spec := i, spec
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			qopt := opt.QueryOptions
			qopt.Name = spec.Name
			qopt.Domain = spec.Domain
			cs, err := Query(ctx, qopt)
			results[i] = result{cookies: cs, err: err}
		}()
	}
	wg.Wait()

	var out []Cookie
	var errs []error
	for _, r := range results {
		if r.err != nil {
			if !opt.ContinueOnError {
				return nil, r.err
			}
			errs = append(errs, r.err)
			continue
		}
		out = append(out, r.cookies...)
	}

	if opt.Deduplicate {
		out = dedupe(out)
	}
	if len(errs) > 0 {
		return out, errors.Join(errs...)
	}
	return out, nil
}

// dedupe collapses cookies with identical Name/Domain into one, at the
// position of the first occurrence, keeping the cookie with the longest
// non-empty Value.
func dedupe(cs []Cookie) []Cookie {
	type key struct{ name, domain string }
	index := make(map[key]int, len(cs))
	out := cs[:0]
	for _, c := range cs {
		k := key{c.Name, c.Domain}
		if i, ok := index[k]; ok {
			if len(c.Value) > len(out[i].Value) {
				out[i] = c
			}
			continue
		}
		index[k] = len(out)
		out = append(out, c)
	}
	return out
}
