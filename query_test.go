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
	"testing"
)

type stubStrategy struct {
	family  BrowserFamily
	cookies []Cookie
	err     error
}

func (s stubStrategy) Family() BrowserFamily { return s.family }

func (s stubStrategy) Query(context.Context, QueryOptions) ([]Cookie, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cookies, nil
}

func TestQueryUsesRegisteredStrategy(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()

	RegisterStrategy(stubStrategy{family: Chrome, cookies: []Cookie{{Name: "sid"}}})

	got, err := Query(context.Background(), QueryOptions{Browser: Chrome})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Name != "sid" {
		t.Errorf("Query = %+v, want one cookie named sid", got)
	}
}

func TestQueryNoStrategiesRegistered(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()

	if _, err := Query(context.Background(), QueryOptions{}); err == nil {
		t.Error("Query with no registered strategies: want error, got nil")
	}
}

func TestQueryIgnoresFailingStrategy(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()

	RegisterStrategy(stubStrategy{family: Chrome, cookies: []Cookie{{Name: "sid"}}})
	RegisterStrategy(stubStrategy{family: Firefox, err: errors.New("locked")})

	got, err := Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Name != "sid" {
		t.Errorf("Query = %+v, want one cookie named sid", got)
	}
}

func TestQueryFailsWhenEveryStrategyFails(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()

	RegisterStrategy(stubStrategy{family: Chrome, err: errors.New("locked")})
	RegisterStrategy(stubStrategy{family: Firefox, err: errors.New("locked")})

	if _, err := Query(context.Background(), QueryOptions{}); err == nil {
		t.Error("Query with every strategy failing: want error, got nil")
	}
}

func TestQueryAllDeduplicates(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()

	RegisterStrategy(stubStrategy{family: Chrome, cookies: []Cookie{
		{Name: "sid", Domain: "example.com", Path: "/"},
	}})
	RegisterStrategy(stubStrategy{family: Firefox, cookies: []Cookie{
		{Name: "sid", Domain: "example.com", Path: "/"},
	}})

	got, err := QueryAll(context.Background(), []Spec{{Name: "sid"}}, BatchOptions{Deduplicate: true})
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("QueryAll returned %d cookies, want 1 after dedup", len(got))
	}
}

func TestQueryAllContinueOnError(t *testing.T) {
	registryMu.Lock()
	saved := registry
	registry = map[BrowserFamily]Strategy{}
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	}()
	// No strategies registered, so every per-spec Query fails; with
	// ContinueOnError set, QueryAll should still return (nil, err) rather
	// than panicking or blocking.
	_, err := QueryAll(context.Background(), []Spec{{Name: "a"}, {Name: "b"}}, BatchOptions{ContinueOnError: true})
	if err == nil {
		t.Error("QueryAll with no strategies: want error, got nil")
	}
}

func TestQueryAllEmptySpecs(t *testing.T) {
	got, err := QueryAll(context.Background(), nil, BatchOptions{})
	if err != nil || got != nil {
		t.Errorf("QueryAll(nil specs) = (%v, %v), want (nil, nil)", got, err)
	}
}
