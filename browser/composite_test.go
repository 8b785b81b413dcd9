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
	"testing"

	"github.com/creachadair/cookiescan"
)

// fakeStrategy is a cookiescan.Strategy stand-in for tests that should not
// touch the filesystem or the OS keystore.
type fakeStrategy struct {
	family cookiescan.BrowserFamily
	cookie cookiescan.Cookie
	err    error
}

func (f fakeStrategy) Family() cookiescan.BrowserFamily { return f.family }

func (f fakeStrategy) Query(context.Context, cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []cookiescan.Cookie{f.cookie}, nil
}

func TestCompositeQueryMerges(t *testing.T) {
	c := &Composite{Strategies: []cookiescan.Strategy{
		fakeStrategy{family: cookiescan.Chrome, cookie: cookiescan.Cookie{Name: "a"}},
		fakeStrategy{family: cookiescan.Firefox, cookie: cookiescan.Cookie{Name: "b"}},
		fakeStrategy{family: cookiescan.Safari, cookie: cookiescan.Cookie{Name: "c"}},
	}}
	got, err := c.Query(context.Background(), cookiescan.QueryOptions{IncludeAll: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Query returned %d cookies, want 3", len(got))
	}
}

func TestCompositeQueryIgnoresPartialFailure(t *testing.T) {
	c := &Composite{Strategies: []cookiescan.Strategy{
		fakeStrategy{family: cookiescan.Chrome, cookie: cookiescan.Cookie{Name: "a"}},
		fakeStrategy{family: cookiescan.Firefox, err: errors.New("boom")},
	}}
	got, err := c.Query(context.Background(), cookiescan.QueryOptions{IncludeAll: true})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("Query returned %v, want the successful branch's cookie", got)
	}
}

func TestCompositeQueryFailsWhenAllBranchesFail(t *testing.T) {
	want := errors.New("boom")
	c := &Composite{Strategies: []cookiescan.Strategy{
		fakeStrategy{family: cookiescan.Chrome, err: want},
		fakeStrategy{family: cookiescan.Firefox, err: want},
	}}
	_, err := c.Query(context.Background(), cookiescan.QueryOptions{IncludeAll: true})
	if !errors.Is(err, want) {
		t.Fatalf("Query error = %v, want %v", err, want)
	}
}

func TestCompositeFamilyIsUnknown(t *testing.T) {
	var c Composite
	if got := c.Family(); got != cookiescan.FamilyUnknown {
		t.Errorf("Family() = %v, want FamilyUnknown", got)
	}
}

func TestCompositeQueryEmpty(t *testing.T) {
	var c Composite
	cs, err := c.Query(context.Background(), cookiescan.QueryOptions{})
	if err != nil || cs != nil {
		t.Errorf("Query on empty Composite = (%v, %v), want (nil, nil)", cs, err)
	}
}
