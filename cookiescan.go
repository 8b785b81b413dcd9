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

// Package cookiescan locates, decrypts, and normalizes browser cookies
// stored by Chromium, Gecko, and WebKit browser families, without writing
// anything back to the originating store.
package cookiescan

import (
	"context"
	"strings"
	"time"
)

// Cookie is a format-independent representation of a decrypted browser
// cookie, annotated with where it came from.
type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string

	Expires  time.Time // if zero, has no expiration
	Created  time.Time
	Flags    Flags
	SameSite SameSite

	Meta Meta
}

// Meta records the provenance of a Cookie.
type Meta struct {
	Browser    BrowserFamily
	Profile    string // profile directory name, "" if not applicable
	SourceFile string // absolute path to the store file the cookie was read from
	Decrypted  bool   // false if Value is the raw bytes of an encrypted value that could not be decrypted
}

// SameSite describes a first-party cookie policy.
type SameSite int

// Enumerators for SameSite policies.
const (
	Unknown SameSite = iota // unknown or unspecified policy
	Lax                     // top-level navigations and 3rd-party GET requests
	Strict                  // first-party context only
	None                    // unrestricted; send to all origins
)

var sameSiteStrings = [...]string{"Unknown", "Lax", "Strict", "None"}

func (s SameSite) String() string {
	if s < 0 || int(s) >= len(sameSiteStrings) {
		return sameSiteStrings[0]
	}
	return sameSiteStrings[s]
}

// Flags represents the optional flags that can be set on a cookie.
type Flags struct {
	Secure   bool // only send this cookie on an encrypted connection
	HTTPOnly bool // do not expose this cookie to scripts
}

// BrowserFamily identifies the store format and, for Chromium, the specific
// product a store was found under.
type BrowserFamily int

// Enumerators for BrowserFamily.
const (
	FamilyUnknown BrowserFamily = iota
	Chrome
	Chromium
	Edge
	Brave
	Arc
	Opera
	OperaGX
	Vivaldi
	Whale
	Firefox
	Safari
)

var familyStrings = [...]string{
	"Unknown", "Chrome", "Chromium", "Edge", "Brave", "Arc",
	"Opera", "OperaGX", "Vivaldi", "Whale", "Firefox", "Safari",
}

func (f BrowserFamily) String() string {
	if f < 0 || int(f) >= len(familyStrings) {
		return familyStrings[0]
	}
	return familyStrings[f]
}

// IsChromium reports whether f names a member of the Chromium product
// family, as opposed to Gecko (Firefox) or WebKit (Safari).
func (f BrowserFamily) IsChromium() bool {
	switch f {
	case Chrome, Chromium, Edge, Brave, Arc, Opera, OperaGX, Vivaldi, Whale:
		return true
	default:
		return false
	}
}

// A Spec names a cookie or set of cookies to look up, by exact name and/or
// domain suffix. An empty field matches anything.
type Spec struct {
	Name   string // exact cookie name; "" matches any name
	Domain string // domain suffix; "" matches any domain
}

// MatchName reports whether name satisfies s's Name constraint.
func (s Spec) MatchName(name string) bool {
	return s.Name == "" || s.Name == name
}

// MatchDomain reports whether domain satisfies s's Domain constraint.
//
// A cookie domain matches a spec domain if they are equal, or if the cookie
// domain is a (dot-separated) subdomain of the spec domain. A leading "."
// on either side, as used by browser stores to mark host-only vs. domain
// cookies, is ignored for comparison purposes.
func (s Spec) MatchDomain(domain string) bool {
	if s.Domain == "" {
		return true
	}
	want := strings.TrimPrefix(s.Domain, ".")
	have := strings.TrimPrefix(domain, ".")
	if have == want {
		return true
	}
	return strings.HasSuffix(have, "."+want)
}

// QueryOptions controls a single Query.
type QueryOptions struct {
	Name   string // exact cookie name filter; "" matches any
	Domain string // domain suffix filter; "" matches any
	Store  string // explicit path to a store file; "" means auto-locate

	Browser BrowserFamily // restrict the search to this family; FamilyUnknown means any
	Profile string        // restrict the search to this profile; "" means any

	Force          bool // kill a process holding the store locked, then retry
	IncludeExpired bool // include cookies whose Expires has already passed
	IncludeAll     bool // ignore Name/Domain and return every row (diagnostic use)
}

func (o QueryOptions) spec() Spec { return Spec{Name: o.Name, Domain: o.Domain} }

// BatchOptions controls QueryAll's fan-out of one Query per Spec.
type BatchOptions struct {
	QueryOptions

	Deduplicate     bool // collapse cookies with identical Name/Domain, keeping the longest non-empty Value
	ContinueOnError bool // keep going if one Spec's Query fails; collect the errors
	Concurrency     int  // max concurrent per-Spec Query calls; <=0 means unbounded
}

// A Strategy knows how to locate and query the stores of one browser
// family.
type Strategy interface {
	// Family reports the browser family this Strategy handles.
	Family() BrowserFamily

	// Query returns the cookies from this family's stores matching opt.
	Query(ctx context.Context, opt QueryOptions) ([]Cookie, error)
}
