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

// Package browser wires the format-specific store readers (chromedb,
// firefox, bincookie) and the OS-specific helpers (internal/locate,
// internal/keyring, internal/lock) into cookiescan.Strategy
// implementations, one per browser family, plus a Composite that fans a
// query out across several of them concurrently.
//
// Importing this package for its side effect registers a Strategy for
// every known family with the cookiescan package, the same pattern
// database/sql uses for drivers:
//
//	import _ "github.com/creachadair/cookiescan/browser"
package browser

import (
	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/platform"
)

// chromiumProcessKeys maps a Chromium product to the internal/lock process
// name key that might be holding its cookie database open. Products with no
// entry here cannot have a lock auto-resolved; QueryOptions.Force still
// reports an error rather than silently doing nothing.
var chromiumProcessKeys = map[cookiescan.BrowserFamily]string{
	cookiescan.Chrome: "chrome",
	cookiescan.Edge:   "edge",
	cookiescan.Brave:  "brave",
}

// cbcIterations is the PBKDF2 iteration count Chromium uses to derive its
// AES-128 CBC key from the keychain/keyring passphrase: 1003 everywhere
// except Linux, where it derives the key with a single iteration.
func cbcIterations() int {
	if platform.Current() == platform.Linux {
		return 1
	}
	return 1003
}
