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
	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/keyring"
)

// chromiumFamilies lists every BrowserFamily this package knows how to
// locate and decrypt under the Chromium scheme.
var chromiumFamilies = []cookiescan.BrowserFamily{
	cookiescan.Chrome,
	cookiescan.Chromium,
	cookiescan.Edge,
	cookiescan.Brave,
	cookiescan.Arc,
	cookiescan.Opera,
	cookiescan.OperaGX,
	cookiescan.Vivaldi,
	cookiescan.Whale,
}

// init registers a Strategy for every known browser family. All Chromium
// strategies share one keyring.Provider, so a master secret is fetched from
// the OS keystore at most once per family for the life of the process.
func init() {
	keys := &keyring.Provider{}
	for _, f := range chromiumFamilies {
		cookiescan.RegisterStrategy(NewChromium(f, keys))
	}
	cookiescan.RegisterStrategy(Gecko{})
	cookiescan.RegisterStrategy(WebKit{})
}
