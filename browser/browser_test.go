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
	"testing"

	"github.com/creachadair/cookiescan"
)

func TestNewChromiumFamily(t *testing.T) {
	c := NewChromium(cookiescan.Brave, nil)
	if got := c.Family(); got != cookiescan.Brave {
		t.Errorf("Family() = %v, want Brave", got)
	}
	if c.settle() != defaultSettle {
		t.Errorf("settle() = %v, want %v", c.settle(), defaultSettle)
	}
}

func TestRegisteredFamiliesCoverChromium(t *testing.T) {
	for _, f := range chromiumFamilies {
		if !f.IsChromium() {
			t.Errorf("chromiumFamilies contains non-Chromium family %v", f)
		}
	}
}
