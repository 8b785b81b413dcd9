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

package platform

import "testing"

func TestCurrent(t *testing.T) {
	switch Current() {
	case Darwin, Windows, Linux, Other:
		// one of the known values; nothing further to check
	default:
		t.Errorf("Current() returned an unrecognized OS: %q", Current())
	}
}

func TestHomeDir(t *testing.T) {
	if _, err := HomeDir(); err != nil {
		t.Errorf("HomeDir: %v", err)
	}
}
