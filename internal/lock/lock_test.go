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

package lock

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIsLocked(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("SQLITE_BUSY: database is busy"), true},
		{errors.New("no such table: cookies"), false},
	}
	for _, tc := range tests {
		if got := IsLocked(tc.err); got != tc.want {
			t.Errorf("IsLocked(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestResolveUnknownBrowser(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Resolve(ctx, "not-a-browser", "", nil, 0); err == nil {
		t.Error("Resolve with an unknown browser key: want error, got nil")
	}
}
