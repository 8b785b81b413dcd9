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

// Package lock classifies SQLite "database is locked"/"database is busy"
// errors and, when the caller opts in, resolves them by terminating the
// browser process holding the store open and retrying once.
package lock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/creachadair/cookiescan/internal/platform"
)

// IsLocked reports whether err looks like a SQLite lock-contention error
// from a store file that a running browser still has open.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database is busy") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "sqlite_locked")
}

// processNames lists the executable names that might hold a given browser
// family's cookie store open, across OSes. Resolve looks up every name in
// the list and terminates every matching process; names that do not exist
// on the current OS (e.g. "Google Chrome" off macOS) simply match nothing.
var processNames = map[string][]string{
	"chrome":  {"Google Chrome", "chrome", "chrome.exe"},
	"edge":    {"Microsoft Edge", "msedge", "msedge.exe"},
	"brave":   {"Brave Browser", "brave", "brave.exe"},
	"firefox": {"firefox", "firefox.exe"},
	"safari":  {"Safari"},
}

// Resolve attempts to release a lock on a store belonging to browserKey
// (one of the keys in processNames) by terminating the processes holding
// it open. It waits settle for the OS to release the file handle before
// returning. If relaunchPath is non-empty, Resolve respawns the browser
// after settling so the user's session is not lost.
func Resolve(ctx context.Context, browserKey, relaunchPath string, relaunchArgs []string, settle time.Duration) error {
	names := processNames[browserKey]
	if len(names) == 0 {
		return errors.New("lock: no known process names for " + browserKey)
	}

	var killed bool
	for _, name := range names {
		procs, err := platform.FindProcessesByName(ctx, name)
		if err != nil {
			continue
		}
		for _, p := range procs {
			if err := platform.KillProcess(p.PID); err == nil {
				killed = true
			}
		}
	}
	if !killed {
		return errors.New("lock: no running process found to release the store")
	}

	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return ctx.Err()
	}

	if relaunchPath != "" {
		return platform.SpawnDetached(relaunchPath, relaunchArgs...)
	}
	return nil
}
