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

// Package platform isolates the OS-specific primitives cookiescan needs:
// locating the user's home directory, reading the master secret out of the
// platform keystore, and listing/terminating processes that may be holding
// a store file open.
package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// OS identifies the operating system family cookiescan is running on. It is
// a thin wrapper over runtime.GOOS so the rest of the codebase never
// string-compares GOOS directly.
type OS string

// Enumerators for OS.
const (
	Darwin  OS = "darwin"
	Windows OS = "windows"
	Linux   OS = "linux"
	Other   OS = "other"
)

// Current returns the OS cookiescan is currently running on.
func Current() OS {
	switch runtime.GOOS {
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	case "linux":
		return Linux
	default:
		return Other
	}
}

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) { return os.UserHomeDir() }

// ErrUnsupportedOS is returned by platform functions that have no
// implementation for the current runtime.GOOS.
var ErrUnsupportedOS = errors.New("platform: operation not supported on this OS")

// ReadKeychainSecret reads a generic password item from the macOS login
// keychain using the "security" command-line tool, the same mechanism
// Chromium itself uses to fetch its "Safe Storage" passphrase.
func ReadKeychainSecret(ctx context.Context, service, account string) (string, error) {
	if Current() != Darwin {
		return "", fmt.Errorf("%w: ReadKeychainSecret", ErrUnsupportedOS)
	}
	cmd := exec.CommandContext(ctx, "security", "find-generic-password", "-w", "-s", service, "-a", account)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("security find-generic-password: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// linuxFallbackPassphrase is the documented fallback Chromium on Linux uses
// for its "Safe Storage" passphrase when no OS keyring answers secret-tool.
// It is retained verbatim for compatibility.
const linuxFallbackPassphrase = "peanuts"

// ReadLinuxSecret reads the Chromium master passphrase for appID (e.g.
// "chrome", "chromium") from the Secret Service via the "secret-tool"
// command-line tool. If secret-tool is unavailable or has no matching
// item, it falls back to the documented hardcoded passphrase.
func ReadLinuxSecret(ctx context.Context, appID string) (secret string, usedFallback bool, err error) {
	if Current() != Linux {
		return "", false, fmt.Errorf("%w: ReadLinuxSecret", ErrUnsupportedOS)
	}
	cmd := exec.CommandContext(ctx, "secret-tool", "lookup", "application", appID)
	out, err := cmd.Output()
	if err != nil || len(bytes.TrimSpace(out)) == 0 {
		return linuxFallbackPassphrase, true, nil
	}
	return strings.TrimRight(string(out), "\n"), false, nil
}

// dpapiKeyPrefix is prepended by Chromium to the DPAPI-wrapped key it
// stores, base64-encoded, in Local State's os_crypt.encrypted_key field.
const dpapiKeyPrefix = "DPAPI"

// localState is the subset of Chromium's Local State JSON file this
// package cares about.
type localState struct {
	OSCrypt struct {
		EncryptedKey string `json:"encrypted_key"`
	} `json:"os_crypt"`
}

// ReadDPAPIKey reads and unwraps the AES-256 master key Chromium stores in
// localStatePath (the browser profile root's "Local State" file) on
// Windows, via CryptUnprotectData.
func ReadDPAPIKey(localStatePath string) ([]byte, error) {
	if Current() != Windows {
		return nil, fmt.Errorf("%w: ReadDPAPIKey", ErrUnsupportedOS)
	}
	raw, err := os.ReadFile(localStatePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", localStatePath, err)
	}
	var ls localState
	if err := json.Unmarshal(raw, &ls); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", localStatePath, err)
	}
	wrapped, err := base64.StdEncoding.DecodeString(ls.OSCrypt.EncryptedKey)
	if err != nil {
		return nil, fmt.Errorf("decoding encrypted_key: %w", err)
	}
	if !bytes.HasPrefix(wrapped, []byte(dpapiKeyPrefix)) {
		return nil, errors.New("encrypted_key missing DPAPI prefix")
	}
	return unwrapDPAPI(wrapped[len(dpapiKeyPrefix):])
}

// Process describes a running process as reported by the OS process table.
type Process struct {
	PID  int
	Name string
}

// FindProcessesByName returns the processes whose executable name matches
// name exactly (case-insensitive), using "ps" on Darwin/Linux and
// "tasklist" on Windows.
func FindProcessesByName(ctx context.Context, name string) ([]Process, error) {
	switch Current() {
	case Darwin, Linux:
		return findProcessesPosix(ctx, name)
	case Windows:
		return findProcessesWindows(ctx, name)
	default:
		return nil, fmt.Errorf("%w: FindProcessesByName", ErrUnsupportedOS)
	}
}

func findProcessesPosix(ctx context.Context, name string) ([]Process, error) {
	out, err := exec.CommandContext(ctx, "ps", "-axo", "pid,comm").Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	var procs []Process
	for _, line := range strings.Split(string(out), "\n") {
		// The command may itself contain spaces ("Google Chrome"), so it is
		// everything after the PID column, not just the last field.
		line = strings.TrimSpace(line)
		sep := strings.IndexAny(line, " \t")
		if sep < 0 {
			continue
		}
		fields := []string{line[:sep]}
		comm := strings.TrimSpace(line[sep+1:])
		base := comm
		if i := strings.LastIndexByte(comm, '/'); i >= 0 {
			base = comm[i+1:]
		}
		if !strings.EqualFold(base, name) {
			continue
		}
		var pid int
		if _, err := fmt.Sscanf(fields[0], "%d", &pid); err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: base})
	}
	return procs, nil
}

func findProcessesWindows(ctx context.Context, name string) ([]Process, error) {
	image := name
	if !strings.HasSuffix(strings.ToLower(image), ".exe") {
		image += ".exe"
	}
	out, err := exec.CommandContext(ctx, "tasklist", "/FI", "IMAGENAME eq "+image, "/FO", "CSV", "/NH").Output()
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}
	var procs []Process
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		fields := strings.Split(strings.Trim(line, "\r"), "\",\"")
		if len(fields) < 2 {
			continue
		}
		var pid int
		if _, err := fmt.Sscanf(strings.Trim(fields[1], "\""), "%d", &pid); err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: name})
	}
	return procs, nil
}

// KillProcess terminates the process with the given PID.
func KillProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}

// SpawnDetached relaunches path with args as a new, independent process
// (used to bring a browser back up after Force killed it to release a
// database lock).
func SpawnDetached(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	return cmd.Start()
}
