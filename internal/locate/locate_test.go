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

package locate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/platform"
)

func TestUserDataRootUnknownFamily(t *testing.T) {
	if got := userDataRoot("/home/x", platform.Linux, cookiescan.Firefox); got != "" {
		t.Errorf("userDataRoot(Firefox) = %q, want empty", got)
	}
}

func TestUserDataRootPerOS(t *testing.T) {
	tests := []struct {
		os   platform.OS
		f    cookiescan.BrowserFamily
		want string
	}{
		{platform.Darwin, cookiescan.Chrome, filepath.Join("/home/x", "Library", "Application Support", "Google/Chrome")},
		{platform.Linux, cookiescan.Chrome, filepath.Join("/home/x", ".config", "google-chrome")},
		{platform.Windows, cookiescan.Chrome, filepath.Join("/home/x", "AppData", "Local", "Google", "Chrome", "User Data")},
	}
	for _, tc := range tests {
		if got := userDataRoot("/home/x", tc.os, tc.f); got != tc.want {
			t.Errorf("userDataRoot(%v, %v) = %q, want %q", tc.os, tc.f, got, tc.want)
		}
	}
}

func TestProfileDirsExplicit(t *testing.T) {
	got, err := profileDirs("/does/not/exist", "Default")
	if err != nil {
		t.Fatalf("profileDirs: %v", err)
	}
	if len(got) != 1 || got[0] != "Default" {
		t.Errorf("profileDirs(want=Default) = %v, want [Default]", got)
	}
}

func TestProfileDirsListsSubdirs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"Default", "Profile 1", "zzz"} {
		if err := os.Mkdir(filepath.Join(root, name), 0700); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "Local State"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := profileDirs(root, "")
	if err != nil {
		t.Fatalf("profileDirs: %v", err)
	}
	want := []string{"Default", "Profile 1", "zzz"}
	if len(got) != len(want) {
		t.Fatalf("profileDirs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("profileDirs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChromiumFindsRootAndCookieFile(t *testing.T) {
	home := t.TempDir()
	profileDir := filepath.Join(home, "Library", "Application Support", "Google/Chrome", "Default")
	if err := os.MkdirAll(profileDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, "Cookies"), []byte("sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	hits, err := Chromium(cookiescan.Chrome, "")
	if err != nil {
		t.Fatalf("Chromium: %v", err)
	}
	if platform.Current() != platform.Darwin {
		t.Skip("this fixture only matches the macOS user-data-root layout")
	}
	if len(hits) != 1 {
		t.Fatalf("Chromium returned %d hits, want 1", len(hits))
	}
	h := hits[0]
	if h.Profile != "Default" || h.Root == "" {
		t.Errorf("hit = %+v, want Profile=Default and a non-empty Root", h)
	}
}
