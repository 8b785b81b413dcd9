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

// Package locate discovers on-disk cookie store files for a browser family,
// across the user-data-root conventions of macOS, Windows, and Linux.
package locate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/platform"
)

// A Hit describes one discovered store file.
type Hit struct {
	Family  cookiescan.BrowserFamily
	Profile string // profile directory name, e.g. "Default", "Profile 1"
	Path    string // absolute path to the store file
	Root    string // the family's user-data root (holds "Local State" on Windows); "" for Firefox/Safari
}

// userDataRoot returns the directory that holds a Chromium product's
// profile directories, for the current OS.
func userDataRoot(home string, os_ platform.OS, f cookiescan.BrowserFamily) string {
	switch os_ {
	case platform.Darwin:
		dir := map[cookiescan.BrowserFamily]string{
			cookiescan.Chrome:   "Google/Chrome",
			cookiescan.Chromium: "Chromium",
			cookiescan.Edge:     "Microsoft Edge",
			cookiescan.Brave:    "BraveSoftware/Brave-Browser",
			cookiescan.Arc:      "Arc/User Data",
			cookiescan.Opera:    "com.operasoftware.Opera",
			cookiescan.OperaGX:  "com.operasoftware.OperaGX",
			cookiescan.Vivaldi:  "Vivaldi",
			cookiescan.Whale:    "Naver/Whale",
		}[f]
		if dir == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support", dir)
	case platform.Linux:
		dir := map[cookiescan.BrowserFamily]string{
			cookiescan.Chrome:   "google-chrome",
			cookiescan.Chromium: "chromium",
			cookiescan.Edge:     "microsoft-edge",
			cookiescan.Brave:    "BraveSoftware/Brave-Browser",
			cookiescan.Opera:    "opera",
			cookiescan.Vivaldi:  "vivaldi",
		}[f]
		if dir == "" {
			return ""
		}
		return filepath.Join(home, ".config", dir)
	case platform.Windows:
		dir := map[cookiescan.BrowserFamily]string{
			cookiescan.Chrome:   filepath.Join("Google", "Chrome", "User Data"),
			cookiescan.Chromium: filepath.Join("Chromium", "User Data"),
			cookiescan.Edge:     filepath.Join("Microsoft", "Edge", "User Data"),
			cookiescan.Brave:    filepath.Join("BraveSoftware", "Brave-Browser", "User Data"),
			cookiescan.Opera:    filepath.Join("Opera Software", "Opera Stable"),
			cookiescan.OperaGX:  filepath.Join("Opera Software", "Opera GX Stable"),
			cookiescan.Vivaldi:  filepath.Join("Vivaldi", "User Data"),
		}[f]
		if dir == "" {
			return ""
		}
		return filepath.Join(home, "AppData", "Local", dir)
	default:
		return ""
	}
}

// geckoRoot returns the Firefox profiles root for the current OS.
func geckoRoot(home string, os_ platform.OS) string {
	switch os_ {
	case platform.Darwin:
		return filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles")
	case platform.Linux:
		return filepath.Join(home, ".mozilla", "firefox")
	case platform.Windows:
		return filepath.Join(home, "AppData", "Roaming", "Mozilla", "Firefox", "Profiles")
	default:
		return ""
	}
}

// safariPaths returns the fixed set of .binarycookies paths Safari and its
// Containers sandbox variant use. Safari only exists on macOS.
func safariPaths(home string) []string {
	return []string{
		filepath.Join(home, "Library", "Containers", "com.apple.Safari", "Data", "Library", "Cookies", "Cookies.binarycookies"),
		filepath.Join(home, "Library", "Cookies", "Cookies.binarycookies"),
	}
}

// chromiumCookieFile is the relative path of the cookies database within a
// Chromium profile directory, across schema versions old and new.
var chromiumCookieFile = []string{
	filepath.Join("Network", "Cookies"), // Chrome 96+
	"Cookies",                           // older Chrome, and most forks
}

// Chromium discovers cookie stores for f (which must satisfy
// f.IsChromium()) under profile, or all profiles if profile == "".
func Chromium(f cookiescan.BrowserFamily, profile string) ([]Hit, error) {
	home, err := platform.HomeDir()
	if err != nil {
		return nil, err
	}
	root := userDataRoot(home, platform.Current(), f)
	if root == "" {
		return nil, nil
	}
	profiles, err := profileDirs(root, profile)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, p := range profiles {
		for _, rel := range chromiumCookieFile {
			path := filepath.Join(root, p, rel)
			if fileExists(path) {
				hits = append(hits, Hit{Family: f, Profile: p, Path: path, Root: root})
				break
			}
		}
	}
	return hits, nil
}

// Gecko discovers cookies.sqlite files under the Firefox profiles root, or
// just the named profile if profile != "".
func Gecko(profile string) ([]Hit, error) {
	home, err := platform.HomeDir()
	if err != nil {
		return nil, err
	}
	root := geckoRoot(home, platform.Current())
	if root == "" {
		return nil, nil
	}
	profiles, err := profileDirs(root, profile)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, p := range profiles {
		path := filepath.Join(root, p, "cookies.sqlite")
		if fileExists(path) {
			hits = append(hits, Hit{Family: cookiescan.Firefox, Profile: p, Path: path})
		}
	}
	return hits, nil
}

// Safari discovers Safari's .binarycookies files. Safari has no profile
// concept, so Hit.Profile is always "".
func Safari() ([]Hit, error) {
	home, err := platform.HomeDir()
	if err != nil {
		return nil, err
	}
	var hits []Hit
	for _, path := range safariPaths(home) {
		if fileExists(path) {
			hits = append(hits, Hit{Family: cookiescan.Safari, Path: path})
		}
	}
	return hits, nil
}

// profileDirs lists every subdirectory of root, sorted by name, as a
// candidate profile directory; if want is non-empty it returns just want.
func profileDirs(root, want string) ([]string, error) {
	if want != "" {
		return []string{want}, nil
	}
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
