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

// Program cookiescan locates, decrypts, and prints the cookies stored by
// one or more browsers installed on the local machine.
//
// Examples
//
// List every cookie in every browser cookiescan can find:
//
//	cookiescan
//
// List cookies for a specific domain, from Chrome only:
//
//	cookiescan -browser chrome -domain example.com
//
// Kill Chrome to break a database lock, query, then relaunch it:
//
//	cookiescan -browser chrome -force -relaunch /Applications/Google\ Chrome.app/Contents/MacOS/Google\ Chrome
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/browser"
)

var (
	browserName    = flag.String("browser", "", "Restrict to this browser family (chrome, firefox, safari, etc.); empty means all")
	profileName    = flag.String("profile", "", "Restrict to this profile directory; empty means all profiles")
	cookieName     = flag.String("name", "", "Exact cookie name filter; empty matches any name")
	domainName     = flag.String("domain", "", "Domain suffix filter; empty matches any domain")
	storePath      = flag.String("store", "", "Explicit path to a store file, bypassing auto-locate")
	doForce        = flag.Bool("force", false, "Kill a browser process holding its store locked, then retry")
	doIncludeExp   = flag.Bool("include-expired", false, "Include cookies whose expiration has already passed")
	doIncludeAll   = flag.Bool("all", false, "Ignore -name/-domain and dump every cookie found (diagnostic use)")
	relaunchPath   = flag.String("relaunch", "", "Path to relaunch the browser at after -force releases its lock")
	doJSON         = flag.Bool("json", false, "Emit results as a JSON array instead of a table")
	queryTimeout   = flag.Duration("timeout", 30*time.Second, "Overall timeout for the query")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: %s [options]

Locate, decrypt, and print browser cookies.

Options:
`, filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	opt := cookiescan.QueryOptions{
		Name:           *cookieName,
		Domain:         *domainName,
		Store:          *storePath,
		Profile:        *profileName,
		Force:          *doForce,
		IncludeExpired: *doIncludeExp,
		IncludeAll:     *doIncludeAll,
		Browser:        parseFamily(*browserName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), *queryTimeout)
	defer cancel()

	var cookies []cookiescan.Cookie
	var err error
	if *relaunchPath != "" {
		// cookiescan.Query always dispatches to the strategies installed by
		// browser's init(), which have no relaunch target configured; build
		// our own Strategy tree instead so -force can bring the browser back.
		cookies, err = queryWithRelaunch(ctx, opt)
	} else {
		cookies, err = cookiescan.Query(ctx, opt)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	if *doJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cookies); err != nil {
			fmt.Fprintf(os.Stderr, "Encoding results: %v\n", err)
			os.Exit(1)
		}
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 4, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "BROWSER\tPROFILE\tDOMAIN\tNAME\tEXPIRES\tDECRYPTED")
	for _, c := range cookies {
		expires := "session"
		if !c.Expires.IsZero() {
			expires = c.Expires.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%v\n",
			c.Meta.Browser, c.Meta.Profile, c.Domain, c.Name, expires, c.Meta.Decrypted)
	}
	tw.Flush()
	fmt.Fprintf(os.Stderr, ">> %d cookies\n", len(cookies))
}

// queryWithRelaunch builds a Strategy tree equivalent to the one browser's
// init() registers globally, except each Chromium strategy is configured to
// relaunch the browser at *relaunchPath after a -force lock resolution.
func queryWithRelaunch(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	families := []cookiescan.BrowserFamily{
		cookiescan.Chrome, cookiescan.Chromium, cookiescan.Edge, cookiescan.Brave,
		cookiescan.Arc, cookiescan.Opera, cookiescan.OperaGX, cookiescan.Vivaldi, cookiescan.Whale,
	}
	var strats []cookiescan.Strategy
	for _, f := range families {
		if opt.Browser != cookiescan.FamilyUnknown && opt.Browser != f {
			continue
		}
		c := browser.NewChromium(f, nil)
		c.RelaunchPath = *relaunchPath
		strats = append(strats, c)
	}
	if opt.Browser == cookiescan.FamilyUnknown || opt.Browser == cookiescan.Firefox {
		strats = append(strats, browser.Gecko{})
	}
	if opt.Browser == cookiescan.FamilyUnknown || opt.Browser == cookiescan.Safari {
		strats = append(strats, browser.WebKit{})
	}
	comp := &browser.Composite{Strategies: strats}
	return comp.Query(ctx, opt)
}

// parseFamily maps a user-provided browser name to a cookiescan.BrowserFamily,
// case-insensitively and ignoring spaces ("Opera GX" == "operagx").
func parseFamily(name string) cookiescan.BrowserFamily {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	switch key {
	case "", "all":
		return cookiescan.FamilyUnknown
	case "chrome":
		return cookiescan.Chrome
	case "chromium":
		return cookiescan.Chromium
	case "edge":
		return cookiescan.Edge
	case "brave":
		return cookiescan.Brave
	case "arc":
		return cookiescan.Arc
	case "opera":
		return cookiescan.Opera
	case "operagx":
		return cookiescan.OperaGX
	case "vivaldi":
		return cookiescan.Vivaldi
	case "whale":
		return cookiescan.Whale
	case "firefox":
		return cookiescan.Firefox
	case "safari":
		return cookiescan.Safari
	default:
		fmt.Fprintf(os.Stderr, "Unknown browser %q; searching all\n", name)
		return cookiescan.FamilyUnknown
	}
}
