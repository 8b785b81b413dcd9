// Copyright 2023 Michael J. Fromberger. All Rights Reserved.
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

// Package firefox reads a Gecko (Firefox) cookies.sqlite database. Values
// in moz_cookies are stored in plaintext; there is no C6 decryption step.
package firefox

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/creachadair/cookiescan"

	_ "modernc.org/sqlite"
)

const baseCookiesQuery = `
SELECT name, value, host, path, expiry, creationTime, isSecure, isHttpOnly, sameSite
FROM moz_cookies`

// Open opens the Firefox cookie database at path read-only.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&cache=shared&_pragma=busy_timeout(1500)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("firefox: open %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// A Store connects to a collection of cookies stored in an SQLite database
// using the Firefox cookie schema.
type Store struct {
	db   *sql.DB
	path string
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Query returns the cookies matching opt from this database.
func (s *Store) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	query, args := buildQuery(opt)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("firefox: query: %w", err)
	}
	defer rows.Close()

	var out []cookiescan.Cookie
	for rows.Next() {
		var expiry, creationTime, sameSite int64
		var isSecure, isHTTPOnly bool
		var name, value, host, path string

		if err := rows.Scan(&name, &value, &host, &path, &expiry, &creationTime,
			&isSecure, &isHTTPOnly, &sameSite); err != nil {
			return nil, fmt.Errorf("firefox: scan: %w", err)
		}

		expires := time.Unix(expiry, 0).UTC()
		if expiry == 0 {
			expires = time.Time{}
		}
		if !opt.IncludeExpired && !expires.IsZero() && expires.Before(time.Now().UTC()) {
			continue
		}

		out = append(out, cookiescan.Cookie{
			Name:    name,
			Value:   value,
			Domain:  host,
			Path:    path,
			Expires: expires,
			Created: time.UnixMicro(creationTime).UTC(),
			Flags: cookiescan.Flags{
				Secure:   isSecure,
				HTTPOnly: isHTTPOnly,
			},
			SameSite: decodeSitePolicy(sameSite),
			Meta: cookiescan.Meta{
				SourceFile: s.path,
				Decrypted:  true, // Firefox never encrypts cookie values
			},
		})
	}
	return out, rows.Err()
}

// buildQuery assembles the SELECT for opt, pushing Name/Domain filters into
// SQL the same way chromedb does.
func buildQuery(opt cookiescan.QueryOptions) (string, []any) {
	if opt.IncludeAll {
		return baseCookiesQuery + ";", nil
	}
	var clauses []string
	var args []any
	if opt.Name != "" {
		clauses = append(clauses, "name = ?")
		args = append(args, opt.Name)
	}
	if opt.Domain != "" {
		suffix := strings.TrimPrefix(opt.Domain, ".")
		clauses = append(clauses, "(host = ? OR host LIKE ?)")
		args = append(args, suffix, "%."+suffix)
	}
	if len(clauses) == 0 {
		return baseCookiesQuery + ";", nil
	}
	return baseCookiesQuery + " WHERE " + strings.Join(clauses, " AND ") + ";", args
}

func decodeSitePolicy(ss int64) cookiescan.SameSite {
	switch ss {
	case 0:
		return cookiescan.None
	case 1:
		return cookiescan.Lax
	case 2:
		return cookiescan.Strict
	default:
		return cookiescan.Unknown
	}
}

func encodeSitePolicy(ss cookiescan.SameSite) int64 {
	switch ss {
	case cookiescan.Lax:
		return 1
	case cookiescan.Strict:
		return 2
	default:
		return 0 // for Firefox this means "None"
	}
}
