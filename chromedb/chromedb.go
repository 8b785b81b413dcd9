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

// Package chromedb reads a Chromium-family ("Chrome", "Chromium", "Edge",
// "Brave", "Arc", "Opera", "Opera GX", "Vivaldi", "Whale") cookies database
// and decrypts its values.
package chromedb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/internal/lock"

	_ "modernc.org/sqlite"
)

const baseCookiesQuery = `
SELECT
  name, value, encrypted_value, host_key, path,
  expires_utc, creation_utc,
  is_secure, is_httponly, samesite
FROM cookies`

const readMetaVersionStmt = `SELECT value FROM meta WHERE key = 'version'`

// Open opens the Chromium cookie database at path read-only. The returned
// Store does not modify the file; callers that need concurrent access
// alongside a running browser should retry on a locked-database error (see
// package internal/lock).
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&cache=shared&_pragma=busy_timeout(1500)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("chromedb: open %s: %w", path, err)
	}
	s := &Store{db: db, path: path}
	s.schemaVersion, _ = s.readSchemaVersion(context.Background())
	return s, nil
}

// A Store connects to a Chromium cookie database stored as SQLite using the
// Google Chrome cookie schema.
type Store struct {
	db            *sql.DB
	path          string
	key           Key
	hasKey        bool
	schemaVersion int
}

// SetKey installs the decryption key used for encrypted_value columns. If
// no key is set, Query reports encrypted rows with Meta.Decrypted=false and
// the raw encrypted bytes as Value.
func (s *Store) SetKey(k Key) { s.key, s.hasKey = k, true }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) readSchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, readMetaVersionStmt).Scan(&v)
	return v, err
}

// Query returns the cookies matching opt from this database.
func (s *Store) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	query, args := buildQuery(opt)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if lock.IsLocked(err) {
			return nil, cookiescan.NewError("chromedb.Query", cookiescan.KindLocked, err)
		}
		return nil, fmt.Errorf("chromedb: query: %w", err)
	}
	defer rows.Close()

	var out []cookiescan.Cookie
	for rows.Next() {
		var expiresUTC, creationUTC, isSecure, isHTTPOnly, sameSite int64
		var name, value, hostKey, path string
		var encValue []byte
		if err := rows.Scan(&name, &value, &encValue, &hostKey, &path,
			&expiresUTC, &creationUTC, &isSecure, &isHTTPOnly, &sameSite); err != nil {
			return nil, cookiescan.NewError("chromedb.Query", cookiescan.KindMalformed, err)
		}

		decrypted := true
		if value == "" && len(encValue) != 0 {
			if !s.hasKey {
				value, decrypted = string(encValue), false
			} else if dec, err := decryptValue(s.key, encValue, s.schemaVersion); err != nil {
				// A single row's decryption failure (wrong key, bad GCM tag,
				// malformed CBC length) must not abort the whole scan: fall
				// back to the raw value and let the caller see decrypted=false.
				log.Print(cookiescan.NewError("chromedb.Query", cookiescan.KindDecryptFailed, err))
				value, decrypted = string(encValue), false
			} else {
				value = string(dec)
			}
		}

		expires := cookiescan.ChromeTime(expiresUTC)
		if !opt.IncludeExpired && !expires.IsZero() && expires.Before(time.Now().UTC()) {
			continue
		}

		out = append(out, cookiescan.Cookie{
			Name:    name,
			Value:   value,
			Domain:  hostKey,
			Path:    path,
			Expires: expires,
			Created: cookiescan.ChromeTime(creationUTC),
			Flags: cookiescan.Flags{
				Secure:   isSecure != 0,
				HTTPOnly: isHTTPOnly != 0,
			},
			SameSite: decodeSitePolicy(sameSite),
			Meta: cookiescan.Meta{
				SourceFile: s.path,
				Decrypted:  decrypted,
			},
		})
	}
	return out, rows.Err()
}

// buildQuery assembles the SELECT for opt. Name and Domain are pushed into
// SQL as an exact match and a suffix match respectively; IncludeAll skips
// both filters.
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
		clauses = append(clauses, "(host_key = ? OR host_key LIKE ?)")
		args = append(args, suffix, "%."+suffix)
	}
	if len(clauses) == 0 {
		return baseCookiesQuery + ";", nil
	}
	return baseCookiesQuery + " WHERE " + strings.Join(clauses, " AND ") + ";", args
}

// decodeSitePolicy maps a Chrome SameSite policy to the generic enum.
func decodeSitePolicy(v int64) cookiescan.SameSite {
	switch v {
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

// encodeSitePolicy maps a generic SameSite policy to the Chrome enum, kept
// for parity with the decode table.
func encodeSitePolicy(p cookiescan.SameSite) int64 {
	switch p {
	case cookiescan.None:
		return 0
	case cookiescan.Lax:
		return 1
	case cookiescan.Strict:
		return 2
	default:
		return -1 // unspecified
	}
}
