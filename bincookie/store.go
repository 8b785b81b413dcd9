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

package bincookie

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/creachadair/atomicfile"
	"github.com/creachadair/cookiescan"
)

// Open opens a bincookie file and returns a Store containing its data.
func Open(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, err
	}
	return &Store{
		path: path,
		file: f,
	}, nil
}

// A Store represents a collection of cookies read from a .binarycookies
// file.
type Store struct {
	path string
	file *File
}

// File returns the parsed File backing s, including any PageErrors
// encountered while reading it.
func (s *Store) File() *File { return s.file }

// WriteTo encodes the file associated with s in binary format to w. It is
// retained for round-tripping a File this package parsed or constructed;
// Query never calls it, since this engine never writes back to a live
// browser store.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	return s.file.WriteTo(w)
}

// Commit rewrites s.path atomically with the current in-memory contents of
// s.File(). It exists to support tooling that constructs or edits a File
// offline (e.g. test fixtures); the query engine itself never calls it.
func (s *Store) Commit() error {
	f, err := atomicfile.New(s.path, 0600)
	if err != nil {
		return err
	}
	defer f.Cancel()
	if _, err := s.file.WriteTo(f); err != nil {
		return err
	}
	return f.Close()
}

// Query returns the cookies matching opt from this file.
func (s *Store) Query(ctx context.Context, opt cookiescan.QueryOptions) ([]cookiescan.Cookie, error) {
	spec := cookiescan.Spec{Domain: opt.Domain}
	now := time.Now().UTC()

	var out []cookiescan.Cookie
	for _, page := range s.file.Pages {
		for _, c := range page.Cookies {
			cc := c.ToCookie()
			if !opt.IncludeAll {
				if opt.Name != "" && cc.Name != opt.Name {
					continue
				}
				if opt.Domain != "" && !spec.MatchDomain(cc.Domain) {
					continue
				}
			}
			if !opt.IncludeExpired && !cc.Expires.IsZero() && cc.Expires.Before(now) {
				continue
			}
			cc.Meta = cookiescan.Meta{
				Browser:    cookiescan.Safari,
				SourceFile: s.path,
				Decrypted:  true, // .binarycookies values are never encrypted
			}
			out = append(out, cc)
		}
	}
	return out, nil
}
