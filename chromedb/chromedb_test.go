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

package chromedb_test

import (
	"context"
	"flag"
	"testing"

	"github.com/creachadair/cookiescan"
	"github.com/creachadair/cookiescan/chromedb"
)

var (
	inputFile = flag.String("input", "", "Input Chrome cookie database")
	dbSecret  = flag.String("passphrase", "", "Passphrase for encrypted values")
)

func TestManual(t *testing.T) {
	if *inputFile == "" {
		t.Skip("Skipping test since no -input is specified")
	}
	s, err := chromedb.Open(*inputFile)
	if err != nil {
		t.Fatalf("Opening database: %v", err)
	}
	defer s.Close()

	if *dbSecret != "" {
		s.SetKey(chromedb.DeriveCBCKey(*dbSecret, 1003))
	}

	cs, err := s.Query(context.Background(), cookiescan.QueryOptions{IncludeAll: true})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	for i, c := range cs {
		t.Logf("-- Cookie %d:\n"+
			"  domain=%q name=%q value=%q\n"+
			"  secure=%v http_only=%v samesite=%v\n"+
			"  created=%v | expires=%v",
			i+1,
			c.Domain, c.Name, c.Value,
			c.Flags.Secure, c.Flags.HTTPOnly, c.SameSite,
			c.Created, c.Expires,
		)
	}
	t.Logf("Found %d cookies", len(cs))
}
