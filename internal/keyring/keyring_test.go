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

package keyring

import (
	"context"
	"testing"

	"github.com/creachadair/cookiescan"
)

func TestOperaGXSharesOperaKeystore(t *testing.T) {
	opera, ok := chromeServices[cookiescan.Opera]
	if !ok {
		t.Fatal("no service entry for Opera")
	}
	operaGX, ok := chromeServices[cookiescan.OperaGX]
	if !ok {
		t.Fatal("no service entry for Opera GX")
	}
	if opera != operaGX {
		t.Errorf("Opera and Opera GX keystore entries differ: %+v vs %+v", opera, operaGX)
	}
}

func TestGetUnknownFamily(t *testing.T) {
	var p Provider
	if _, err := p.Get(context.Background(), cookiescan.FamilyUnknown, ""); err == nil {
		t.Error("Get(FamilyUnknown): want error, got nil")
	}
}

func TestGetUnmappedFamilyErrorIsStable(t *testing.T) {
	var p Provider
	_, err1 := p.Get(context.Background(), cookiescan.FamilyUnknown, "")
	_, err2 := p.Get(context.Background(), cookiescan.FamilyUnknown, "")
	if err1 == nil || err2 == nil {
		t.Fatal("expected both calls to fail for an unmapped family")
	}
	if err1.Error() != err2.Error() {
		t.Errorf("error changed between calls: %q vs %q", err1, err2)
	}
}
