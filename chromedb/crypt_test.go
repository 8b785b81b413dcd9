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

package chromedb

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"testing"
)

const testPassphrase = "lQd+BkD+nBhODek1xUUxXw=="

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decoding hex: %v", err)
	}
	return b
}

func TestDecryptCBCVectors(t *testing.T) {
	key := DeriveCBCKey(testPassphrase, 1003)

	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"vector1", "7631306F9A47D779AC548BFB0BCE013AE5D4232058813A58C91CC1D16A143FBA05721D0321E47244333D584128B2DFF4857467", "yes"},
		{"vector2", "7631306F9A47D779AC548BFB0BCE013AE5D4232058813A58C91CC1D16A143FBA05721DAB789B157290AE3D877BFDA7A9870E9D", "xlg"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// These vectors carry the 32-byte domain hash prefix, so they
			// decrypt under a meta.version >= 24 schema.
			got, err := decryptValue(key, mustHex(t, tc.hex), 24)
			if err != nil {
				t.Fatalf("decryptValue: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("decryptValue = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDecryptCBCBadLength(t *testing.T) {
	key := DeriveCBCKey(testPassphrase, 1003)
	// "v10" prefix (3 bytes) + 14 bytes of body: not a multiple of 16.
	raw := append([]byte(cbcVersionV10), make([]byte, 14)...)
	if _, err := decryptValue(key, raw, 0); err == nil {
		t.Error("decryptValue: want error for non-block-aligned ciphertext, got nil")
	}
}

func TestDecryptGCMRoundTrip(t *testing.T) {
	key := make([]byte, gcmKeyBytes)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	nonce := make([]byte, gcmNonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	plaintext := []byte("session_123456")
	sealed := sealGCMForTest(t, key, nonce, plaintext)
	raw := append([]byte(cbcVersionV10), append(nonce, sealed...)...)

	got, err := decryptValue(GCMKey(key), raw, 0)
	if err != nil {
		t.Fatalf("decryptValue: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("decryptValue = %q, want %q", got, plaintext)
	}
}

func sealGCMForTest(t *testing.T, key, nonce, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("cipher.NewGCM: %v", err)
	}
	return gcm.Seal(nil, nonce, plaintext, nil)
}
