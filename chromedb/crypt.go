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
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"errors"

	"golang.org/x/crypto/pbkdf2"
)

const (
	cbcVersionV10 = "v10"
	cbcVersionV11 = "v11"
	cbcKeyBytes   = 16
	gcmKeyBytes   = 32
	gcmNonceBytes = 12
	keySalt       = "saltysalt"
	ivString      = "                " // 16 spaces, the fixed CBC IV Chrome uses

	// hashPrefixBytes is the length of the SHA-256 domain-binding hash that
	// Chrome (schema meta.version >= 24) prepends to the plaintext before
	// CBC-encrypting it.
	hashPrefixBytes = 32
)

// KeyKind distinguishes the two shapes of Chromium master secret: a
// passphrase-derived AES-128 key used with CBC on macOS and Linux, or an
// AES-256 key already unwrapped via DPAPI on Windows and used with GCM.
type KeyKind int

// Enumerators for KeyKind.
const (
	KeyCBC KeyKind = iota
	KeyGCM
)

// Key is a decryption key together with the scheme it must be used with.
type Key struct {
	Kind  KeyKind
	Bytes []byte
}

// DeriveCBCKey derives a macOS/Linux Chromium AES-128 CBC key from a
// passphrase obtained from the OS keychain, using the fixed "saltysalt"
// salt. iterations is 1003 on macOS and 1 on Linux.
func DeriveCBCKey(passphrase string, iterations int) Key {
	return Key{
		Kind:  KeyCBC,
		Bytes: pbkdf2.Key([]byte(passphrase), []byte(keySalt), iterations, cbcKeyBytes, sha1.New),
	}
}

// GCMKey wraps a 32-byte AES-256 key already unwrapped from Windows'
// "Local State" os_crypt.encrypted_key via DPAPI.
func GCMKey(key []byte) Key {
	return Key{Kind: KeyGCM, Bytes: key}
}

// decryptValue decrypts a cookies.encrypted_value column. schemaVersion is
// the value database's meta.version row, used to decide whether a 32-byte
// SHA-256 domain hash must be stripped from the CBC plaintext (schema >=
// 24). A raw value with no recognized version prefix is assumed to be
// legacy cleartext (pre-"Safe Storage" macOS Chrome) and is returned
// unchanged.
func decryptValue(key Key, raw []byte, schemaVersion int) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch key.Kind {
	case KeyGCM:
		return decryptGCM(key.Bytes, raw)
	default:
		if !bytes.HasPrefix(raw, []byte(cbcVersionV10)) && !bytes.HasPrefix(raw, []byte(cbcVersionV11)) {
			return raw, nil // legacy plaintext passthrough
		}
		return decryptCBC(key.Bytes, raw, schemaVersion >= 24)
	}
}

// encryptValue encrypts a cookie value with a CBC key into the "v10"-tagged
// layout that decryptCBC reads. Only the CBC scheme is supported here; GCM
// keys are rejected.
func encryptValue(key Key, val []byte) ([]byte, error) {
	if key.Kind != KeyCBC {
		return nil, errors.New("encryptValue: only CBC keys are supported")
	}
	c, err := aes.NewCipher(key.Bytes)
	if err != nil {
		return nil, err
	}

	// Pack the value for encryption. The value must be padded to a positive
	// multiple of 16 bytes. The padding consists of n bytes of value n.
	// The padded value is prefixed with the version tag "v10".
	//
	//   | clear | encrypted            |
	//   +-------+-----...--+-----...---+
	//   | v 1 0 | val ...  | p p ... p |
	//   +-------+-----...--+-----...---+
	padBytes := padLength(len(val))
	buf := make([]byte, len(cbcVersionV10)+len(val)+padBytes)
	copy(buf, []byte(cbcVersionV10))
	copy(buf[3:], val)
	for i := 3 + len(val); i < len(buf); i++ {
		buf[i] = byte(padBytes)
	}

	enc := cipher.NewCBCEncrypter(c, []byte(ivString))
	enc.CryptBlocks(buf[3:], buf[3:])
	return buf, nil
}

// decryptCBC decrypts a "v10"/"v11"-tagged Chromium value using AES-128-CBC
// with the fixed 16-space IV.
func decryptCBC(key, val []byte, stripHash bool) ([]byte, error) {
	body := val[3:]
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return nil, errors.New("chromedb: encrypted value has invalid length")
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(body))
	dec := cipher.NewCBCDecrypter(c, []byte(ivString))
	dec.CryptBlocks(out, body)

	plain, err := checkValue(out)
	if err != nil {
		return nil, err
	}
	if stripHash {
		if len(plain) < hashPrefixBytes {
			return nil, errors.New("chromedb: decrypted value shorter than domain hash prefix")
		}
		plain = plain[hashPrefixBytes:]
	}
	return plain, nil
}

// decryptGCM decrypts a Windows Chromium value of the form
// "v10" || nonce[12] || ciphertext || tag[16], using the 32-byte DPAPI key.
func decryptGCM(key, val []byte) ([]byte, error) {
	if !bytes.HasPrefix(val, []byte(cbcVersionV10)) {
		return nil, errors.New("chromedb: invalid encrypted value prefix")
	}
	if len(key) != gcmKeyBytes {
		return nil, errors.New("chromedb: GCM key must be 32 bytes")
	}
	body := val[3:]
	if len(body) < gcmNonceBytes {
		return nil, errors.New("chromedb: encrypted value shorter than nonce")
	}
	nonce, ct := body[:gcmNonceBytes], body[gcmNonceBytes:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ct, nil)
}

func padLength(n int) int {
	if n%16 == 0 {
		return 16 // ensure there is always at least 1 byte of padding
	}
	return 16 - (n % 16)
}

// checkValue removes the padding from a decrypted value and verifies that it
// has the correct form. If not, the decryption key is assumed to be wrong and
// an error is reported.
func checkValue(val []byte) ([]byte, error) {
	np := int(val[len(val)-1])
	if np < 1 || np > 16 || np > len(val) {
		return nil, errors.New("chromedb: invalid decryption key")
	}
	for i := len(val) - np; i < len(val); i++ {
		if int(val[i]) != np {
			return nil, errors.New("chromedb: invalid decryption key")
		}
	}
	return val[:len(val)-np], nil
}
