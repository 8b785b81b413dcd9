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

package cookiescan

import "fmt"

// Kind classifies the cause of an Error so callers can branch on it without
// string-matching.
type Kind int

// Enumerators for Kind.
const (
	KindUnknown        Kind = iota
	KindNotFound            // no store matched the request
	KindLocked              // the store is held open by a running browser
	KindNoSecret            // a master secret could not be obtained
	KindDecryptFailed       // a value failed to decrypt
	KindMalformed           // a store file did not parse
	KindUnsupportedOS       // the operation has no implementation for runtime.GOOS
)

var kindStrings = [...]string{
	"unknown", "not found", "locked", "no secret", "decrypt failed",
	"malformed", "unsupported OS",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return kindStrings[0]
	}
	return kindStrings[k]
}

// Error reports a failure from a cookiescan operation, tagged with a Kind
// so callers can distinguish recoverable conditions (KindLocked,
// KindNoSecret) from terminal ones.
type Error struct {
	Kind Kind   // classification of the failure
	Op   string // operation that failed, e.g. "chromedb.Open"
	Err  error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap supports errors.Is/As against the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// fail constructs an *Error attributed to op and wrapping err.
func fail(op string, kind Kind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewError constructs a classified Error attributed to op, wrapping err, for
// use by the format/platform packages (chromedb, browser, internal/keyring,
// ...) that need to tag a failure with a Kind a caller can branch on via
// errors.Is/errors.As.
func NewError(op string, kind Kind, err error) error {
	return fail(op, kind, err)
}
