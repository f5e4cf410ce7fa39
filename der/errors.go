// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import "errors"

// Error kinds. Every [*Error] unwraps to one of these or to an error returned
// by a [codello.dev/asn1schema/schema.Ref].
var (
	// ErrOverrun indicates a read or skip past the end of a buffer.
	ErrOverrun = errors.New("buffer overrun")
	// ErrTagMismatch indicates that a tag differs from the expected tag.
	ErrTagMismatch = errors.New("tag mismatch")
	// ErrLength indicates a malformed length.
	ErrLength = errors.New("malformed length")
	// ErrString indicates a character string with invalid contents.
	ErrString = errors.New("invalid string")
	// ErrChoice indicates that no branch of a choice matched.
	ErrChoice = errors.New("choice not matched")
	// ErrStructure indicates a value that does not fit the schema.
	ErrStructure = errors.New("structural mismatch")
	// ErrUnsupported indicates a value or kind the codec cannot handle.
	ErrUnsupported = errors.New("unsupported")
	// ErrDepth indicates that the nesting limit has been exceeded.
	ErrDepth = errors.New("nesting too deep")
)

// An Error is a decoding or encoding failure at a specific field. Path
// identifies the field by its keys and list indices, for example
// ["tbsCertificate"]["extensions"][2].
type Error struct {
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	path := e.Path
	if path == "" {
		path = "(shallow)"
	}
	return e.Msg + " at: " + path
}

func (e *Error) Unwrap() error {
	return e.Err
}
