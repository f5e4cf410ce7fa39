// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pem wraps DER encoded data in the textual armor defined in RFC 7468.
//
// An armored value consists of a "-----BEGIN label-----" line, the base64
// encoding of the data in lines of 64 characters and an "-----END label-----"
// line.
package pem

import (
	stdpem "encoding/pem"
	"errors"
	"fmt"
)

var (
	// ErrNoBlock indicates that the input does not contain an armored block.
	ErrNoBlock = errors.New("pem: no block found")
	// ErrLabel indicates that the label of a block differs from the expected
	// label.
	ErrLabel = errors.New("pem: label mismatch")
)

// Encode armors data with the given label.
func Encode(label string, data []byte) []byte {
	return stdpem.EncodeToMemory(&stdpem.Block{Type: label, Bytes: data})
}

// Decode returns the data of the first armored block in data. If label is not
// empty the block must carry that label. Headers of the block are ignored.
func Decode(data []byte, label string) ([]byte, error) {
	block, _ := stdpem.Decode(data)
	if block == nil {
		return nil, ErrNoBlock
	}
	if label != "" && block.Type != label {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrLabel, block.Type, label)
	}
	return block.Bytes, nil
}

// Label returns the label of the first armored block in data.
func Label(data []byte) (string, bool) {
	block, _ := stdpem.Decode(data)
	if block == nil {
		return "", false
	}
	return block.Type, true
}
