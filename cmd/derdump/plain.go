// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"math/big"
	"time"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/der"
)

// plain converts a decoded value into a form that both the YAML and the JSON
// encoder print faithfully. Integers that do not fit into an int64 and binary
// values become strings. A choice becomes a map with a single key naming the
// selected branch.
func plain(v any) any {
	switch v := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, e := range v {
			m[k] = plain(e)
		}
		return m
	case []any:
		s := make([]any, len(v))
		for i, e := range v {
			s[i] = plain(e)
		}
		return s
	case der.Choice:
		return map[string]any{v.Type: plain(v.Value)}
	case *big.Int:
		if v.IsInt64() {
			return v.Int64()
		}
		return v.String()
	case asn1.ObjectIdentifier:
		return v.String()
	case asn1.RelativeOID:
		return v.String()
	case asn1.BitString:
		if v.Unused() == 0 {
			return hex.EncodeToString(v.Bytes)
		}
		return v.String()
	case []byte:
		return hex.EncodeToString(v)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return v
}
