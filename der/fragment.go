// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

// Fragment is a piece of encoded output. A Fragment is either a run of bytes
// or an ordered list of fragments. Fragments are assembled bottom-up by the
// [Encoder] and flattened once at the end.
//
// The zero Fragment is absent, which is different from an empty run of bytes.
type Fragment struct {
	raw   []byte
	parts []Fragment
	size  int
	set   bool
}

// Bytes returns a Fragment holding b. The slice is not copied.
func Bytes(b []byte) Fragment {
	return Fragment{raw: b, size: len(b), set: true}
}

// Byte returns a Fragment holding a single byte.
func Byte(c byte) Fragment {
	return Bytes([]byte{c})
}

// String returns a Fragment holding the bytes of s.
func String(s string) Fragment {
	return Bytes([]byte(s))
}

// Concat returns a Fragment holding parts in order. Absent parts are dropped.
func Concat(parts ...Fragment) Fragment {
	f := Fragment{set: true, parts: make([]Fragment, 0, len(parts))}
	for _, p := range parts {
		if !p.set {
			continue
		}
		f.parts = append(f.parts, p)
		f.size += p.size
	}
	return f
}

// IsZero reports whether f is absent.
func (f Fragment) IsZero() bool {
	return !f.set
}

// Len returns the number of bytes of the flattened fragment.
func (f Fragment) Len() int {
	return f.size
}

// AppendTo appends the flattened fragment to dst.
func (f Fragment) AppendTo(dst []byte) []byte {
	if f.parts == nil {
		return append(dst, f.raw...)
	}
	for _, p := range f.parts {
		dst = p.AppendTo(dst)
	}
	return dst
}

// Join returns the flattened fragment as a contiguous byte slice.
func (f Fragment) Join() []byte {
	return f.AppendTo(make([]byte, 0, f.size))
}
