// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import "io"

// Buffer is a bounded read cursor over an immutable byte slice. Sub-buffers
// created by [Buffer.Skip] share the underlying slice but have their own
// bounds. Offsets are always relative to the start of the original slice.
//
// The bytes of a Buffer must not be modified while it is in use.
type Buffer struct {
	base []byte
	off  int
	end  int
}

// Checkpoint is a saved position of a [Buffer].
type Checkpoint struct {
	off int
}

// NewBuffer returns a Buffer reading data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{base: data, end: len(data)}
}

// Empty reports whether all bytes of b have been consumed.
func (b *Buffer) Empty() bool {
	return b.off >= b.end
}

// Len returns the number of unread bytes in b.
func (b *Buffer) Len() int {
	return b.end - b.off
}

// Offset returns the position of the next byte read from b.
func (b *Buffer) Offset() int {
	return b.off
}

// End returns the offset of the end of b.
func (b *Buffer) End() int {
	return b.end
}

// ReadByte reads a single byte. It returns [ErrOverrun] if b is empty.
func (b *Buffer) ReadByte() (byte, error) {
	if b.off >= b.end {
		return 0, ErrOverrun
	}
	c := b.base[b.off]
	b.off++
	return c, nil
}

// Skip advances b by n bytes and returns a Buffer that covers exactly the
// skipped bytes. It returns [ErrOverrun] if fewer than n bytes are left.
func (b *Buffer) Skip(n int) (*Buffer, error) {
	if n < 0 || n > b.end-b.off {
		return nil, ErrOverrun
	}
	sub := &Buffer{base: b.base, off: b.off, end: b.off + n}
	b.off += n
	return sub, nil
}

// Raw consumes and returns the remaining bytes of b. The result shares memory
// with b.
func (b *Buffer) Raw() []byte {
	data := b.base[b.off:b.end:b.end]
	b.off = b.end
	return data
}

// RawFrom returns the bytes between cp and the current offset of b.
func (b *Buffer) RawFrom(cp Checkpoint) []byte {
	return b.base[cp.off:b.off:b.off]
}

// Save returns a checkpoint of the current position of b.
func (b *Buffer) Save() Checkpoint {
	return Checkpoint{b.off}
}

// Restore resets b to a previously saved position.
func (b *Buffer) Restore(cp Checkpoint) {
	b.off = cp.off
}

var _ io.ByteReader = (*Buffer)(nil)
