// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"fmt"
	"io"
	"math"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/internal/vlq"
)

// lengthIndefinite when used as the length of a header indicates that the
// data value is encoded using the constructed indefinite-length format.
const lengthIndefinite = -1

// header represents the identifier and length octets of an encoded data value.
type header struct {
	tag         asn1.Tag
	constructed bool
	length      int
}

// isEndOfContents reports whether h is the header of an end-of-contents
// marker.
func (h header) isEndOfContents() bool {
	return h.tag == asn1.Universal(asn1.TagEndOfContents) && !h.constructed && h.length == 0
}

var (
	errLengthTooLong   = fmt.Errorf("%w: length octet is too long", ErrLength)
	errPrimitiveLength = fmt.Errorf("%w: indefinite length of primitive encoding", ErrLength)
	errTagTooLarge     = fmt.Errorf("%w: tag number too large", ErrUnsupported)
)

// readHeader reads the identifier and length octets of a data value encoding
// from b. Short, long and indefinite length forms are accepted. Long form
// lengths are limited to 4 octets.
func readHeader(b *Buffer) (h header, err error) {
	c, err := b.ReadByte()
	if err != nil {
		return h, err
	}
	h.tag.Class = asn1.Class(c >> 6)
	h.constructed = c&0x20 == 0x20
	h.tag.Number = uint(c & 0x1f)

	// If the bottom five bits are set, then the tag number is actually base 128
	// encoded afterward
	if c&0x1f == 0x1f {
		if h.tag.Number, err = vlq.Read[uint](b); err != nil {
			if errors.Is(err, ErrOverrun) || err == io.ErrUnexpectedEOF {
				return h, ErrOverrun
			}
			return h, errTagTooLarge
		}
	}

	if c, err = b.ReadByte(); err != nil {
		return h, err
	}
	switch {
	case c&0x80 == 0:
		// The length is encoded in the bottom 7 bits.
		h.length = int(c)
	case c == 0x80:
		if !h.constructed {
			return h, errPrimitiveLength
		}
		h.length = lengthIndefinite
	default:
		// Bottom 7 bits give the number of length bytes to follow.
		numBytes := int(c & 0x7f)
		if numBytes > 4 {
			return h, errLengthTooLong
		}
		var l uint64
		for i := 0; i < numBytes; i++ {
			if c, err = b.ReadByte(); err != nil {
				return h, err
			}
			l = l<<8 | uint64(c)
		}
		if l > math.MaxInt {
			return h, errLengthTooLong
		}
		h.length = int(l)
	}
	return h, nil
}

// appendHeader appends the DER encoding of a header to dst. Lengths below 128
// use the short form, longer lengths the minimal long form.
func appendHeader(dst []byte, tag asn1.Tag, constructed bool, length int) []byte {
	b := uint8(tag.Class) << 6
	if constructed {
		b |= 0x20
	}
	if tag.Number < 31 {
		dst = append(dst, b|uint8(tag.Number))
	} else {
		dst = append(dst, b|0x1f)
		dst = vlq.Append(dst, tag.Number)
	}

	if length < 128 {
		return append(dst, byte(length))
	}
	numBytes := 1
	for l := length; l > 255; l >>= 8 {
		numBytes++
	}
	dst = append(dst, 0x80|byte(numBytes))
	for ; numBytes > 0; numBytes-- {
		dst = append(dst, byte(length>>uint((numBytes-1)*8)))
	}
	return dst
}
