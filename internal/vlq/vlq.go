// Package vlq implements [Variable-length quantity] encoding as used in BER
// tag numbers and object identifier arcs. A VLQ is essentially a base-128
// representation of an unsigned integer with the addition of the eighth bit to
// mark continuation of bytes. VLQ is identical to [LEB128] except in
// endianness.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
// [LEB128]: https://en.wikipedia.org/wiki/LEB128
package vlq

import (
	"errors"
	"io"
	"math/bits"
	"unsafe"
)

var errOverflow = errors.New("vlq too large for target type")

// Unsigned is the set of integer types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Read parses an unsigned VLQ from r. The maximum allowed value is limited by
// the size of T.
//
// Read will only read bytes belonging to the encoded VLQ. If r returns io.EOF
// on the first read, the returned error will be io.EOF as well. If r ends in
// the middle of a VLQ the error is io.ErrUnexpectedEOF and the returned value
// holds the bits read so far.
//
// Read ignores an arbitrary amount of leading zeros (encoded as 0x80 bytes).
func Read[T Unsigned](r io.ByteReader) (ret T, err error) {
	b, err := r.ReadByte()
	if err != nil {
		// io.EOF stays io.EOF
		return 0, err
	}

	ret = T(b & 0x7f)
	numBits := bits.Len8(b & 0x7f)

	for b&0x80 != 0 {
		if b, err = r.ReadByte(); err != nil {
			break
		}
		ret <<= 7
		ret |= T(b & 0x7f)

		if numBits == 0 {
			numBits = bits.Len8(b & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, errOverflow
		}
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return ret, err
}

// Length returns the number of bytes needed to encode n as a VLQ.
func Length[T Unsigned](n T) int {
	if n == 0 {
		return 1
	}
	l := 0
	for i := n; i > 0; i >>= 7 {
		l++
	}
	return l
}

// Append appends the VLQ encoding of i to dst and returns the extended slice.
func Append[T Unsigned](dst []byte, i T) []byte {
	for j := Length(i) - 1; j >= 0; j-- {
		b := byte(i>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// PutBackward writes the VLQ encoding of i so that it ends at the last byte of
// dst and returns the number of bytes written. It panics if dst is shorter than
// Length(i). Calling PutBackward repeatedly on a shrinking prefix of dst fills a
// buffer from the back.
func PutBackward[T Unsigned](dst []byte, i T) int {
	k := len(dst) - 1
	dst[k] = byte(i) & 0x7f
	n := 1
	for i >>= 7; i > 0; i >>= 7 {
		k--
		dst[k] = 0x80 | byte(i)&0x7f
		n++
	}
	return n
}
