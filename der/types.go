// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/text/encoding/unicode"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/internal/vlq"
	"codello.dev/asn1schema/schema"
)

var bigOne = big.NewInt(1)

// utf16be converts between UTF-8 and the big endian UTF-16 of BMPString.
var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// decodePrimitive decodes the contents octets in b according to p.
func decodePrimitive(b *Buffer, p schema.Primitive) (any, error) {
	switch p.Kind {
	case schema.Bool:
		c, err := b.ReadByte()
		if err != nil {
			return nil, err
		}
		return c != 0, nil
	case schema.Int, schema.Enum:
		return decodeInt(b, p)
	case schema.ObjID, schema.RelObjID:
		return decodeOID(b, p)
	case schema.GenTime, schema.UTCTime:
		return decodeTime(string(b.Raw()), p.Kind), nil
	case schema.Null:
		return nil, nil
	case schema.ObjDesc:
		return b.Raw(), nil
	}
	if p.Kind.IsString() {
		return decodeString(b, p.Kind)
	}
	return nil, fmt.Errorf("%w: decoding of %s", ErrUnsupported, p.Kind)
}

// encodePrimitive encodes v as the contents octets of p.
func encodePrimitive(v any, p schema.Primitive) (Fragment, error) {
	switch p.Kind {
	case schema.Bool:
		b, ok := v.(bool)
		if !ok {
			return Fragment{}, unexpectedValue(v, p.Kind)
		}
		if b {
			return Byte(0xff), nil
		}
		return Byte(0x00), nil
	case schema.Int, schema.Enum:
		return encodeInt(v, p)
	case schema.ObjID, schema.RelObjID:
		return encodeOID(v, p)
	case schema.GenTime, schema.UTCTime:
		return encodeTime(v, p.Kind)
	case schema.Null:
		return Bytes(nil), nil
	case schema.ObjDesc:
		return encodeString(v, schema.OctStr)
	}
	if p.Kind.IsString() {
		return encodeString(v, p.Kind)
	}
	return Fragment{}, fmt.Errorf("%w: encoding of %s", ErrUnsupported, p.Kind)
}

func unexpectedValue(v any, k schema.Kind) error {
	if v == nil {
		return fmt.Errorf("%w: missing value for %s", ErrStructure, k)
	}
	return fmt.Errorf("%w: cannot encode %T as %s", ErrStructure, v, k)
}

//region [UNIVERSAL 2] INTEGER

// decodeInt decodes a two's complement big endian integer. If p has a value
// map, the name of the integer is returned instead if present.
func decodeInt(b *Buffer, p schema.Primitive) (any, error) {
	bs := b.Raw()
	if len(bs) == 0 {
		return nil, fmt.Errorf("%w: empty integer", ErrLength)
	}
	i := new(big.Int)
	if bs[0]&0x80 == 0x80 {
		// negative integer, calculate 2s complement
		inv := make([]byte, len(bs))
		for j := range bs {
			inv[j] = ^bs[j]
		}
		i.SetBytes(inv)
		i.Add(i, bigOne)
		i.Neg(i)
	} else {
		i.SetBytes(bs)
	}
	if name, ok := p.Name(i.String()); ok {
		return name, nil
	}
	return i, nil
}

// toBigInt converts v into an integer. Names are resolved via the value map of
// p.
func toBigInt(v any, p schema.Primitive) (*big.Int, error) {
	switch v := v.(type) {
	case string:
		if !p.HasValues() {
			return nil, fmt.Errorf("%w: string %s given, but no values map", ErrStructure, p.Kind)
		}
		s, ok := p.Value(v)
		if !ok {
			return nil, fmt.Errorf("%w: values map doesn't contain %q", ErrStructure, v)
		}
		i, _ := new(big.Int).SetString(s, 10)
		return i, nil
	case *big.Int:
		if v == nil {
			return nil, unexpectedValue(nil, p.Kind)
		}
		return v, nil
	case big.Int:
		return &v, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	}
	return nil, unexpectedValue(v, p.Kind)
}

func encodeInt(v any, p schema.Primitive) (Fragment, error) {
	n, err := toBigInt(v, p)
	if err != nil {
		return Fragment{}, err
	}
	return Bytes(appendBigInt(nil, n)), nil
}

// appendBigInt appends the minimal two's complement encoding of n to dst.
func appendBigInt(dst []byte, n *big.Int) []byte {
	switch n.Sign() {
	case 0:
		// Zero is written as a single 0 zero rather than no bytes.
		return append(dst, 0x00)
	case -1:
		// A negative number has to be converted to two's-complement
		// form. So we'll invert and subtract 1. If the
		// most-significant-bit isn't set then we'll need to pad the
		// beginning with 0xff in order to keep the number negative.
		nMinus1 := new(big.Int).Neg(n)
		nMinus1.Sub(nMinus1, bigOne)
		bs := nMinus1.Bytes()
		for i := range bs {
			bs[i] ^= 0xff
		}
		if len(bs) == 0 || bs[0]&0x80 == 0 {
			dst = append(dst, 0xff)
		}
		return append(dst, bs...)
	default:
		bs := n.Bytes()
		if bs[0]&0x80 != 0 {
			// We'll have to pad this with 0x00 in order to stop it
			// looking like a negative number.
			dst = append(dst, 0x00)
		}
		return append(dst, bs...)
	}
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// decodeOID decodes the arcs of an object identifier. The first arc of an
// absolute identifier holds the first two components. A truncated last arc is
// kept.
func decodeOID(b *Buffer, p schema.Primitive) (any, error) {
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty object identifier", ErrLength)
	}
	// In the worst case, we get two elements from the first byte (which is
	// encoded differently) and then every varint is a single byte long.
	arcs := make([]uint, 0, b.Len()+1)
	for !b.Empty() {
		v, err := vlq.Read[uint](b)
		if err != nil && err != io.ErrUnexpectedEOF && err != ErrOverrun {
			return nil, fmt.Errorf("%w: object identifier arc too large", ErrUnsupported)
		}
		arcs = append(arcs, v)
	}

	if p.Kind == schema.RelObjID {
		oid := asn1.RelativeOID(arcs)
		if name, ok := p.Name(oid.String()); ok {
			return name, nil
		}
		return oid, nil
	}

	// The first varint is 40*value1 + value2:
	// According to this packing, value1 can take the values 0, 1 and 2 only.
	// When value1 = 0 or value1 = 1, then value2 is <= 39. When value1 = 2,
	// then there are no restrictions on value2.
	oid := make(asn1.ObjectIdentifier, len(arcs)+1)
	if arcs[0] < 80 {
		oid[0], oid[1] = arcs[0]/40, arcs[0]%40
	} else {
		oid[0], oid[1] = 2, arcs[0]-80
	}
	copy(oid[2:], arcs[1:])
	if name, ok := p.Name(oid.String()); ok {
		return name, nil
	}
	return oid, nil
}

// toArcs converts v into the arcs of an object identifier. Names are resolved
// via the value map of p.
func toArcs(v any, p schema.Primitive) ([]uint, error) {
	switch v := v.(type) {
	case string:
		if !p.HasValues() {
			return nil, fmt.Errorf("%w: string objid given, but no values map found", ErrStructure)
		}
		s, ok := p.Value(v)
		if !ok {
			return nil, fmt.Errorf("%w: objid %q not found in values map", ErrStructure, v)
		}
		oid, err := asn1.ParseObjectIdentifier(s)
		return oid, err
	case asn1.ObjectIdentifier:
		return v, nil
	case asn1.RelativeOID:
		return v, nil
	case []uint:
		return v, nil
	case []int:
		arcs := make([]uint, len(v))
		for i, a := range v {
			if a < 0 {
				return nil, fmt.Errorf("%w: negative objid arc", ErrStructure)
			}
			arcs[i] = uint(a)
		}
		return arcs, nil
	}
	return nil, unexpectedValue(v, p.Kind)
}

// encodeOID encodes the arcs of an object identifier. The buffer is sized
// first and then filled back to front.
func encodeOID(v any, p schema.Primitive) (Fragment, error) {
	arcs, err := toArcs(v, p)
	if err != nil {
		return Fragment{}, err
	}
	if p.Kind == schema.ObjID {
		if len(arcs) < 2 || arcs[0] > 2 {
			return Fragment{}, fmt.Errorf("%w: invalid object identifier %v", ErrStructure, arcs)
		}
		if arcs[1] >= 40 {
			return Fragment{}, fmt.Errorf("%w: second objid identifier out of bounds", ErrStructure)
		}
		folded := make([]uint, len(arcs)-1)
		folded[0] = arcs[0]*40 + arcs[1]
		copy(folded[1:], arcs[2:])
		arcs = folded
	}

	size := 0
	for _, a := range arcs {
		size += vlq.Length(a)
	}
	buf := make([]byte, size)
	end := size
	for i := len(arcs) - 1; i >= 0; i-- {
		end -= vlq.PutBackward(buf[:end], arcs[i])
	}
	return Bytes(buf), nil
}

//endregion

//region [UNIVERSAL 23] UTCTime, [UNIVERSAL 24] GeneralizedTime

// decodeTime parses the fixed-width fields of a time value. Fields that are
// missing or not numeric are zero. The time zone suffix is ignored and the
// result is in UTC. Two-digit years below 70 belong to the 21st century.
func decodeTime(s string, k schema.Kind) time.Time {
	field := func(i, j int) int {
		if i >= len(s) {
			return 0
		}
		n, err := strconv.Atoi(s[i:min(j, len(s))])
		if err != nil {
			return 0
		}
		return n
	}
	var year, off int
	if k == schema.GenTime {
		year, off = field(0, 4), 4
	} else {
		year, off = field(0, 2), 2
		if year < 70 {
			year += 2000
		} else {
			year += 1900
		}
	}
	return time.Date(year,
		time.Month(field(off, off+2)),
		field(off+2, off+4),
		field(off+4, off+6),
		field(off+6, off+8),
		field(off+8, off+10),
		0, time.UTC)
}

// encodeTime formats t in UTC with second precision. UTCTime is limited to
// the years 1970 to 2069 so that the two-digit year decodes to the same
// century.
func encodeTime(v any, k schema.Kind) (Fragment, error) {
	t, ok := v.(time.Time)
	if !ok {
		return Fragment{}, unexpectedValue(v, k)
	}
	t = t.UTC().Truncate(time.Second)
	if k == schema.GenTime {
		if y := t.Year(); y < 0 || y > 9999 {
			return Fragment{}, fmt.Errorf("%w: year %d out of range for %s", ErrStructure, y, k)
		}
		return String(asn1.GeneralizedTime(t).String()), nil
	}
	if y := t.Year(); y < 1970 || y > 2069 {
		return Fragment{}, fmt.Errorf("%w: year %d out of range for %s", ErrStructure, y, k)
	}
	return String(asn1.UTCTime(t).String()), nil
}

//endregion

//region strings

// decodeString decodes the contents of a string kind.
func decodeString(b *Buffer, k schema.Kind) (any, error) {
	switch k {
	case schema.BitStr:
		unused, err := b.ReadByte()
		if err != nil {
			return nil, err
		}
		data := b.Raw()
		if unused > 7 || (len(data) == 0 && unused > 0) {
			return nil, fmt.Errorf("%w: invalid bit string padding", ErrString)
		}
		return asn1.BitString{Bytes: data, BitLength: len(data)*8 - int(unused)}, nil
	case schema.OctStr:
		return b.Raw(), nil
	case schema.BMPStr:
		raw := b.Raw()
		if len(raw)%2 == 1 {
			return nil, fmt.Errorf("%w: bmpstr length mismatch", ErrString)
		}
		s, err := utf16be.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: bmpstr: %v", ErrString, err)
		}
		return string(s), nil
	case schema.NumStr:
		s := string(b.Raw())
		if !asn1.NumericString(s).IsValid() {
			return nil, fmt.Errorf("%w: numstr unsupported characters", ErrString)
		}
		return s, nil
	case schema.PrintStr:
		s := string(b.Raw())
		if !asn1.PrintableString(s).IsValid() {
			return nil, fmt.Errorf("%w: printstr unsupported characters", ErrString)
		}
		return s, nil
	}
	return string(b.Raw()), nil
}

// encodeString encodes the contents of a string kind.
func encodeString(v any, k schema.Kind) (Fragment, error) {
	if k == schema.BitStr {
		switch v := v.(type) {
		case asn1.BitString:
			if !v.IsValid() {
				return Fragment{}, fmt.Errorf("%w: invalid bit string", ErrStructure)
			}
			return Concat(Byte(byte(v.Unused())), Bytes(v.Bytes)), nil
		case []byte:
			return Concat(Byte(0), Bytes(v)), nil
		}
		return Fragment{}, unexpectedValue(v, k)
	}

	var s string
	switch v := v.(type) {
	case string:
		s = v
	case []byte:
		if k == schema.OctStr {
			return Bytes(v), nil
		}
		s = string(v)
	default:
		return Fragment{}, unexpectedValue(v, k)
	}

	switch k {
	case schema.BMPStr:
		if !asn1.BMPString(s).IsValid() {
			return Fragment{}, fmt.Errorf("%w: bmpstr supports only the basic multilingual plane", ErrString)
		}
		bs, err := utf16be.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return Fragment{}, fmt.Errorf("%w: bmpstr: %v", ErrString, err)
		}
		return Bytes(bs), nil
	case schema.NumStr:
		if !asn1.NumericString(s).IsValid() {
			return Fragment{}, fmt.Errorf("%w: numstr supports only digits and space", ErrString)
		}
	case schema.PrintStr:
		if !asn1.PrintableString(s).IsValid() {
			return Fragment{}, fmt.Errorf("%w: printstr supports only latin letters, digits, space and '()+,-./:=?", ErrString)
		}
	}
	return String(s), nil
}

//endregion
