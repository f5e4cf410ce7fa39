// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asn1 defines the vocabulary shared by the schema-driven ASN.1 codec
// in this module. ASN.1 itself is defined in [Rec. ITU-T X.680].
//
// This package only defines tags, classes and a handful of Go types for ASN.1
// values that have no natural Go counterpart. Schemas are declared in package
// [codello.dev/asn1schema/schema] and walked by the DER codec in package
// [codello.dev/asn1schema/der].
//
// # Mapping of ASN.1 Types to Go Values
//
// The codec produces and consumes the following Go values:
//
//   - BOOLEAN is a Go bool.
//   - INTEGER and ENUMERATED are [*math/big.Int] values. If the schema defines
//     a value map, the mapped name is used instead. Native Go integers are
//     accepted during encoding.
//   - OBJECT IDENTIFIER is an [ObjectIdentifier], or a mapped name.
//     RELATIVE-OID is a [RelativeOID].
//   - BIT STRING is a [BitString].
//   - OCTET STRING and ObjectDescriptor are byte slices.
//   - All other string types are Go strings. NumericString and
//     PrintableString contents are validated.
//   - UTCTime and GeneralizedTime are [time.Time] values in UTC.
//   - NULL is nil.
//   - SEQUENCE and SET are map[string]any values keyed by field name.
//     SEQUENCE OF and SET OF are []any values.
//
// [Rec. ITU-T X.680]: https://www.itu.int/rec/T-REC-X.680
package asn1

import (
	"strconv"
	"strings"
)

// Tag constitutes an ASN.1 tag, consisting of its class and number. For
// details, see Section 8 of Rec. ITU-T X.680.
type Tag struct {
	Class  Class
	Number uint
}

// Universal returns the [ClassUniversal] tag with the given number.
func Universal(number uint) Tag {
	return Tag{ClassUniversal, number}
}

// Context returns the [ClassContextSpecific] tag with the given number. Tags
// introduced by EXPLICIT and IMPLICIT tagging live in this class.
func Context(number uint) Tag {
	return Tag{ClassContextSpecific, number}
}

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

// String returns a string representation t in a format similar to the one used
// in ASN.1 notation. The tag number is enclosed by square brackets and prefixed
// with the class used. To avoid ambiguity the UNIVERSAL word is used for
// universal tags, although this is not valid ASN.1 syntax.
func (t Tag) String() string {
	if t.Class == ClassContextSpecific {
		return "[" + strconv.FormatUint(uint64(t.Number), 10) + "]"
	}
	return "[" + strings.ToUpper(t.Class.String()) + " " + strconv.FormatUint(uint64(t.Number), 10) + "]"
}

// TagEndOfContents is the reserved universal tag number that terminates an
// indefinite-length encoding. The complete end-of-contents marker consists of
// two zero octets.
const TagEndOfContents uint = 0

// These are the ASN.1 tag numbers defined in the [ClassUniversal] namespace.
// These assignments are defined in Rec. ITU-T X.680, Section 8, Table 1.
const (
	TagBoolean          uint = 1
	TagInteger          uint = 2
	TagBitString        uint = 3
	TagOctetString      uint = 4
	TagNull             uint = 5
	TagOID              uint = 6
	TagObjectDescriptor uint = 7
	TagExternal         uint = 8
	TagReal             uint = 9
	TagEnumerated       uint = 10
	TagEmbeddedPDV      uint = 11
	TagUTF8String       uint = 12
	TagRelativeOID      uint = 13
	TagTime             uint = 14
	TagSequence         uint = 16
	TagSet              uint = 17
	TagNumericString    uint = 18
	TagPrintableString  uint = 19
	TagTeletexString    uint = 20
	TagT61String             = TagTeletexString
	TagVideotexString   uint = 21
	TagIA5String        uint = 22
	TagUTCTime          uint = 23
	TagGeneralizedTime  uint = 24
	TagGraphicString    uint = 25
	TagVisibleString    uint = 26
	TagISO646String          = TagVisibleString
	TagGeneralString    uint = 27
	TagUniversalString  uint = 28
	TagCharacterString  uint = 29
	TagBMPString        uint = 30
)
