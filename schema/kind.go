// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import "codello.dev/asn1schema"

// Kind identifies the ASN.1 type of a schema node. Every Kind corresponds to
// exactly one universal tag number. The String value of a Kind is the short name
// used in error messages.
//
//go:generate stringer -type=Kind -linecomment
type Kind uint8

// Supported kinds. The list and set variants share the tag number of SEQUENCE
// and SET respectively.
const (
	Seq       Kind = iota + 1 // seq
	SeqOf                     // seqof
	Set                       // set
	SetOf                     // setof
	ObjID                     // objid
	Bool                      // bool
	GenTime                   // gentime
	UTCTime                   // utctime
	Null                      // null_
	Enum                      // enum
	Int                       // int
	ObjDesc                   // objDesc
	BitStr                    // bitstr
	BMPStr                    // bmpstr
	CharStr                   // charstr
	GenStr                    // genstr
	GraphStr                  // graphstr
	IA5Str                    // ia5str
	ISO646Str                 // iso646str
	NumStr                    // numstr
	OctStr                    // octstr
	PrintStr                  // printstr
	T61Str                    // t61str
	UniStr                    // unistr
	UTF8Str                   // utf8str
	VideoStr                  // videostr
	RelObjID                  // relobjid
)

var kindTags = [...]uint{
	Seq:       asn1.TagSequence,
	SeqOf:     asn1.TagSequence,
	Set:       asn1.TagSet,
	SetOf:     asn1.TagSet,
	ObjID:     asn1.TagOID,
	Bool:      asn1.TagBoolean,
	GenTime:   asn1.TagGeneralizedTime,
	UTCTime:   asn1.TagUTCTime,
	Null:      asn1.TagNull,
	Enum:      asn1.TagEnumerated,
	Int:       asn1.TagInteger,
	ObjDesc:   asn1.TagObjectDescriptor,
	BitStr:    asn1.TagBitString,
	BMPStr:    asn1.TagBMPString,
	CharStr:   asn1.TagCharacterString,
	GenStr:    asn1.TagGeneralString,
	GraphStr:  asn1.TagGraphicString,
	IA5Str:    asn1.TagIA5String,
	ISO646Str: asn1.TagISO646String,
	NumStr:    asn1.TagNumericString,
	OctStr:    asn1.TagOctetString,
	PrintStr:  asn1.TagPrintableString,
	T61Str:    asn1.TagT61String,
	UniStr:    asn1.TagUniversalString,
	UTF8Str:   asn1.TagUTF8String,
	VideoStr:  asn1.TagVideotexString,
	RelObjID:  asn1.TagRelativeOID,
}

// IsValid reports whether k is one of the predefined kinds.
func (k Kind) IsValid() bool {
	return k >= Seq && k <= RelObjID
}

// Tag returns the universal tag of k.
func (k Kind) Tag() asn1.Tag {
	if !k.IsValid() {
		return asn1.Tag{}
	}
	return asn1.Universal(kindTags[k])
}

// Constructed reports whether values of kind k use the constructed encoding.
func (k Kind) Constructed() bool {
	return k == Seq || k == SeqOf || k == Set || k == SetOf
}

// IsString reports whether k is one of the string kinds. Bit strings and octet
// strings are included.
func (k Kind) IsString() bool {
	return k >= BitStr && k <= VideoStr
}
