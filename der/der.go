// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der encodes and decodes values according to a
// [codello.dev/asn1schema/schema.Schema] using the ASN.1 Distinguished
// Encoding Rules (DER) defined in [Rec. ITU-T X.690]. The decoder also
// accepts the indefinite-length form of the Basic Encoding Rules.
//
// Decoded values are plain Go values. See the documentation of the asn1
// package for the mapping of ASN.1 types to Go values. Composite values are
// maps keyed by the field names of the schema. Choices are represented by the
// [Choice] type.
//
// By default the first error aborts an operation and is returned as an
// [*Error] that names the offending field. In partial mode errors are
// collected instead: the operation continues with the next field and returns
// its best-effort result together with all errors.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
package der

// DefaultMaxDepth is the nesting limit used if [Options.MaxDepth] is zero.
const DefaultMaxDepth = 64

// Options configure a single decode or encode call. A nil *Options is
// equivalent to the zero value.
type Options struct {
	// Partial enables partial mode. Errors are collected and returned as a
	// *multierror.Error next to the best-effort result.
	Partial bool

	// Track is invoked for every field with a tag of its own. It is only
	// called during decoding. Fields of choice branches that fail to match
	// may be reported as well.
	Track TrackFunc

	// MaxDepth limits the nesting of schema nodes and of indefinite-length
	// encodings.
	MaxDepth int
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Phase distinguishes the two tracking events of a field.
//
//go:generate stringer -type=Phase -linecomment
type Phase uint8

const (
	// PhaseTagged covers the complete encoding of a field, including its
	// header.
	PhaseTagged Phase = iota // tagged
	// PhaseContent covers only the contents octets of a field.
	PhaseContent // content
)

// TrackFunc observes the byte range [start, end) of the field at path.
type TrackFunc func(path string, start, end int, phase Phase)

// Choice is the value of a choice field. Type names the selected branch.
type Choice struct {
	Type  string
	Value any
}
