// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pkix defines schemas for X.509 certificates as described in RFC
// 5280. The schemas are entities and can be used to decode and encode
// certificates directly:
//
//	v, err := pkix.Certificate.Decode(data, entity.PEM, nil)
//
// Object identifiers with a known meaning are decoded to their names.
// Extension values are decoded according to the extension identifier. Values
// of unknown extensions are captured as raw bytes.
package pkix

import (
	"codello.dev/asn1schema/entity"
	"codello.dev/asn1schema/schema"
)

// versions names the versions of certificates.
var versions = map[int64]string{0: "v1", 1: "v2", 2: "v3"}

// Certificate is a signed X.509 certificate.
var Certificate = entity.Define("Certificate", func(r *schema.Root) {
	r.Seq(
		r.Key("tbsCertificate").Use(TBSCertificate),
		r.Key("signatureAlgorithm").Use(AlgorithmIdentifier),
		r.Key("signatureValue").BitStr(),
	)
})

// TBSCertificate is the signed part of a certificate. The version defaults
// to "v1".
var TBSCertificate = entity.Define("TBSCertificate", func(r *schema.Root) {
	r.Seq(
		r.Key("version").Explicit(0).Int(versions).Default("v1"),
		r.Key("serialNumber").Int(),
		r.Key("signature").Use(AlgorithmIdentifier),
		r.Key("issuer").Use(Name),
		r.Key("validity").Use(Validity),
		r.Key("subject").Use(Name),
		r.Key("subjectPublicKeyInfo").Use(SubjectPublicKeyInfo),
		r.Key("issuerUniqueID").Implicit(1).BitStr().Optional(),
		r.Key("subjectUniqueID").Implicit(2).BitStr().Optional(),
		r.Key("extensions").Explicit(3).Use(Extensions).Optional(),
	)
})

// AlgorithmIdentifier names an algorithm. Parameters are kept as raw bytes.
var AlgorithmIdentifier = entity.Define("AlgorithmIdentifier", func(r *schema.Root) {
	r.Seq(
		r.Key("algorithm").ObjID(AlgorithmNames),
		r.Key("parameters").Any().Optional(),
	)
})

// Name is a distinguished name with the single alternative "rdnSequence".
var Name = entity.Define("Name", func(r *schema.Root) {
	r.Choice(schema.Alt("rdnSequence", r.SeqOf(RelativeDistinguishedName)))
})

// RelativeDistinguishedName is a set of attributes of a name.
var RelativeDistinguishedName = entity.Define("RelativeDistinguishedName", func(r *schema.Root) {
	r.SetOf(AttributeTypeAndValue)
})

// AttributeTypeAndValue is a single attribute of a distinguished name.
var AttributeTypeAndValue = entity.Define("AttributeTypeAndValue", func(r *schema.Root) {
	r.Seq(
		r.Key("type").ObjID(AttributeNames),
		r.Key("value").Use(DirectoryString),
	)
})

// DirectoryString covers the string types used in attribute values. Other
// values are captured by the "raw" alternative.
var DirectoryString = entity.Define("DirectoryString", func(r *schema.Root) {
	r.Choice(
		schema.Alt("printableString", r.PrintStr()),
		schema.Alt("utf8String", r.UTF8Str()),
		schema.Alt("ia5String", r.IA5Str()),
		schema.Alt("teletexString", r.T61Str()),
		schema.Alt("universalString", r.UniStr()),
		schema.Alt("bmpString", r.BMPStr()),
		schema.Alt("raw", r.Any()),
	)
})

// Validity is the validity period of a certificate.
var Validity = entity.Define("Validity", func(r *schema.Root) {
	r.Seq(
		r.Key("notBefore").Use(Time),
		r.Key("notAfter").Use(Time),
	)
})

// Time is a UTCTime or a GeneralizedTime.
var Time = entity.Define("Time", func(r *schema.Root) {
	r.Choice(
		schema.Alt("utcTime", r.UTCTime()),
		schema.Alt("generalTime", r.GenTime()),
	)
})

// SubjectPublicKeyInfo is a public key together with its algorithm.
var SubjectPublicKeyInfo = entity.Define("SubjectPublicKeyInfo", func(r *schema.Root) {
	r.Seq(
		r.Key("algorithm").Use(AlgorithmIdentifier),
		r.Key("subjectPublicKey").BitStr(),
	)
})

// Entities returns the entities of this package by name.
func Entities() map[string]*entity.Entity {
	m := make(map[string]*entity.Entity)
	for _, e := range []*entity.Entity{
		Certificate, TBSCertificate, AlgorithmIdentifier, Name,
		RelativeDistinguishedName, AttributeTypeAndValue, DirectoryString,
		Validity, Time, SubjectPublicKeyInfo, Extensions, Extension,
		BasicConstraints, AuthorityKeyIdentifier, GeneralNames, GeneralName,
		KeyPurposeID, ExtKeyUsage, KeyUsage, SubjectKeyIdentifier,
	} {
		m[e.Name()] = e
	}
	return m
}
