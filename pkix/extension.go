// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pkix

import (
	"codello.dev/asn1schema"
	"codello.dev/asn1schema/entity"
	"codello.dev/asn1schema/schema"
)

// Extensions is the list of extensions of a certificate.
var Extensions = entity.Define("Extensions", func(r *schema.Root) {
	r.SeqOf(Extension)
})

// Extension is a certificate extension. The extnValue is decoded according
// to the extnID.
var Extension = entity.Define("Extension", func(r *schema.Root) {
	r.Seq(
		r.Key("extnID").ObjID(ExtensionNames),
		r.Key("critical").Bool().Default(false),
		r.Key("extnValue").OctStr().Contains(schema.Resolver(extensionValue)),
	)
})

// BasicConstraints is the value of the basicConstraints extension.
var BasicConstraints = entity.Define("BasicConstraints", func(r *schema.Root) {
	r.Seq(
		r.Key("cA").Bool().Default(false),
		r.Key("pathLenConstraint").Int().Optional(),
	)
})

// AuthorityKeyIdentifier is the value of the authorityKeyIdentifier
// extension.
var AuthorityKeyIdentifier = entity.Define("AuthorityKeyIdentifier", func(r *schema.Root) {
	r.Seq(
		r.Key("keyIdentifier").Implicit(0).OctStr().Optional(),
		r.Key("authorityCertIssuer").Implicit(1).Use(GeneralNames).Optional(),
		r.Key("authorityCertSerialNumber").Implicit(2).Int().Optional(),
	)
})

// GeneralNames is the value of the subjectAltName extension.
var GeneralNames = entity.Define("GeneralNames", func(r *schema.Root) {
	r.SeqOf(GeneralName)
})

// GeneralName covers the common alternatives. Others are captured by the
// "raw" alternative.
var GeneralName = entity.Define("GeneralName", func(r *schema.Root) {
	r.Choice(
		schema.Alt("rfc822Name", r.Implicit(1).IA5Str()),
		schema.Alt("dNSName", r.Implicit(2).IA5Str()),
		schema.Alt("directoryName", r.Explicit(4).Use(Name)),
		schema.Alt("uniformResourceIdentifier", r.Implicit(6).IA5Str()),
		schema.Alt("iPAddress", r.Implicit(7).OctStr()),
		schema.Alt("registeredID", r.Implicit(8).ObjID()),
		schema.Alt("raw", r.Any()),
	)
})

// KeyPurposeID identifies an extended key usage.
var KeyPurposeID = entity.Define("KeyPurposeId", func(r *schema.Root) {
	r.ObjID(KeyPurposeNames)
})

// ExtKeyUsage is the value of the extKeyUsage extension.
var ExtKeyUsage = entity.Define("ExtKeyUsage", func(r *schema.Root) {
	r.SeqOf(KeyPurposeID)
})

// KeyUsage is the value of the keyUsage extension.
var KeyUsage = entity.Define("KeyUsage", func(r *schema.Root) {
	r.BitStr()
})

// SubjectKeyIdentifier is the value of the subjectKeyIdentifier extension.
var SubjectKeyIdentifier = entity.Define("SubjectKeyIdentifier", func(r *schema.Root) {
	r.OctStr()
})

// rawExtension captures values of unknown extensions.
var rawExtension = entity.Define("Extension.raw", func(r *schema.Root) {
	r.Any()
})

var extensionSchemas = map[string]*entity.Entity{
	"basicConstraints":       BasicConstraints,
	"authorityKeyIdentifier": AuthorityKeyIdentifier,
	"subjectAltName":         GeneralNames,
	"extKeyUsage":            ExtKeyUsage,
	"keyUsage":               KeyUsage,
	"subjectKeyIdentifier":   SubjectKeyIdentifier,
}

// extensionValue selects the schema of extnValue based on the extnID of the
// enclosing extension.
func extensionValue(obj any) (*schema.Schema, error) {
	m, _ := obj.(map[string]any)
	var id string
	switch v := m["extnID"].(type) {
	case string:
		id = v
	case asn1.ObjectIdentifier:
		id = v.String()
	}
	if e, ok := extensionSchemas[id]; ok {
		return e.Schema()
	}
	return rawExtension.Schema()
}
