// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package entity provides named, lazily built schemas together with their
// codecs. An [Entity] is a [schema.Ref] so that entities can refer to each
// other in schema definitions:
//
//	var Point = entity.Define("Point", func(r *schema.Root) {
//		r.Seq(r.Key("x").Int(), r.Key("y").Int())
//	})
//
//	var Line = entity.Define("Line", func(r *schema.Root) {
//		r.Seq(r.Key("from").Use(Point), r.Key("to").Use(Point))
//	})
//
// Values are encoded and decoded by encoding name. The supported encodings
// are "der" and "pem".
package entity

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"codello.dev/asn1schema/der"
	"codello.dev/asn1schema/pem"
	"codello.dev/asn1schema/schema"
)

// Supported encoding names.
const (
	DER = "der"
	PEM = "pem"
)

// ErrUnknownEncoding is returned for encoding names other than [DER] and
// [PEM].
var ErrUnknownEncoding = errors.New("unknown encoding")

// Options configure a single call to [Entity.Decode] or [Entity.Encode].
type Options struct {
	der.Options

	// Label is the PEM label. When decoding, an empty label accepts any
	// block. When encoding, it defaults to the upper-cased entity name.
	Label string
}

func (o *Options) derOptions() *der.Options {
	if o == nil {
		return nil
	}
	return &o.Options
}

func (o *Options) label() string {
	if o == nil {
		return ""
	}
	return o.Label
}

// An Entity is a named schema. The schema is built on first use. An Entity is
// safe for concurrent use.
type Entity struct {
	name   string
	schema func() (*schema.Schema, error)

	codecs sync.Map // encoding name -> *codec
	group  singleflight.Group
}

// codec holds the decoder and encoder of an entity for one encoding.
type codec struct {
	dec     *der.Decoder
	enc     *der.Encoder
	armored bool
}

// Define returns an entity whose schema is built by body.
func Define(name string, body func(r *schema.Root)) *Entity {
	return &Entity{
		name: name,
		schema: sync.OnceValues(func() (*schema.Schema, error) {
			return schema.New(name, body)
		}),
	}
}

// Name returns the name of e.
func (e *Entity) Name() string {
	return e.name
}

// Schema returns the schema of e. The error is non-nil if the definition of e
// is invalid.
func (e *Entity) Schema() (*schema.Schema, error) {
	return e.schema()
}

// MustSchema is like [Entity.Schema] but panics if the definition is invalid.
func (e *Entity) MustSchema() *schema.Schema {
	s, err := e.schema()
	if err != nil {
		panic(err)
	}
	return s
}

// ResolveSchema returns the schema of e. It makes an Entity usable as a
// [schema.Ref].
func (e *Entity) ResolveSchema(any) (*schema.Schema, error) {
	return e.schema()
}

// codec returns the codec for the named encoding. Codecs are created once per
// encoding. An empty name selects DER.
func (e *Entity) codec(enc string) (*codec, error) {
	if enc == "" {
		enc = DER
	}
	if c, ok := e.codecs.Load(enc); ok {
		return c.(*codec), nil
	}
	v, err, _ := e.group.Do(enc, func() (any, error) {
		if c, ok := e.codecs.Load(enc); ok {
			return c, nil
		}
		if enc != DER && enc != PEM {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
		}
		s, err := e.schema()
		if err != nil {
			return nil, err
		}
		c := &codec{dec: der.NewDecoder(s), enc: der.NewEncoder(s), armored: enc == PEM}
		e.codecs.Store(enc, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*codec), nil
}

// Decode decodes data in the named encoding.
func (e *Entity) Decode(data []byte, enc string, opts *Options) (any, error) {
	c, err := e.codec(enc)
	if err != nil {
		return nil, err
	}
	if c.armored {
		if data, err = pem.Decode(data, opts.label()); err != nil {
			return nil, err
		}
	}
	return c.dec.Decode(data, opts.derOptions())
}

// Encode encodes v in the named encoding. In partial mode the best-effort
// encoding is returned in the named encoding together with the collected
// errors.
func (e *Entity) Encode(v any, enc string, opts *Options) ([]byte, error) {
	c, err := e.codec(enc)
	if err != nil {
		return nil, err
	}
	data, err := c.enc.Encode(v, opts.derOptions())
	if data == nil || !c.armored {
		return data, err
	}
	label := opts.label()
	if label == "" {
		label = strings.ToUpper(e.name)
	}
	return pem.Encode(label, data), err
}
