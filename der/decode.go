// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"fmt"
	"math/big"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/schema"
)

// A Decoder decodes DER encoded data according to a schema. A Decoder is safe
// for concurrent use.
type Decoder struct {
	schema *schema.Schema
	clones cloneCache
}

// NewDecoder returns a Decoder for s.
func NewDecoder(s *schema.Schema) *Decoder {
	return &Decoder{schema: s}
}

// Schema returns the schema of d.
func (d *Decoder) Schema() *schema.Schema {
	return d.schema
}

// Decode decodes data. Bytes following the top-level value are ignored.
//
// By default the first error aborts decoding and is returned as an [*Error].
// In partial mode Decode returns the best-effort value and all collected
// errors.
func (d *Decoder) Decode(data []byte, opts *Options) (any, error) {
	return d.DecodeBuffer(NewBuffer(data), opts)
}

// DecodeBuffer is like [Decoder.Decode] but reads from b. After DecodeBuffer
// returns, b is positioned after the decoded value.
func (d *Decoder) DecodeBuffer(b *Buffer, opts *Options) (any, error) {
	s := &decodeState{d: d, opts: opts, r: reporter{partial: opts != nil && opts.Partial}}
	v, _, err := s.field(d.schema.Node(), b)
	if s.r.partial {
		return v, s.r.result()
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// decodeState holds the state of a single decode call.
type decodeState struct {
	d     *Decoder
	opts  *Options
	r     reporter
	depth int
	probe int // number of active presence probes
}

// field decodes n from b. present is false if n is optional and its encoding
// is not present in b. In that case v is the default value of n, if any.
func (s *decodeState) field(n *schema.Node, b *Buffer) (v any, present bool, err error) {
	if key := n.FieldKey(); key != "" {
		defer s.r.exit(s.r.enterKey(key))
	}
	if s.depth++; s.depth > s.opts.maxDepth() {
		s.depth--
		return nil, false, s.r.errorf(ErrDepth, "nesting exceeds %d levels", s.opts.maxDepth())
	}
	defer func() { s.depth-- }()

	if n.IsOptional() {
		ok, err := s.present(n, b)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			def, _ := n.DefaultValue()
			return defaultValue(n, def), false, nil
		}
	}
	v, err = s.value(n, b)
	return v, true, err
}

// present reports whether b starts with an encoding of n. If the tag of n is
// known it is compared with the next tag in b. Otherwise n is decoded in a
// trial.
func (s *decodeState) present(n *schema.Node, b *Buffer) (bool, error) {
	if b.Empty() {
		return false, nil
	}
	tag, ok := n.OuterTag()
	if !ok && !n.IsAny() {
		cp, m := b.Save(), s.r.save()
		s.probe++
		_, ok = s.try(b, func() (any, error) { return s.value(n, b) })
		s.probe--
		b.Restore(cp)
		s.r.restore(m)
		return ok, nil
	}
	cp := b.Save()
	h, err := readHeader(b)
	b.Restore(cp)
	if err != nil {
		return false, s.r.wrap(err)
	}
	return n.IsAny() || h.tag == tag, nil
}

// try calls fn in a trial. If fn fails, b and the reporter are restored.
func (s *decodeState) try(b *Buffer, fn func() (any, error)) (any, bool) {
	cp, m := b.Save(), s.r.save()
	s.r.trial++
	v, err := fn()
	s.r.trial--
	if err != nil {
		b.Restore(cp)
		s.r.restore(m)
		return nil, false
	}
	return v, true
}

// value decodes n from b without checking for presence.
func (s *decodeState) value(n *schema.Node, b *Buffer) (any, error) {
	if num, ok := n.ExplicitTag(); ok {
		body, err := s.header(b, asn1.Context(num), false)
		if err != nil {
			return nil, err
		}
		b = body
	}

	if n.IsAny() {
		cp := b.Save()
		if _, err := s.header(b, asn1.Tag{}, true); err != nil {
			return nil, err
		}
		return b.RawFrom(cp), nil
	}

	switch t := n.Type().(type) {
	case schema.Choice:
		return s.choice(t, b)
	case schema.Reference:
		target, err := s.r.resolve(&s.d.clones, n, t.Target)
		if err != nil {
			return nil, err
		}
		v, _, err := s.field(target, b)
		return v, err
	}

	tag, _ := n.InnerTag()
	start := b.Offset()
	body, err := s.header(b, tag, false)
	if err != nil {
		return nil, err
	}
	if s.opts != nil && s.opts.Track != nil && s.probe == 0 {
		path := s.r.Path()
		s.opts.Track(path, start, body.End(), PhaseTagged)
		s.opts.Track(path, body.Offset(), body.End(), PhaseContent)
	}

	switch t := n.Type().(type) {
	case schema.Primitive:
		v, err := decodePrimitive(body, t)
		if err != nil {
			return nil, s.r.wrap(err)
		}
		return v, nil
	case schema.Composite:
		return s.composite(t, body)
	case schema.ListOf:
		return s.list(t, body)
	case schema.Contained:
		if t.Kind == schema.BitStr {
			if _, err := body.ReadByte(); err != nil {
				return nil, s.r.wrap(err)
			}
		}
		target, err := s.r.resolve(&s.d.clones, nil, t.Target)
		if err != nil {
			return nil, err
		}
		v, _, err := s.field(target, body)
		return v, err
	}
	return nil, s.r.errorf(ErrUnsupported, "cannot decode %s", n)
}

// header reads the identifier and length octets of the next data value in b
// and returns a buffer over its contents. b is advanced past the contents. If
// the tag does not match, b is left unchanged. The tag is not checked if
// wildcard is true.
func (s *decodeState) header(b *Buffer, tag asn1.Tag, wildcard bool) (*Buffer, error) {
	cp := b.Save()
	h, err := readHeader(b)
	if err != nil {
		return nil, s.r.wrap(err)
	}
	if !wildcard && h.tag != tag {
		b.Restore(cp)
		return nil, s.r.errorf(ErrTagMismatch, "failed to match tag %v, found %v", tag, h.tag)
	}
	length := h.length
	if length == lengthIndefinite {
		start := b.Save()
		if err = skipUntilEnd(b, s.opts.maxDepth()); err != nil {
			return nil, s.r.wrap(err)
		}
		length = b.Offset() - start.off
		b.Restore(start)
	}
	body, err := b.Skip(length)
	if err != nil {
		return nil, s.r.wrap(err)
	}
	return body, nil
}

// skipUntilEnd advances b past the next end-of-contents marker on the current
// nesting level. Nested indefinite-length encodings are skipped recursively up
// to a depth of depth.
func skipUntilEnd(b *Buffer, depth int) error {
	if depth <= 0 {
		return fmt.Errorf("%w: indefinite-length encodings nested too deeply", ErrDepth)
	}
	for {
		h, err := readHeader(b)
		if err != nil {
			return err
		}
		if h.length == lengthIndefinite {
			err = skipUntilEnd(b, depth-1)
		} else {
			_, err = b.Skip(h.length)
		}
		if err != nil {
			return err
		}
		if h.isEndOfContents() {
			return nil
		}
	}
}

// skipElement advances b past the next data value.
func skipElement(b *Buffer, depth int) error {
	h, err := readHeader(b)
	if err != nil {
		return err
	}
	if h.length == lengthIndefinite {
		return skipUntilEnd(b, depth)
	}
	_, err = b.Skip(h.length)
	return err
}

// peekEndOfContents reports whether the next data value in b is an
// end-of-contents marker.
func peekEndOfContents(b *Buffer) bool {
	cp := b.Save()
	h, err := readHeader(b)
	b.Restore(cp)
	return err == nil && h.isEndOfContents()
}

// composite decodes the children of c in order. In partial mode a failing
// child is skipped together with the data value it failed on.
func (s *decodeState) composite(c schema.Composite, b *Buffer) (map[string]any, error) {
	obj := make(map[string]any, len(c.Children))
	prev := s.r.obj
	s.r.obj = obj
	defer func() { s.r.obj = prev }()

	for _, child := range c.Children {
		cp := b.Save()
		v, present, err := s.field(child, b)
		if err != nil {
			if s.r.strict() {
				return nil, err
			}
			if b.Offset() == cp.off {
				// Continue after the element the child failed on. If it
				// cannot be skipped, later children cannot be aligned.
				if skipElement(b, s.opts.maxDepth()) != nil {
					break
				}
			}
			continue
		}
		if key := child.FieldKey(); key != "" && (present || v != nil) {
			obj[key] = v
		}
	}
	return obj, nil
}

// list decodes the elements of l until b is exhausted or an end-of-contents
// marker is found.
func (s *decodeState) list(l schema.ListOf, b *Buffer) ([]any, error) {
	elem, err := s.r.resolve(&s.d.clones, nil, l.Elem)
	if err != nil {
		return nil, err
	}
	list := make([]any, 0)
	for i := 0; !b.Empty(); i++ {
		if peekEndOfContents(b) {
			break
		}
		n := s.r.enterIndex(i)
		v, _, err := s.field(elem, b)
		s.r.exit(n)
		if err != nil {
			if s.r.strict() {
				return nil, err
			}
			break
		}
		list = append(list, v)
	}
	return list, nil
}

// choice decodes the first branch of c that matches.
func (s *decodeState) choice(c schema.Choice, b *Buffer) (any, error) {
	for _, br := range c.Branches {
		v, ok := s.try(b, func() (any, error) {
			v, _, err := s.field(br.Node, b)
			return v, err
		})
		if ok {
			return Choice{Type: br.Name, Value: v}, nil
		}
	}
	return nil, s.r.errorf(ErrChoice, "Choice not matched")
}

// defaultValue normalizes the default value of n to the form a decoded value
// would have.
func defaultValue(n *schema.Node, def any) any {
	p, ok := n.Type().(schema.Primitive)
	if !ok || def == nil || (p.Kind != schema.Int && p.Kind != schema.Enum) {
		return def
	}
	if _, ok := def.(string); ok {
		return def
	}
	i, err := toBigInt(def, p)
	if err != nil {
		return def
	}
	if name, ok := p.Name(i.String()); ok {
		return name
	}
	return new(big.Int).Set(i)
}
