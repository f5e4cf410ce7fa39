// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"reflect"
	"sync"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/schema"
)

// An Encoder encodes values according to a schema. An Encoder is safe for
// concurrent use.
type Encoder struct {
	schema   *schema.Schema
	clones   cloneCache
	defaults sync.Map // *schema.Node -> []byte
}

// NewEncoder returns an Encoder for s.
func NewEncoder(s *schema.Schema) *Encoder {
	return &Encoder{schema: s}
}

// Schema returns the schema of e.
func (e *Encoder) Schema() *schema.Schema {
	return e.schema
}

// Encode encodes v. In partial mode Encode returns the encoding of all fields
// that could be encoded together with the collected errors.
func (e *Encoder) Encode(v any, opts *Options) ([]byte, error) {
	f, err := e.EncodeFragment(v, opts)
	if f.IsZero() {
		return nil, err
	}
	return f.Join(), err
}

// EncodeFragment is like [Encoder.Encode] but returns the unflattened
// encoding.
func (e *Encoder) EncodeFragment(v any, opts *Options) (Fragment, error) {
	s := &encodeState{e: e, opts: opts, r: reporter{partial: opts != nil && opts.Partial}}
	f, err := s.field(e.schema.Node(), v)
	if s.r.partial {
		return f, s.r.result()
	}
	if err != nil {
		return Fragment{}, err
	}
	return f, nil
}

// encodeState holds the state of a single encode call.
type encodeState struct {
	e     *Encoder
	opts  *Options
	r     reporter
	depth int
}

// field encodes v as n. Optional fields without a value and fields equal to
// their default value result in an absent fragment.
func (s *encodeState) field(n *schema.Node, v any) (Fragment, error) {
	if key := n.FieldKey(); key != "" {
		defer s.r.exit(s.r.enterKey(key))
	}
	if s.depth++; s.depth > s.opts.maxDepth() {
		s.depth--
		return Fragment{}, s.r.errorf(ErrDepth, "nesting exceeds %d levels", s.opts.maxDepth())
	}
	defer func() { s.depth-- }()

	def, hasDefault := n.DefaultValue()
	if n.IsOptional() && v == nil {
		return Fragment{}, nil
	}
	if hasDefault && equalValue(n, v, def) {
		return Fragment{}, nil
	}
	f, err := s.value(n, v)
	if err != nil {
		return f, err
	}
	if hasDefault && bytes.Equal(s.defaultEncoding(n), f.Join()) {
		return Fragment{}, nil
	}
	return f, nil
}

// defaultEncoding returns the memoized encoding of the default value of n. It
// is nil if the default value cannot be encoded.
func (s *encodeState) defaultEncoding(n *schema.Node) []byte {
	if b, ok := s.e.defaults.Load(n); ok {
		return b.([]byte)
	}
	def, _ := n.DefaultValue()
	m := s.r.save()
	s.r.trial++
	f, err := s.value(n, def)
	s.r.trial--
	s.r.restore(m)
	var b []byte
	if err == nil {
		b = f.Join()
	}
	actual, _ := s.e.defaults.LoadOrStore(n, b)
	return actual.([]byte)
}

// value encodes v as n including the tags of n.
func (s *encodeState) value(n *schema.Node, v any) (Fragment, error) {
	var f Fragment
	var err error
	if n.IsAny() {
		f, err = s.raw(v)
	} else {
		switch t := n.Type().(type) {
		case schema.Choice:
			f, err = s.choice(t, v)
		case schema.Reference:
			var target *schema.Node
			if target, err = s.r.resolve(&s.e.clones, n, t.Target); err == nil {
				f, err = s.field(target, v)
			}
		default:
			var content Fragment
			if content, err = s.content(n, v); err == nil {
				tag, _ := n.InnerTag()
				f = tlv(tag, schema.KindOf(t).Constructed(), content)
			}
		}
	}
	if err != nil {
		return Fragment{}, err
	}
	if num, ok := n.ExplicitTag(); ok {
		f = tlv(asn1.Context(num), true, f)
	}
	return f, nil
}

// content encodes the contents octets of a node with a tag of its own.
func (s *encodeState) content(n *schema.Node, v any) (Fragment, error) {
	switch t := n.Type().(type) {
	case schema.Primitive:
		f, err := encodePrimitive(v, t)
		if err != nil {
			return Fragment{}, s.r.wrap(err)
		}
		return f, nil
	case schema.Composite:
		return s.composite(t, v)
	case schema.ListOf:
		return s.list(t, v)
	case schema.Contained:
		target, err := s.r.resolve(&s.e.clones, nil, t.Target)
		if err != nil {
			return Fragment{}, err
		}
		f, err := s.field(target, v)
		if err != nil {
			return Fragment{}, err
		}
		if t.Kind == schema.BitStr {
			f = Concat(Byte(0), f)
		}
		return f, nil
	}
	return Fragment{}, s.r.errorf(ErrUnsupported, "cannot encode %s", n)
}

// tlv prepends a header to content.
func tlv(tag asn1.Tag, constructed bool, content Fragment) Fragment {
	return Concat(Bytes(appendHeader(nil, tag, constructed, content.Len())), content)
}

// raw returns the complete encoding of an any field.
func (s *encodeState) raw(v any) (Fragment, error) {
	switch v := v.(type) {
	case []byte:
		return Bytes(v), nil
	case Fragment:
		return v, nil
	}
	return Fragment{}, s.r.errorf(ErrStructure, "raw bytes expected, got %T", v)
}

// composite encodes the children of c in order. Null children are encoded
// regardless of the input.
func (s *encodeState) composite(c schema.Composite, v any) (Fragment, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Fragment{}, s.r.errorf(ErrStructure, "child expected, but input is not object")
	}
	prev := s.r.obj
	s.r.obj = obj
	defer func() { s.r.obj = prev }()

	parts := make([]Fragment, 0, len(c.Children))
	for _, child := range c.Children {
		var f Fragment
		var err error
		switch {
		case schema.KindOf(child.Type()) == schema.Null:
			f, err = s.value(child, nil)
		case child.FieldKey() == "":
			err = s.r.errorf(ErrStructure, "child should have a key")
		default:
			f, err = s.field(child, obj[child.FieldKey()])
		}
		if err != nil {
			if s.r.strict() {
				return Fragment{}, err
			}
			continue
		}
		parts = append(parts, f)
	}
	return Concat(parts...), nil
}

// list encodes the elements of a slice or array.
func (s *encodeState) list(l schema.ListOf, v any) (Fragment, error) {
	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k != reflect.Slice && k != reflect.Array {
		return Fragment{}, s.r.errorf(ErrStructure, "%s, but input is not a slice", l.Kind)
	}
	elem, err := s.r.resolve(&s.e.clones, nil, l.Elem)
	if err != nil {
		return Fragment{}, err
	}
	parts := make([]Fragment, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n := s.r.enterIndex(i)
		f, err := s.field(elem, rv.Index(i).Interface())
		s.r.exit(n)
		if err != nil {
			if s.r.strict() {
				return Fragment{}, err
			}
			continue
		}
		parts = append(parts, f)
	}
	return Concat(parts...), nil
}

// choice encodes the selected branch of c.
func (s *encodeState) choice(c schema.Choice, v any) (Fragment, error) {
	var ch Choice
	switch v := v.(type) {
	case Choice:
		ch = v
	case *Choice:
		if v == nil {
			return Fragment{}, s.r.errorf(ErrStructure, "missing choice value")
		}
		ch = *v
	default:
		return Fragment{}, s.r.errorf(ErrStructure, "choice expected, got %T", v)
	}
	n, ok := c.Branch(ch.Type)
	if !ok {
		return Fragment{}, s.r.errorf(ErrStructure, "%q not found in choice", ch.Type)
	}
	return s.field(n, ch.Value)
}

// equalValue reports whether v equals the default value def of n. Integers
// are compared numerically.
func equalValue(n *schema.Node, v, def any) bool {
	if p, ok := n.Type().(schema.Primitive); ok && (p.Kind == schema.Int || p.Kind == schema.Enum) {
		a, err := toBigInt(v, p)
		if err != nil {
			return false
		}
		b, err := toBigInt(def, p)
		if err != nil {
			return false
		}
		return a.Cmp(b) == 0
	}
	return reflect.DeepEqual(v, def)
}
