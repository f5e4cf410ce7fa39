// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"

	"codello.dev/asn1schema"
)

// Type describes what a [Node] holds. It is one of [Primitive], [Composite],
// [ListOf], [Choice], [Reference] or [Contained].
type Type interface {
	// Tag returns the universal tag of values of this type. Choices and
	// references have no tag of their own.
	Tag() (asn1.Tag, bool)
	isType()
}

// Primitive is a type without child nodes. INTEGER, ENUMERATED, OBJECT
// IDENTIFIER and RELATIVE-OID primitives may carry a value map that assigns
// names to well-known values.
type Primitive struct {
	Kind Kind

	names  map[string]string // canonical value -> name
	values map[string]string // name -> canonical value
}

// Name returns the name assigned to a value. Integers are identified by their
// decimal representation, object identifiers by their dotted notation.
func (p Primitive) Name(value string) (string, bool) {
	name, ok := p.names[value]
	return name, ok
}

// Value returns the canonical value that has been assigned the given name.
func (p Primitive) Value(name string) (string, bool) {
	value, ok := p.values[name]
	return value, ok
}

// HasValues reports whether a value map has been defined for p.
func (p Primitive) HasValues() bool {
	return len(p.names) > 0
}

func (p Primitive) Tag() (asn1.Tag, bool) { return p.Kind.Tag(), true }

// Composite is a SEQUENCE or SET with named children.
type Composite struct {
	Kind     Kind // Seq or Set
	Children []*Node
}

func (c Composite) Tag() (asn1.Tag, bool) { return c.Kind.Tag(), true }

// ListOf is a SEQUENCE OF or SET OF whose elements are described by another
// schema.
type ListOf struct {
	Kind Kind // SeqOf or SetOf
	Elem Ref
}

func (l ListOf) Tag() (asn1.Tag, bool) { return l.Kind.Tag(), true }

// A Branch is one alternative of a [Choice].
type Branch struct {
	Name string
	Node *Node
}

// Alt returns a [Branch] with the given name.
func Alt(name string, n *Node) Branch {
	return Branch{Name: name, Node: n}
}

// Choice is a tagged union. Branches are tried in declaration order.
type Choice struct {
	Branches []Branch
}

func (Choice) Tag() (asn1.Tag, bool) { return asn1.Tag{}, false }

// Branch returns the branch with the given name.
func (c Choice) Branch(name string) (*Node, bool) {
	for _, b := range c.Branches {
		if b.Name == name {
			return b.Node, true
		}
	}
	return nil, false
}

// Reference delegates to another schema.
type Reference struct {
	Target Ref
}

func (Reference) Tag() (asn1.Tag, bool) { return asn1.Tag{}, false }

// Contained is a BIT STRING or OCTET STRING whose payload is the encoding of
// another schema.
type Contained struct {
	Kind   Kind // BitStr or OctStr
	Target Ref
}

func (c Contained) Tag() (asn1.Tag, bool) { return c.Kind.Tag(), true }

func (Primitive) isType() {}
func (Composite) isType() {}
func (ListOf) isType()    {}
func (Choice) isType()    {}
func (Reference) isType() {}
func (Contained) isType() {}

// KindOf returns the kind of t or zero if t has no kind.
func KindOf(t Type) Kind {
	switch t := t.(type) {
	case Primitive:
		return t.Kind
	case Composite:
		return t.Kind
	case ListOf:
		return t.Kind
	case Contained:
		return t.Kind
	}
	return 0
}

// Node is a single field of a schema. Nodes are created through a [Root]
// while a schema is built and are read-only afterward.
type Node struct {
	root   *Root
	parent *Node

	typ      Type
	contains Ref // applied during build

	key         string
	optional    bool
	def         any
	hasDefault  bool
	explicit    uint
	hasExplicit bool
	implicit    uint
	hasImplicit bool
	any         bool

	frozen bool
}

// Type returns the type of n. It is nil for nodes that only capture raw bytes.
func (n *Node) Type() Type { return n.typ }

// FieldKey returns the field name of n within its parent composite.
func (n *Node) FieldKey() string { return n.key }

// IsOptional reports whether n may be absent.
func (n *Node) IsOptional() bool { return n.optional }

// DefaultValue returns the default value of n.
func (n *Node) DefaultValue() (any, bool) { return n.def, n.hasDefault }

// ExplicitTag returns the context-specific tag number n is explicitly tagged
// with.
func (n *Node) ExplicitTag() (uint, bool) { return n.explicit, n.hasExplicit }

// ImplicitTag returns the context-specific tag number that replaces the own
// tag of n.
func (n *Node) ImplicitTag() (uint, bool) { return n.implicit, n.hasImplicit }

// IsAny reports whether n captures the raw encoding of a value.
func (n *Node) IsAny() bool { return n.any }

// Parent returns the node that n is a child or branch of.
func (n *Node) Parent() *Node { return n.parent }

// OuterTag returns the first tag an encoding of n starts with: the explicit
// tag, the implicit tag or the own tag in that order of preference. Nodes
// without a fixed tag report false.
func (n *Node) OuterTag() (asn1.Tag, bool) {
	if n.hasExplicit {
		return asn1.Context(n.explicit), true
	}
	if n.hasImplicit {
		return asn1.Context(n.implicit), true
	}
	if n.typ == nil {
		return asn1.Tag{}, false
	}
	return n.typ.Tag()
}

// InnerTag returns the tag of the header that directly precedes the contents
// of n: the implicit tag or the own tag.
func (n *Node) InnerTag() (asn1.Tag, bool) {
	if n.hasImplicit {
		return asn1.Context(n.implicit), true
	}
	if n.typ == nil {
		return asn1.Tag{}, false
	}
	return n.typ.Tag()
}

// WithImplicit returns a read-only copy of n whose outermost tag is replaced
// by the context-specific tag num. The copy carries no key, optionality or
// default. It is used to apply an IMPLICIT tag to a referenced schema.
func (n *Node) WithImplicit(num uint) (*Node, error) {
	if _, ok := n.typ.(Choice); ok && !n.hasExplicit {
		return nil, fmt.Errorf("%w: implicit tag on untagged choice", ErrInvalid)
	}
	c := *n
	c.parent = nil
	c.key = ""
	c.optional = false
	c.def, c.hasDefault = nil, false
	c.frozen = true
	if c.hasExplicit {
		c.explicit = num
	} else {
		c.implicit, c.hasImplicit = num, true
	}
	return &c, nil
}

// String returns a short description of n for diagnostics.
func (n *Node) String() string {
	var s string
	switch t := n.typ.(type) {
	case nil:
		s = "untyped"
		if n.any {
			s = "any"
		}
	case Choice:
		s = "choice"
	case Reference:
		s = "use"
	default:
		s = KindOf(t).String()
	}
	if n.key != "" {
		s = n.key + ":" + s
	}
	return s
}
