// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schema declares ASN.1 structures as trees of typed nodes.
//
// A schema is built by a function that receives a [Root]. Every method called
// on the Root creates a new node. Nodes are configured through chained method
// calls and combined into composites:
//
//	s, err := schema.New("Point", func(r *schema.Root) {
//		r.Seq(
//			r.Key("x").Int(),
//			r.Key("y").Int(),
//			r.Key("label").UTF8Str().Optional(),
//		)
//	})
//
// After the function returns, exactly one node without a parent must remain.
// It becomes the top-level node of the schema. Misuse of the builder, such as
// selecting two types for one node, is reported as an error wrapping
// [ErrInvalid]. Once built, a schema is immutable and can be shared between
// goroutines.
package schema

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalid is wrapped by all errors reporting an invalid schema definition.
var ErrInvalid = errors.New("invalid schema")

// Ref refers to a schema. Referenced schemas are resolved during encoding and
// decoding. The argument passed to ResolveSchema is the enclosing object: the
// partially decoded map of the surrounding composite when decoding and the
// value of the surrounding composite when encoding. It may be nil.
type Ref interface {
	ResolveSchema(obj any) (*Schema, error)
}

// Resolver is a [Ref] that selects a schema based on the enclosing object.
type Resolver func(obj any) (*Schema, error)

// ResolveSchema calls f.
func (f Resolver) ResolveSchema(obj any) (*Schema, error) {
	return f(obj)
}

// Schema is a named, immutable tree of nodes.
type Schema struct {
	name string
	node *Node
}

// New builds a schema by calling body with a fresh [Root]. An error is
// returned if the builder was misused or if body did not produce exactly one
// top-level node.
func New(name string, body func(r *Root)) (*Schema, error) {
	r := &Root{name: name}
	body(r)
	node, err := r.build()
	if err != nil {
		return nil, err
	}
	return &Schema{name: name, node: node}, nil
}

// MustNew is like [New] but panics if the schema is invalid.
func MustNew(name string, body func(r *Root)) *Schema {
	s, err := New(name, body)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the name s was defined with.
func (s *Schema) Name() string { return s.name }

// Node returns the top-level node of s.
func (s *Schema) Node() *Node { return s.node }

// ResolveSchema returns s. It makes a Schema usable as a [Ref].
func (s *Schema) ResolveSchema(any) (*Schema, error) { return s, nil }

// Root collects the nodes created while a schema is built.
type Root struct {
	name   string
	nodes  []*Node
	faults *multierror.Error
	built  bool
}

// fault records a builder misuse.
func (r *Root) fault(format string, args ...any) {
	err := fmt.Errorf("%w: %s: %s", ErrInvalid, r.name, fmt.Sprintf(format, args...))
	r.faults = multierror.Append(r.faults, err)
}

// build validates the collected nodes, freezes them and returns the single
// top-level node.
func (r *Root) build() (*Node, error) {
	var top []*Node
	for _, n := range r.nodes {
		if n.contains != nil {
			switch t := n.typ.(type) {
			case Primitive:
				if t.Kind == OctStr || t.Kind == BitStr {
					n.typ = Contained{Kind: t.Kind, Target: n.contains}
				} else {
					r.fault("contains on %s", t.Kind)
				}
			default:
				r.fault("contains requires an octet string or bit string")
			}
		}
		if n.typ == nil && !n.any {
			r.fault("node %s has no type", n)
		}
		if n.parent == nil {
			top = append(top, n)
		}
	}
	if len(top) != 1 {
		r.fault("expected exactly one top-level node, got %d", len(top))
	}
	r.built = true
	for _, n := range r.nodes {
		n.frozen = true
	}
	if err := r.faults.ErrorOrNil(); err != nil {
		return nil, err
	}
	return top[0], nil
}

// New creates a node without a type.
func (r *Root) New() *Node {
	if r.built {
		panic("schema: node created after build")
	}
	n := &Node{root: r}
	r.nodes = append(r.nodes, n)
	return n
}

// The following methods create a new node and apply the method of the same
// name to it.

func (r *Root) Key(name string) *Node { return r.New().Key(name) }
func (r *Root) Optional() *Node { return r.New().Optional() }
func (r *Root) Default(v any) *Node { return r.New().Default(v) }
func (r *Root) Explicit(num uint) *Node { return r.New().Explicit(num) }
func (r *Root) Implicit(num uint) *Node { return r.New().Implicit(num) }
func (r *Root) Any() *Node { return r.New().Any() }
func (r *Root) Use(ref Ref) *Node { return r.New().Use(ref) }
func (r *Root) Contains(ref Ref) *Node { return r.New().Contains(ref) }
func (r *Root) Choice(branches ...Branch) *Node { return r.New().Choice(branches...) }
func (r *Root) Seq(children ...*Node) *Node { return r.New().Seq(children...) }
func (r *Root) Set(children ...*Node) *Node { return r.New().Set(children...) }
func (r *Root) SeqOf(elem Ref) *Node { return r.New().SeqOf(elem) }
func (r *Root) SetOf(elem Ref) *Node { return r.New().SetOf(elem) }
func (r *Root) Int(values ...map[int64]string) *Node {
	return r.New().Int(values...)
}
func (r *Root) Enum(values ...map[int64]string) *Node {
	return r.New().Enum(values...)
}
func (r *Root) ObjID(values ...map[string]string) *Node {
	return r.New().ObjID(values...)
}
func (r *Root) RelObjID(values ...map[string]string) *Node {
	return r.New().RelObjID(values...)
}
func (r *Root) Bool() *Node { return r.New().Bool() }
func (r *Root) GenTime() *Node { return r.New().GenTime() }
func (r *Root) UTCTime() *Node { return r.New().UTCTime() }
func (r *Root) Null() *Node { return r.New().Null() }
func (r *Root) ObjDesc() *Node { return r.New().ObjDesc() }
func (r *Root) BitStr() *Node { return r.New().BitStr() }
func (r *Root) BMPStr() *Node { return r.New().BMPStr() }
func (r *Root) CharStr() *Node { return r.New().CharStr() }
func (r *Root) GenStr() *Node { return r.New().GenStr() }
func (r *Root) GraphStr() *Node { return r.New().GraphStr() }
func (r *Root) IA5Str() *Node { return r.New().IA5Str() }
func (r *Root) ISO646Str() *Node { return r.New().ISO646Str() }
func (r *Root) NumStr() *Node { return r.New().NumStr() }
func (r *Root) OctStr() *Node { return r.New().OctStr() }
func (r *Root) PrintStr() *Node { return r.New().PrintStr() }
func (r *Root) T61Str() *Node { return r.New().T61Str() }
func (r *Root) UniStr() *Node { return r.New().UniStr() }
func (r *Root) UTF8Str() *Node { return r.New().UTF8Str() }
func (r *Root) VideoStr() *Node { return r.New().VideoStr() }
