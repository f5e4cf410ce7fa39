// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"strconv"

	"codello.dev/asn1schema"
)

// mutate panics if n belongs to a built schema.
func (n *Node) mutate() {
	if n.frozen {
		panic("schema: node modified after build")
	}
}

// setType selects the type of n. Selecting a second type is a fault.
func (n *Node) setType(t Type) *Node {
	n.mutate()
	if n.typ != nil {
		n.root.fault("node %s: cannot change type to %T", n, t)
		return n
	}
	n.typ = t
	return n
}

// adopt makes n the parent of child.
func (n *Node) adopt(child *Node) bool {
	switch {
	case child == nil:
		n.root.fault("node %s: nil child", n)
	case child.root != n.root:
		n.root.fault("node %s: child %s belongs to a different schema", n, child)
	case child == n:
		n.root.fault("node %s: node cannot contain itself", n)
	case child.parent != nil:
		n.root.fault("node %s: child %s already has a parent", n, child)
	default:
		child.parent = n
		return true
	}
	return false
}

// Key sets the name under which the value of n is stored in the map of its
// parent composite.
func (n *Node) Key(name string) *Node {
	n.mutate()
	if n.key != "" {
		n.root.fault("node %s: key already set", n)
		return n
	}
	n.key = name
	return n
}

// Optional marks n as optional. Absent optional fields are omitted from the
// decoded map.
func (n *Node) Optional() *Node {
	n.mutate()
	n.optional = true
	return n
}

// Default marks n as optional with the given default value. During decoding
// an absent field takes the default. During encoding a value equal to the
// default is omitted.
func (n *Node) Default(v any) *Node {
	n.mutate()
	if n.hasDefault {
		n.root.fault("node %s: default already set", n)
		return n
	}
	n.def, n.hasDefault = v, true
	n.optional = true
	return n
}

// Explicit wraps the encoding of n in a constructed context-specific tag.
func (n *Node) Explicit(num uint) *Node {
	n.mutate()
	if n.hasExplicit || n.hasImplicit {
		n.root.fault("node %s: tagging already set", n)
		return n
	}
	n.explicit, n.hasExplicit = num, true
	return n
}

// Implicit replaces the own tag of n with a context-specific tag.
func (n *Node) Implicit(num uint) *Node {
	n.mutate()
	if n.hasExplicit || n.hasImplicit {
		n.root.fault("node %s: tagging already set", n)
		return n
	}
	n.implicit, n.hasImplicit = num, true
	return n
}

// Any makes n capture the complete encoding of a value as raw bytes. If n also
// has a type, the type is only used to detect the presence of optional fields.
func (n *Node) Any() *Node {
	n.mutate()
	if n.any {
		n.root.fault("node %s: any already set", n)
		return n
	}
	n.any = true
	return n
}

// Use makes n delegate to another schema.
func (n *Node) Use(ref Ref) *Node {
	if ref == nil {
		n.mutate()
		n.root.fault("node %s: nil reference", n)
		return n
	}
	return n.setType(Reference{Target: ref})
}

// Contains declares that the payload of the bit string or octet string n is
// the encoding of another schema.
func (n *Node) Contains(ref Ref) *Node {
	n.mutate()
	if n.contains != nil || ref == nil {
		n.root.fault("node %s: invalid or repeated contains", n)
		return n
	}
	n.contains = ref
	return n
}

// Choice makes n a union of the given branches. Branch names must be unique.
func (n *Node) Choice(branches ...Branch) *Node {
	n.mutate()
	seen := make(map[string]bool, len(branches))
	bs := make([]Branch, 0, len(branches))
	for _, b := range branches {
		if seen[b.Name] {
			n.root.fault("node %s: duplicate branch %q", n, b.Name)
			continue
		}
		seen[b.Name] = true
		if n.adopt(b.Node) {
			bs = append(bs, b)
		}
	}
	return n.setType(Choice{Branches: bs})
}

// Seq makes n a SEQUENCE of the given children.
func (n *Node) Seq(children ...*Node) *Node {
	return n.composite(Seq, children)
}

// Set makes n a SET of the given children. Children are encoded in
// declaration order.
func (n *Node) Set(children ...*Node) *Node {
	return n.composite(Set, children)
}

func (n *Node) composite(k Kind, children []*Node) *Node {
	n.mutate()
	cs := make([]*Node, 0, len(children))
	for _, c := range children {
		if n.adopt(c) {
			cs = append(cs, c)
		}
	}
	return n.setType(Composite{Kind: k, Children: cs})
}

// SeqOf makes n a SEQUENCE OF elements described by elem.
func (n *Node) SeqOf(elem Ref) *Node {
	return n.listOf(SeqOf, elem)
}

// SetOf makes n a SET OF elements described by elem.
func (n *Node) SetOf(elem Ref) *Node {
	return n.listOf(SetOf, elem)
}

func (n *Node) listOf(k Kind, elem Ref) *Node {
	if elem == nil {
		n.mutate()
		n.root.fault("node %s: %s without element schema", n, k)
		return n
	}
	return n.setType(ListOf{Kind: k, Elem: elem})
}

// Int makes n an INTEGER. The optional value maps assign names to values.
func (n *Node) Int(values ...map[int64]string) *Node {
	return n.setType(n.intType(Int, values))
}

// Enum makes n an ENUMERATED. The optional value maps assign names to values.
func (n *Node) Enum(values ...map[int64]string) *Node {
	return n.setType(n.intType(Enum, values))
}

func (n *Node) intType(k Kind, values []map[int64]string) Primitive {
	p := Primitive{Kind: k}
	for _, m := range values {
		for v, name := range m {
			p.assign(strconv.FormatInt(v, 10), name)
		}
	}
	return p
}

// ObjID makes n an OBJECT IDENTIFIER. The keys of the optional value maps are
// object identifiers in dotted or space-separated notation.
func (n *Node) ObjID(values ...map[string]string) *Node {
	return n.setType(n.oidType(ObjID, values))
}

// RelObjID makes n a RELATIVE-OID.
func (n *Node) RelObjID(values ...map[string]string) *Node {
	return n.setType(n.oidType(RelObjID, values))
}

func (n *Node) oidType(k Kind, values []map[string]string) Primitive {
	p := Primitive{Kind: k}
	for _, m := range values {
		for id, name := range m {
			oid, err := asn1.ParseObjectIdentifier(id)
			if err != nil {
				n.root.fault("node %s: %v: %q", n, err, id)
				continue
			}
			p.assign(oid.String(), name)
		}
	}
	return p
}

func (p *Primitive) assign(value, name string) {
	if p.names == nil {
		p.names = make(map[string]string)
		p.values = make(map[string]string)
	}
	p.names[value] = name
	p.values[name] = value
}

func (n *Node) Bool() *Node { return n.setType(Primitive{Kind: Bool}) }
func (n *Node) GenTime() *Node { return n.setType(Primitive{Kind: GenTime}) }
func (n *Node) UTCTime() *Node { return n.setType(Primitive{Kind: UTCTime}) }
func (n *Node) Null() *Node { return n.setType(Primitive{Kind: Null}) }
func (n *Node) ObjDesc() *Node { return n.setType(Primitive{Kind: ObjDesc}) }
func (n *Node) BitStr() *Node { return n.setType(Primitive{Kind: BitStr}) }
func (n *Node) BMPStr() *Node { return n.setType(Primitive{Kind: BMPStr}) }
func (n *Node) CharStr() *Node { return n.setType(Primitive{Kind: CharStr}) }
func (n *Node) GenStr() *Node { return n.setType(Primitive{Kind: GenStr}) }
func (n *Node) GraphStr() *Node { return n.setType(Primitive{Kind: GraphStr}) }
func (n *Node) IA5Str() *Node { return n.setType(Primitive{Kind: IA5Str}) }
func (n *Node) ISO646Str() *Node { return n.setType(Primitive{Kind: ISO646Str}) }
func (n *Node) NumStr() *Node { return n.setType(Primitive{Kind: NumStr}) }
func (n *Node) OctStr() *Node { return n.setType(Primitive{Kind: OctStr}) }
func (n *Node) PrintStr() *Node { return n.setType(Primitive{Kind: PrintStr}) }
func (n *Node) T61Str() *Node { return n.setType(Primitive{Kind: T61Str}) }
func (n *Node) UniStr() *Node { return n.setType(Primitive{Kind: UniStr}) }
func (n *Node) UTF8Str() *Node { return n.setType(Primitive{Kind: UTF8Str}) }
func (n *Node) VideoStr() *Node { return n.setType(Primitive{Kind: VideoStr}) }
