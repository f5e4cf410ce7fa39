// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"sync"

	"codello.dev/asn1schema/schema"
)

// cloneKey identifies the implicitly tagged copy of a referenced node.
type cloneKey struct {
	use    *schema.Node
	target *schema.Node
}

// cloneCache holds implicitly tagged copies of referenced schema nodes. It is
// safe for concurrent use.
type cloneCache struct {
	m sync.Map // cloneKey -> *schema.Node
}

// implicit returns a copy of target with the context-specific tag num.
func (c *cloneCache) implicit(use, target *schema.Node, num uint) (*schema.Node, error) {
	key := cloneKey{use, target}
	if v, ok := c.m.Load(key); ok {
		return v.(*schema.Node), nil
	}
	clone, err := target.WithImplicit(num)
	if err != nil {
		return nil, err
	}
	v, _ := c.m.LoadOrStore(key, clone)
	return v.(*schema.Node), nil
}

// resolve resolves ref against the enclosing object of r and returns the
// top-level node of the referenced schema. If use carries an implicit tag the
// node is replaced by an implicitly tagged copy.
func (r *reporter) resolve(c *cloneCache, use *schema.Node, ref schema.Ref) (*schema.Node, error) {
	s, err := ref.ResolveSchema(r.obj)
	if err != nil {
		return nil, r.wrap(err)
	}
	if s == nil {
		return nil, r.errorf(ErrStructure, "no schema resolved")
	}
	target := s.Node()
	if use == nil {
		return target, nil
	}
	num, ok := use.ImplicitTag()
	if !ok {
		return target, nil
	}
	if target, err = c.implicit(use, target, num); err != nil {
		return nil, r.wrap(err)
	}
	return target, nil
}
