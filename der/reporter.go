// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// reporter holds the per-call state shared by decoding and encoding: the path
// of the current field, the map of the enclosing composite and the errors
// collected in partial mode.
//
// While trial > 0 the reporter is strict: errors are returned but never
// collected. Trials are used to probe optional fields and choice branches.
type reporter struct {
	path    []string
	obj     map[string]any
	errs    []error
	partial bool
	trial   int
}

// mark is a saved reporter state.
type mark struct {
	path int
	errs int
	obj  map[string]any
}

// enterKey pushes a field name and returns the path length to restore.
func (r *reporter) enterKey(key string) int {
	n := len(r.path)
	r.path = append(r.path, "["+strconv.Quote(key)+"]")
	return n
}

// enterIndex pushes a list index and returns the path length to restore.
func (r *reporter) enterIndex(i int) int {
	n := len(r.path)
	r.path = append(r.path, "["+strconv.Itoa(i)+"]")
	return n
}

// exit truncates the path to length n.
func (r *reporter) exit(n int) {
	r.path = r.path[:n]
}

// Path returns the current path.
func (r *reporter) Path() string {
	return strings.Join(r.path, "")
}

// strict reports whether the first error aborts the current operation.
func (r *reporter) strict() bool {
	return !r.partial || r.trial > 0
}

// errorf creates an error of the given kind at the current path. Outside of
// trials the error is collected in partial mode.
func (r *reporter) errorf(kind error, format string, args ...any) error {
	return r.record(&Error{Path: r.Path(), Msg: fmt.Sprintf(format, args...), Err: kind})
}

// wrap localizes err at the current path unless it already is an [*Error].
func (r *reporter) wrap(err error) error {
	if e := (*Error)(nil); errors.As(err, &e) {
		return err
	}
	return r.record(&Error{Path: r.Path(), Msg: err.Error(), Err: err})
}

func (r *reporter) record(err *Error) error {
	if r.partial && r.trial == 0 {
		r.errs = append(r.errs, err)
	}
	return err
}

func (r *reporter) save() mark {
	return mark{path: len(r.path), errs: len(r.errs), obj: r.obj}
}

func (r *reporter) restore(m mark) {
	r.path = r.path[:m.path]
	r.errs = r.errs[:m.errs]
	r.obj = m.obj
}

// result returns the errors collected in partial mode, or nil.
func (r *reporter) result() error {
	if len(r.errs) == 0 {
		return nil
	}
	return multierror.Append(nil, r.errs...)
}
