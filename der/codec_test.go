// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/schema"
)

var (
	point = schema.MustNew("Point", func(r *schema.Root) {
		r.Seq(
			r.Key("x").Int(),
			r.Key("y").Int(),
			r.Key("label").UTF8Str().Optional(),
		)
	})
	integer = schema.MustNew("Integer", func(r *schema.Root) { r.Int() })
	octets  = schema.MustNew("Octets", func(r *schema.Root) { r.OctStr() })
)

func ExampleDecoder_Decode() {
	v, err := NewDecoder(point).Decode([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}, nil)
	if err != nil {
		panic(err)
	}
	m := v.(map[string]any)
	fmt.Println(m["x"], m["y"])
	// Output: 1 2
}

func ExampleEncoder_Encode() {
	data, err := NewEncoder(point).Encode(map[string]any{"x": 1, "y": 2, "label": "a"}, nil)
	if err != nil {
		panic(err)
	}
	fmt.Printf("% x\n", data)
	// Output: 30 09 02 01 01 02 01 02 0c 01 61
}

func ExampleError() {
	_, err := NewDecoder(point).Decode([]byte{0x30, 0x03, 0x02, 0x02, 0x01}, nil)
	fmt.Println(err)
	// Output: buffer overrun at: ["x"]
}

// roundTrip encodes v with s, compares the result to data and decodes it
// again.
func roundTrip(t *testing.T, s *schema.Schema, v any, data []byte, want any) {
	t.Helper()
	got, err := NewEncoder(s).Encode(v, nil)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Encode() = % x, want % x", got, data)
	}
	dec, err := NewDecoder(s).Decode(data, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(want, dec, bigIntComparer); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip(t *testing.T) {
	inner := schema.MustNew("Inner", func(r *schema.Root) {
		r.Seq(r.Key("x").Int())
	})
	tests := map[string]struct {
		schema *schema.Schema
		v      any
		data   []byte
		want   any
	}{
		"Point": {
			point,
			map[string]any{"x": 1, "y": 2},
			[]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02},
			map[string]any{"x": big.NewInt(1), "y": big.NewInt(2)},
		},
		"PointLabel": {
			point,
			map[string]any{"x": -1, "y": big.NewInt(300), "label": "pt"},
			[]byte{0x30, 0x0b, 0x02, 0x01, 0xff, 0x02, 0x02, 0x01, 0x2c, 0x0c, 0x02, 'p', 't'},
			map[string]any{"x": big.NewInt(-1), "y": big.NewInt(300), "label": "pt"},
		},
		"Int256": {integer, 256, []byte{0x02, 0x02, 0x01, 0x00}, big.NewInt(256)},
		"Int128": {integer, 128, []byte{0x02, 0x02, 0x00, 0x80}, big.NewInt(128)},
		"OID": {
			schema.MustNew("OID", func(r *schema.Root) { r.ObjID() }),
			asn1.ObjectIdentifier{1, 2, 840, 113549},
			[]byte{0x06, 0x06, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d},
			asn1.ObjectIdentifier{1, 2, 840, 113549},
		},
		"OIDName": {
			schema.MustNew("OID", func(r *schema.Root) { r.ObjID(map[string]string{"1.2.840.113549": "rsadsi"}) }),
			"rsadsi",
			[]byte{0x06, 0x06, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d},
			"rsadsi",
		},
		"Enum": {
			schema.MustNew("Enum", func(r *schema.Root) { r.Enum(map[int64]string{0: "a", 1: "b"}) }),
			"b",
			[]byte{0x0a, 0x01, 0x01},
			"b",
		},
		"Bool": {
			schema.MustNew("Bool", func(r *schema.Root) { r.Seq(r.Key("t").Bool(), r.Key("f").Bool()) }),
			map[string]any{"t": true, "f": false},
			[]byte{0x30, 0x06, 0x01, 0x01, 0xff, 0x01, 0x01, 0x00},
			map[string]any{"t": true, "f": false},
		},
		"Null": {
			schema.MustNew("Null", func(r *schema.Root) { r.Seq(r.Null(), r.Key("n").Int()) }),
			map[string]any{"n": 0},
			[]byte{0x30, 0x05, 0x05, 0x00, 0x02, 0x01, 0x00},
			map[string]any{"n": big.NewInt(0)},
		},
		"Time": {
			schema.MustNew("Time", func(r *schema.Root) { r.Seq(r.Key("u").UTCTime(), r.Key("g").GenTime()) }),
			map[string]any{"u": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "g": time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC)},
			append(append([]byte{0x30, 0x20, 0x17, 0x0d}, "250102030405Z"...), append([]byte{0x18, 0x0f}, "20491231235959Z"...)...),
			map[string]any{"u": time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "g": time.Date(2049, 12, 31, 23, 59, 59, 0, time.UTC)},
		},
		"SeqOf": {
			schema.MustNew("Ints", func(r *schema.Root) { r.SeqOf(integer) }),
			[]int{1, 2},
			[]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02},
			[]any{big.NewInt(1), big.NewInt(2)},
		},
		"SetOfEmpty": {
			schema.MustNew("Ints", func(r *schema.Root) { r.SetOf(integer) }),
			[]int{},
			[]byte{0x31, 0x00},
			[]any{},
		},
		"Explicit": {
			schema.MustNew("Explicit", func(r *schema.Root) {
				r.Seq(r.Key("a").Explicit(0).Int(), r.Key("b").Implicit(1).OctStr())
			}),
			map[string]any{"a": 5, "b": []byte{0x01}},
			[]byte{0x30, 0x08, 0xa0, 0x03, 0x02, 0x01, 0x05, 0x81, 0x01, 0x01},
			map[string]any{"a": big.NewInt(5), "b": []byte{0x01}},
		},
		"ImplicitUse": {
			schema.MustNew("Outer", func(r *schema.Root) { r.Seq(r.Key("in").Implicit(2).Use(inner)) }),
			map[string]any{"in": map[string]any{"x": 1}},
			[]byte{0x30, 0x05, 0xa2, 0x03, 0x02, 0x01, 0x01},
			map[string]any{"in": map[string]any{"x": big.NewInt(1)}},
		},
		"ExplicitUse": {
			schema.MustNew("Outer", func(r *schema.Root) { r.Seq(r.Key("in").Explicit(3).Use(inner)) }),
			map[string]any{"in": map[string]any{"x": 1}},
			[]byte{0x30, 0x07, 0xa3, 0x05, 0x30, 0x03, 0x02, 0x01, 0x01},
			map[string]any{"in": map[string]any{"x": big.NewInt(1)}},
		},
		"ContainsOctStr": {
			schema.MustNew("Wrap", func(r *schema.Root) { r.OctStr().Contains(inner) }),
			map[string]any{"x": 1},
			[]byte{0x04, 0x05, 0x30, 0x03, 0x02, 0x01, 0x01},
			map[string]any{"x": big.NewInt(1)},
		},
		"ContainsBitStr": {
			schema.MustNew("Wrap", func(r *schema.Root) { r.BitStr().Contains(inner) }),
			map[string]any{"x": 1},
			[]byte{0x03, 0x06, 0x00, 0x30, 0x03, 0x02, 0x01, 0x01},
			map[string]any{"x": big.NewInt(1)},
		},
		"Any": {
			schema.MustNew("Any", func(r *schema.Root) { r.Seq(r.Key("raw").Any(), r.Key("n").Int()) }),
			map[string]any{"raw": []byte{0x05, 0x00}, "n": 7},
			[]byte{0x30, 0x05, 0x05, 0x00, 0x02, 0x01, 0x07},
			map[string]any{"raw": []byte{0x05, 0x00}, "n": big.NewInt(7)},
		},
		"MultiOctetTag": {
			schema.MustNew("Tagged", func(r *schema.Root) { r.Implicit(200).Int() }),
			1,
			[]byte{0x9f, 0x81, 0x48, 0x01, 0x01},
			big.NewInt(1),
		},
		"LongLength": {
			octets,
			bytes.Repeat([]byte{0xaa}, 200),
			append([]byte{0x04, 0x81, 0xc8}, bytes.Repeat([]byte{0xaa}, 200)...),
			bytes.Repeat([]byte{0xaa}, 200),
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			roundTrip(t, tt.schema, tt.v, tt.data, tt.want)
		})
	}
}

func TestDecoder_Truncated(t *testing.T) {
	tests := map[string]struct {
		data []byte
		path string
	}{
		"Field":     {[]byte{0x30, 0x03, 0x02, 0x02, 0x01}, `["x"]`},
		"Header":    {[]byte{0x30, 0x03, 0x02, 0x01, 0x01}, `["y"]`},
		"Composite": {[]byte{0x30, 0x06, 0x02, 0x01, 0x01}, ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := NewDecoder(point).Decode(tt.data, nil)
			if !errors.Is(err, ErrOverrun) {
				t.Fatalf("Decode() error = %v, want %v", err, ErrOverrun)
			}
			var e *Error
			if !errors.As(err, &e) || e.Path != tt.path {
				t.Errorf("Decode() error path = %q, want %q", e.Path, tt.path)
			}
			if v != nil {
				t.Errorf("Decode() = %v, want nil", v)
			}
		})
	}
}

func TestDecoder_Choice(t *testing.T) {
	s := schema.MustNew("Choice", func(r *schema.Root) {
		r.Choice(
			schema.Alt("a", r.Int()),
			schema.Alt("b", r.OctStr()),
		)
	})
	tests := map[string]struct {
		data    []byte
		want    any
		wantErr error
	}{
		"A":         {[]byte{0x02, 0x01, 0x2a}, Choice{Type: "a", Value: big.NewInt(42)}, nil},
		"B":         {[]byte{0x04, 0x02, 0xab, 0xcd}, Choice{Type: "b", Value: []byte{0xab, 0xcd}}, nil},
		"NoMatch":   {[]byte{0x01, 0x01, 0xff}, nil, ErrChoice},
		"Truncated": {[]byte{0x04, 0x02, 0xab}, nil, ErrChoice},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewDecoder(s).Decode(tt.data, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got, bigIntComparer); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
			if tt.wantErr != nil {
				return
			}
			data, err := NewEncoder(s).Encode(got, nil)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("Encode() = % x, want % x", data, tt.data)
			}
		})
	}
	if _, err := NewDecoder(s).Decode([]byte{0x01, 0x01, 0xff}, nil); err == nil || err.Error() != "Choice not matched at: (shallow)" {
		t.Errorf("Decode() error = %v, want %q", err, "Choice not matched at: (shallow)")
	}
	if _, err := NewEncoder(s).Encode(Choice{Type: "c", Value: 1}, nil); !errors.Is(err, ErrStructure) {
		t.Errorf("Encode() error = %v, want %v", err, ErrStructure)
	}
}

func TestDefault(t *testing.T) {
	s := schema.MustNew("Versioned", func(r *schema.Root) {
		r.Seq(
			r.Key("value").Int(),
			r.Key("version").Int().Default(0),
		)
	})
	tests := map[string]struct {
		v    any
		want []byte
	}{
		"Elided":    {map[string]any{"version": 0, "value": 5}, []byte{0x30, 0x03, 0x02, 0x01, 0x05}},
		"ElidedBig": {map[string]any{"version": big.NewInt(0), "value": 5}, []byte{0x30, 0x03, 0x02, 0x01, 0x05}},
		"Missing":   {map[string]any{"value": 5}, []byte{0x30, 0x03, 0x02, 0x01, 0x05}},
		"Present":   {map[string]any{"version": 1, "value": 5}, []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x02, 0x01, 0x01}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewEncoder(s).Encode(tt.v, nil)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}

	v, err := NewDecoder(s).Decode([]byte{0x30, 0x03, 0x02, 0x01, 0x05}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := map[string]any{"version": big.NewInt(0), "value": big.NewInt(5)}
	if diff := cmp.Diff(want, v, bigIntComparer); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefault_Named(t *testing.T) {
	s := schema.MustNew("Versioned", func(r *schema.Root) {
		r.Seq(
			r.Key("version").Explicit(0).Int(map[int64]string{0: "v1", 1: "v2"}).Default("v1"),
			r.Key("value").Int(),
		)
	})
	for _, version := range []any{"v1", 0} {
		got, err := NewEncoder(s).Encode(map[string]any{"version": version, "value": 5}, nil)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		if want := []byte{0x30, 0x03, 0x02, 0x01, 0x05}; !bytes.Equal(got, want) {
			t.Errorf("Encode(%v) = % x, want % x", version, got, want)
		}
	}
	v, err := NewDecoder(s).Decode([]byte{0x30, 0x08, 0xa0, 0x03, 0x02, 0x01, 0x01, 0x02, 0x01, 0x05}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := v.(map[string]any)["version"]; got != "v2" {
		t.Errorf("Decode() version = %v, want v2", got)
	}
}

func TestDecoder_IndefiniteLength(t *testing.T) {
	definite := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}
	indefinite := []byte{0x30, 0x80, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x00, 0x00}
	want, err := NewDecoder(point).Decode(definite, nil)
	if err != nil {
		t.Fatalf("Decode(definite) error = %v", err)
	}
	got, err := NewDecoder(point).Decode(indefinite, nil)
	if err != nil {
		t.Fatalf("Decode(indefinite) error = %v", err)
	}
	if diff := cmp.Diff(want, got, bigIntComparer); diff != "" {
		t.Errorf("Decode() mismatch (-definite +indefinite):\n%s", diff)
	}

	list := schema.MustNew("List", func(r *schema.Root) {
		r.Seq(r.Key("items").SeqOf(point), r.Key("n").Int())
	})
	nested := []byte{
		0x30, 0x80,
		0x30, 0x80, // items
		0x30, 0x80, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02, 0x00, 0x00,
		0x30, 0x06, 0x02, 0x01, 0x03, 0x02, 0x01, 0x04,
		0x00, 0x00,
		0x02, 0x01, 0x05, // n
		0x00, 0x00,
	}
	v, err := NewDecoder(list).Decode(nested, nil)
	if err != nil {
		t.Fatalf("Decode(nested) error = %v", err)
	}
	wantList := map[string]any{
		"items": []any{
			map[string]any{"x": big.NewInt(1), "y": big.NewInt(2)},
			map[string]any{"x": big.NewInt(3), "y": big.NewInt(4)},
		},
		"n": big.NewInt(5),
	}
	if diff := cmp.Diff(wantList, v, bigIntComparer); diff != "" {
		t.Errorf("Decode(nested) mismatch (-want +got):\n%s", diff)
	}

	if _, err = NewDecoder(point).Decode([]byte{0x30, 0x80, 0x02, 0x01, 0x01}, nil); !errors.Is(err, ErrOverrun) {
		t.Errorf("Decode(unterminated) error = %v, want %v", err, ErrOverrun)
	}
}

func TestDecoder_Optional(t *testing.T) {
	s := schema.MustNew("Optional", func(r *schema.Root) {
		r.Seq(
			r.Key("n").Use(integer).Optional(),
			r.Key("tagged").Implicit(0).Int().Optional(),
			r.Key("s").OctStr(),
			r.Key("rest").Any().Optional(),
		)
	})
	tests := map[string]struct {
		data []byte
		want map[string]any
	}{
		"Absent": {
			[]byte{0x30, 0x03, 0x04, 0x01, 0xaa},
			map[string]any{"s": []byte{0xaa}},
		},
		"Present": {
			[]byte{0x30, 0x09, 0x02, 0x01, 0x01, 0x80, 0x01, 0x02, 0x04, 0x01, 0xaa},
			map[string]any{"n": big.NewInt(1), "tagged": big.NewInt(2), "s": []byte{0xaa}},
		},
		"Rest": {
			[]byte{0x30, 0x05, 0x04, 0x01, 0xaa, 0x05, 0x00},
			map[string]any{"s": []byte{0xaa}, "rest": []byte{0x05, 0x00}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewDecoder(s).Decode(tt.data, nil)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got, bigIntComparer); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoder_Resolver(t *testing.T) {
	s := schema.MustNew("Typed", func(r *schema.Root) {
		r.Seq(
			r.Key("type").Int(),
			r.Key("value").Use(schema.Resolver(func(obj any) (*schema.Schema, error) {
				if obj.(map[string]any)["type"] == 1 {
					return integer, nil
				}
				if n, ok := obj.(map[string]any)["type"].(*big.Int); ok && n.Int64() == 1 {
					return integer, nil
				}
				return octets, nil
			})),
		)
	})
	roundTrip(t, s,
		map[string]any{"type": 1, "value": 7},
		[]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x07},
		map[string]any{"type": big.NewInt(1), "value": big.NewInt(7)})
	roundTrip(t, s,
		map[string]any{"type": 2, "value": []byte{0x07}},
		[]byte{0x30, 0x06, 0x02, 0x01, 0x02, 0x04, 0x01, 0x07},
		map[string]any{"type": big.NewInt(2), "value": []byte{0x07}})

	failing := schema.MustNew("Failing", func(r *schema.Root) {
		r.Seq(r.Key("v").Use(schema.Resolver(func(any) (*schema.Schema, error) {
			return nil, errors.New("unknown type")
		})))
	})
	_, err := NewDecoder(failing).Decode([]byte{0x30, 0x03, 0x02, 0x01, 0x01}, nil)
	var e *Error
	if !errors.As(err, &e) || e.Path != `["v"]` || e.Msg != "unknown type" {
		t.Errorf("Decode() error = %v, want unknown type at [\"v\"]", err)
	}
}

func TestDecoder_Partial(t *testing.T) {
	s := schema.MustNew("Partial", func(r *schema.Root) {
		r.Seq(
			r.Key("a").Int(),
			r.Key("b").PrintStr(),
			r.Key("c").Choice(schema.Alt("x", r.Bool()), schema.Alt("y", r.Null())),
			r.Key("d").Int(),
		)
	})
	data := []byte{
		0x30, 0x0d,
		0x02, 0x01, 0x01, // a
		0x13, 0x03, 'a', '*', 'b', // b
		0x04, 0x00, // c
		0x02, 0x01, 0x03, // d
	}

	_, err := NewDecoder(s).Decode(data, nil)
	var e *Error
	if !errors.As(err, &e) || e.Path != `["b"]` || !errors.Is(err, ErrString) {
		t.Fatalf("Decode() error = %v, want string error at [\"b\"]", err)
	}

	v, err := NewDecoder(s).Decode(data, &Options{Partial: true})
	want := map[string]any{"a": big.NewInt(1), "d": big.NewInt(3)}
	if diff := cmp.Diff(want, v, bigIntComparer); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Decode() error = %v, want *multierror.Error", err)
	}
	if len(merr.Errors) != 2 {
		t.Fatalf("Decode() returned %d errors, want 2: %v", len(merr.Errors), merr)
	}
	for i, want := range []struct {
		path string
		kind error
	}{{`["b"]`, ErrString}, {`["c"]`, ErrChoice}} {
		if !errors.As(merr.Errors[i], &e) || e.Path != want.path || !errors.Is(e, want.kind) {
			t.Errorf("Errors[%d] = %v, want %v at %s", i, merr.Errors[i], want.kind, want.path)
		}
	}
}

func TestDecoder_PartialUnskippable(t *testing.T) {
	s := schema.MustNew("Partial", func(r *schema.Root) {
		r.Seq(
			r.Key("a").Int(),
			r.Key("b").Int(),
			r.Key("c").Int(),
		)
	})
	// The octet string claims more bytes than are present.
	data := []byte{0x30, 0x03, 0x04, 0x05, 0x01}
	v, err := NewDecoder(s).Decode(data, &Options{Partial: true})
	if diff := cmp.Diff(map[string]any{}, v); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("Decode() error = %v, want *multierror.Error", err)
	}
	if len(merr.Errors) != 1 {
		t.Fatalf("Decode() returned %d errors, want 1: %v", len(merr.Errors), merr)
	}
	var e *Error
	if !errors.As(merr.Errors[0], &e) || e.Path != `["a"]` || !errors.Is(e, ErrTagMismatch) {
		t.Errorf("Errors[0] = %v, want %v at [\"a\"]", merr.Errors[0], ErrTagMismatch)
	}
}

func TestDecoder_Track(t *testing.T) {
	type event struct {
		Path       string
		Start, End int
		Phase      Phase
	}
	var got []event
	opts := &Options{Track: func(path string, start, end int, phase Phase) {
		got = append(got, event{path, start, end, phase})
	}}
	_, err := NewDecoder(point).Decode([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}, opts)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []event{
		{"", 0, 8, PhaseTagged},
		{"", 2, 8, PhaseContent},
		{`["x"]`, 2, 5, PhaseTagged},
		{`["x"]`, 4, 5, PhaseContent},
		{`["y"]`, 5, 8, PhaseTagged},
		{`["y"]`, 7, 8, PhaseContent},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Track mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_MaxDepth(t *testing.T) {
	s := schema.MustNew("Nested", func(r *schema.Root) {
		r.Seq(r.Key("inner").Seq(r.Key("x").Int()))
	})
	data := []byte{0x30, 0x05, 0x30, 0x03, 0x02, 0x01, 0x01}
	if _, err := NewDecoder(s).Decode(data, nil); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	_, err := NewDecoder(s).Decode(data, &Options{MaxDepth: 2})
	var e *Error
	if !errors.As(err, &e) || !errors.Is(err, ErrDepth) || e.Path != `["inner"]["x"]` {
		t.Errorf("Decode() error = %v, want %v at [\"inner\"][\"x\"]", err, ErrDepth)
	}

	deep := bytes.Repeat([]byte{0x30, 0x80}, 10)
	if _, err = NewDecoder(point).Decode(deep, &Options{MaxDepth: 4}); !errors.Is(err, ErrDepth) {
		t.Errorf("Decode(deep) error = %v, want %v", err, ErrDepth)
	}
}

func TestDecoder_TagMismatch(t *testing.T) {
	_, err := NewDecoder(point).Decode([]byte{0x31, 0x00}, nil)
	if !errors.Is(err, ErrTagMismatch) {
		t.Errorf("Decode() error = %v, want %v", err, ErrTagMismatch)
	}
	if got, want := err.Error(), "failed to match tag [UNIVERSAL 16], found [UNIVERSAL 17] at: (shallow)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestEncoder_Errors(t *testing.T) {
	tests := map[string]struct {
		schema  *schema.Schema
		v       any
		path    string
		wantErr error
	}{
		"NotObject":   {point, []int{1}, "", ErrStructure},
		"MissingKey":  {point, map[string]any{"x": 1}, `["y"]`, ErrStructure},
		"WrongType":   {point, map[string]any{"x": "one", "y": 2}, `["x"]`, ErrStructure},
		"SecondArc":   {schema.MustNew("OID", func(r *schema.Root) { r.Seq(r.Key("id").ObjID()) }), map[string]any{"id": asn1.ObjectIdentifier{1, 40}}, `["id"]`, ErrStructure},
		"ListElement": {schema.MustNew("Ints", func(r *schema.Root) { r.SeqOf(integer) }), []any{1, "two"}, "[1]", ErrStructure},
		"NotList":     {schema.MustNew("Ints", func(r *schema.Root) { r.SeqOf(integer) }), 1, "", ErrStructure},
		"PrintStr":    {schema.MustNew("Str", func(r *schema.Root) { r.Seq(r.Key("s").PrintStr()) }), map[string]any{"s": "a&b"}, `["s"]`, ErrString},
		"NoKey":       {schema.MustNew("NoKey", func(r *schema.Root) { r.Seq(r.Int()) }), map[string]any{}, "", ErrStructure},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewEncoder(tt.schema).Encode(tt.v, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode() error = %v, wantErr %v", err, tt.wantErr)
			}
			var e *Error
			if !errors.As(err, &e) || e.Path != tt.path {
				t.Errorf("Encode() error = %v, want path %q", err, tt.path)
			}
		})
	}
}

func TestEncoder_Partial(t *testing.T) {
	got, err := NewEncoder(point).Encode(map[string]any{"x": "one", "y": 2}, &Options{Partial: true})
	if want := []byte{0x30, 0x03, 0x02, 0x01, 0x02}; !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) != 1 {
		t.Fatalf("Encode() error = %v, want one error", err)
	}
}
