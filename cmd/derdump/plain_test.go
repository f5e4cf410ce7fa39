// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"codello.dev/asn1schema"
	"codello.dev/asn1schema/der"
	"codello.dev/asn1schema/pem"
)

func TestPlain(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	tests := map[string]struct {
		v    any
		want any
	}{
		"Int":       {big.NewInt(-5), int64(-5)},
		"BigInt":    {huge, "123456789012345678901234567890"},
		"OID":       {asn1.ObjectIdentifier{1, 2, 840}, "1.2.840"},
		"RelOID":    {asn1.RelativeOID{8, 571}, "8.571"},
		"Bytes":     {[]byte{0xca, 0xfe}, "cafe"},
		"BitString": {asn1.BitString{Bytes: []byte{0xa0}, BitLength: 3}, "101"},
		"Aligned":   {asn1.BitString{Bytes: []byte{0xa0}, BitLength: 8}, "a0"},
		"Time":      {time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "2025-01-02T03:04:05Z"},
		"Choice":    {der.Choice{Type: "dNSName", Value: "example.com"}, map[string]any{"dNSName": "example.com"}},
		"Nested": {
			map[string]any{"a": []any{big.NewInt(1), nil, true}},
			map[string]any{"a": []any{int64(1), nil, true}},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, plain(tt.v)); diff != "" {
				t.Errorf("plain() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// basicConstraints is a BasicConstraints value with cA set and a path length
// of 3.
var basicConstraints = []byte{0x30, 0x06, 0x01, 0x01, 0xff, 0x02, 0x01, 0x03}

func newTestDumper(t *testing.T, cfg config) *dumper {
	t.Helper()
	if cfg.schema == "" {
		cfg.schema = "BasicConstraints"
	}
	if cfg.format == "" {
		cfg.format = "yaml"
	}
	d, err := newDumper(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newDumper() error = %v", err)
	}
	return d
}

func TestDumper(t *testing.T) {
	tests := map[string]struct {
		cfg     config
		data    []byte
		want    *document
		wantErr bool
	}{
		"DER": {
			data: basicConstraints,
			want: &document{Input: "in", Value: map[string]any{"cA": true, "pathLenConstraint": int64(3)}},
		},
		"PEM": {
			data: pem.Encode("BASIC CONSTRAINTS", basicConstraints),
			want: &document{Input: "in", Value: map[string]any{"cA": true, "pathLenConstraint": int64(3)}},
		},
		"Offsets": {
			cfg:  config{offsets: true},
			data: []byte{0x30, 0x03, 0x01, 0x01, 0xff},
			want: &document{
				Input: "in",
				Value: map[string]any{"cA": true},
				Offsets: []offset{
					{"", "tagged", 0, 5},
					{"", "content", 2, 5},
					{`["cA"]`, "tagged", 2, 5},
					{`["cA"]`, "content", 4, 5},
				},
			},
		},
		"Error": {
			data:    []byte{0x30, 0x03, 0x01, 0x01},
			wantErr: true,
		},
		"Partial": {
			cfg:  config{partial: true},
			data: []byte{0x30, 0x05, 0x01, 0x01, 0xff, 0x02, 0x00},
			want: &document{
				Input:  "in",
				Value:  map[string]any{"cA": true},
				Errors: []string{`malformed length: empty integer at: ["pathLenConstraint"]`},
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := newTestDumper(t, tt.cfg).dump("in", tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("dump() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("dump() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewDumper_Invalid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := newDumper(config{schema: "Nope", format: "yaml"}, logger); err == nil {
		t.Error("newDumper() with unknown schema: error = nil")
	}
	if _, err := newDumper(config{schema: "Certificate", format: "xml"}, logger); err == nil {
		t.Error("newDumper() with unknown format: error = nil")
	}
}

func TestWrite(t *testing.T) {
	docs := []any{
		&document{Input: "a", Value: map[string]any{"cA": true}},
		&document{Input: "b", Value: "x"},
	}
	tests := map[string]struct {
		format string
		want   string
	}{
		"YAML": {"yaml", "input: a\nvalue:\n  cA: true\n---\ninput: b\nvalue: x\n"},
		"JSON": {"json", "{\n  \"input\": \"a\",\n  \"value\": {\n    \"cA\": true\n  }\n}\n{\n  \"input\": \"b\",\n  \"value\": \"x\"\n}\n"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := write(&buf, tt.format, docs); err != nil {
				t.Fatalf("write() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("write() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
