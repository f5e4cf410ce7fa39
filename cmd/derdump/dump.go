// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"codello.dev/asn1schema/der"
	"codello.dev/asn1schema/entity"
	"codello.dev/asn1schema/pem"
	"codello.dev/asn1schema/pkix"
)

// config holds the command line settings.
type config struct {
	schema  string
	format  string
	pem     bool
	partial bool
	offsets bool
	verbose bool
}

// dumper decodes inputs against a single entity.
type dumper struct {
	cfg    config
	entity *entity.Entity
	logger *slog.Logger
}

func newDumper(cfg config, logger *slog.Logger) (*dumper, error) {
	switch cfg.format {
	case "yaml", "json":
	default:
		return nil, fmt.Errorf("unknown format %q", cfg.format)
	}
	e, ok := pkix.Entities()[cfg.schema]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", cfg.schema)
	}
	return &dumper{cfg: cfg, entity: e, logger: logger}, nil
}

// offset is a tracked byte range of a field.
type offset struct {
	Path  string `yaml:"path" json:"path"`
	Phase string `yaml:"phase" json:"phase"`
	Start int    `yaml:"start" json:"start"`
	End   int    `yaml:"end" json:"end"`
}

// document is the output for one input.
type document struct {
	Input   string   `yaml:"input" json:"input"`
	Value   any      `yaml:"value" json:"value"`
	Offsets []offset `yaml:"offsets,omitempty" json:"offsets,omitempty"`
	Errors  []string `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// dump decodes data and returns its document. In partial mode decoding errors
// are part of the document.
func (d *dumper) dump(name string, data []byte) (*document, error) {
	enc := entity.DER
	if label, ok := pem.Label(data); ok || d.cfg.pem {
		enc = entity.PEM
		d.logger.Debug("detected PEM input", "input", name, "label", label)
	}
	doc := &document{Input: name}
	opts := &entity.Options{}
	opts.Partial = d.cfg.partial
	if d.cfg.offsets {
		var mu sync.Mutex
		opts.Track = func(path string, start, end int, phase der.Phase) {
			mu.Lock()
			defer mu.Unlock()
			doc.Offsets = append(doc.Offsets, offset{path, phase.String(), start, end})
		}
	}

	v, err := d.entity.Decode(data, enc, opts)
	d.logger.Debug("decoded input", "input", name, "schema", d.entity.Name(), "bytes", len(data))
	if err != nil {
		var merr *multierror.Error
		if !d.cfg.partial || !errors.As(err, &merr) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		for _, e := range merr.Errors {
			d.logger.Warn("decoding error", "input", name, "error", e)
			doc.Errors = append(doc.Errors, e.Error())
		}
	}
	doc.Value = plain(v)
	return doc, nil
}

// write prints docs in the given format. YAML documents are separated by
// document markers, JSON documents by newlines.
func write(w io.Writer, format string, docs []any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return err
			}
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return err
		}
	}
	return enc.Close()
}
