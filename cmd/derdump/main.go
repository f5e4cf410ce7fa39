// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// derdump decodes DER or PEM encoded values against one of the X.509 schemas
// and prints the result as YAML or JSON.
//
// Inputs are read from the files named on the command line or from standard
// input. PEM input is detected automatically. Several files are decoded
// concurrently; their documents are printed in command line order.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"codello.dev/asn1schema/pkix"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	flagSet := pflag.NewFlagSet("derdump", pflag.ContinueOnError)
	flagSet.StringVarP(&cfg.schema, "schema", "s", "Certificate", "name of the schema to decode against")
	flagSet.StringVarP(&cfg.format, "format", "f", "yaml", "output format (yaml or json)")
	flagSet.BoolVar(&cfg.pem, "pem", false, "expect PEM input even if it is not detected")
	flagSet.BoolVar(&cfg.partial, "partial", false, "continue after errors and print what could be decoded")
	flagSet.BoolVar(&cfg.offsets, "offsets", false, "include the byte offsets of all fields")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug messages")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	d, err := newDumper(cfg, logger)
	if err != nil {
		return err
	}
	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	docs := make([]any, len(inputs))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for i, name := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(name)
			if err != nil {
				return err
			}
			docs[i], err = d.dump(name, data)
			return err
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	return write(os.Stdout, cfg.format, docs)
}

// readInput reads the named file. The name "-" denotes standard input.
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func printHelp(flagSet *pflag.FlagSet) {
	names := make([]string, 0)
	for name := range pkix.Entities() {
		names = append(names, name)
	}
	slices.Sort(names)
	fmt.Fprintf(os.Stderr, `derdump decodes DER or PEM input against an X.509 schema.

Usage:
  derdump [flags] [file...]

Examples:
  # Decode a PEM certificate
  derdump cert.pem

  # Decode a raw extension value as JSON
  derdump --schema BasicConstraints --format json ext.der

Schemas:
  %v

Flags:
`, names)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
