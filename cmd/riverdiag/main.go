// Copyright 2025 The River Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command riverdiag compares two serialized registries (produced by
// river.Registry.Serialize, typically archived as JSON alongside each
// release) and reports wire-compatibility breakages between them
// (spec.md §4.7).
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/riverrpc/river"
	"github.com/riverrpc/river/schemadiff"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("riverdiag", flag.ContinueOnError)
	var quiet bool
	fs.BoolVar(&quiet, "quiet", false, "suppress per-breakage output; only set the exit code")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: riverdiag <prev-registry.json> <next-registry.json>")
		return 2
	}

	prev, err := loadRegistry(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverdiag: %v\n", err)
		return 2
	}
	next, err := loadRegistry(fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverdiag: %v\n", err)
		return 2
	}

	report := schemadiff.Compare(prev, next)
	if !quiet {
		for _, b := range report.Breakages {
			fmt.Println(b.String())
		}
	}
	if report.Breaking() {
		fmt.Fprintf(os.Stderr, "riverdiag: %d breaking change(s) found\n", len(report.Breakages))
		return 1
	}
	fmt.Fprintln(os.Stderr, "riverdiag: compatible")
	return 0
}

func loadRegistry(path string) (*river.SerializedRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var reg river.SerializedRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}
