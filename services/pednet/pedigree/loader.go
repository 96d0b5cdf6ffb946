// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pedigree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Loader errors.
var (
	// ErrBadRecord is returned when a line cannot be parsed as a record.
	ErrBadRecord = errors.New("malformed pedigree record")

	// ErrEmptyPedigree is returned when a source contains no records.
	ErrEmptyPedigree = errors.New("pedigree contains no records")
)

// LoadOptions configures pedigree file parsing.
type LoadOptions struct {
	// Missing is the missing-parent sentinel expected in the file.
	// Default: MissingParent (0).
	Missing int

	// Comma is the field delimiter. Zero means "any run of whitespace".
	Comma rune
}

// LoadOption is a functional option for configuring loading.
type LoadOption func(*LoadOptions)

// WithMissing sets the missing-parent sentinel.
func WithMissing(v int) LoadOption {
	return func(o *LoadOptions) {
		o.Missing = v
	}
}

// WithComma sets an explicit field delimiter (e.g. ',').
func WithComma(c rune) LoadOption {
	return func(o *LoadOptions) {
		o.Comma = c
	}
}

// Load parses a pedigree from r.
//
// Description:
//
//	Accepts one record per line with 3 or 4 fields:
//
//	    animal sire dam [original]
//
//	animal/sire/dam are integers in the pedigree's dense id-space; original,
//	when present, is the external identifier (defaults to the animal field).
//	Blank lines and lines starting with '#' or '%' are skipped. Field order
//	and the missing-parent sentinel follow the conventions of renumbered
//	pedigree exports.
//
// Outputs:
//
//	*RecordSet - Parsed records in file order.
//	error - ErrBadRecord (wrapped, with line number) or ErrEmptyPedigree.
func Load(r io.Reader, name string, opts ...LoadOption) (*RecordSet, error) {
	options := LoadOptions{Missing: MissingParent}
	for _, opt := range opts {
		opt(&options)
	}

	rs := &RecordSet{
		Name:    name,
		Records: make([]Record, 0),
		Missing: options.Missing,
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}

		fields := splitFields(line, options.Comma)
		if len(fields) < 3 || len(fields) > 4 {
			return nil, fmt.Errorf("%w: line %d: want 3 or 4 fields, got %d",
				ErrBadRecord, lineNo, len(fields))
		}

		animal, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: animal id %q", ErrBadRecord, lineNo, fields[0])
		}
		sire, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: sire id %q", ErrBadRecord, lineNo, fields[1])
		}
		dam, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: dam id %q", ErrBadRecord, lineNo, fields[2])
		}

		original := fields[0]
		if len(fields) == 4 {
			original = fields[3]
		}

		rs.Records = append(rs.Records, Record{
			AnimalID:   animal,
			OriginalID: original,
			SireID:     sire,
			DamID:      dam,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pedigree: %w", err)
	}

	if len(rs.Records) == 0 {
		return nil, ErrEmptyPedigree
	}
	return rs, nil
}

// LoadFile parses a pedigree file. The record set name is the file stem.
func LoadFile(path string, opts ...LoadOption) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pedigree: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(f, name, opts...)
}

// splitFields splits a record line on the configured delimiter, or on
// whitespace runs when no delimiter is set.
func splitFields(line string, comma rune) []string {
	if comma == 0 {
		return strings.Fields(line)
	}
	parts := strings.Split(line, string(comma))
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.TrimSpace(p))
	}
	return fields
}
