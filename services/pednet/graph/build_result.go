// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import "fmt"

// RecordError describes the pedigree record that aborted a build.
//
// Unlike resilient builders that collect per-file errors and continue, the
// pedigree builder fails fast: a single bad record invalidates the whole
// graph, because every downstream metric assumes a complete pedigree.
type RecordError struct {
	// Index is the zero-based position of the record in the pedigree.
	Index int

	// AnimalID is the record's dense identifier.
	AnimalID int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (animal %d): %v", e.Index, e.AnimalID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e RecordError) Unwrap() error {
	return e.Err
}

// BuildStats contains statistics about a build operation.
type BuildStats struct {
	// RecordsProcessed is the number of pedigree records consumed.
	RecordsProcessed int

	// NodesCreated is the number of nodes added to the graph.
	NodesCreated int

	// EdgesCreated is the number of edges added to the graph.
	EdgesCreated int

	// SireEdges is the number of edges tagged RoleSire.
	SireEdges int

	// DamEdges is the number of edges tagged RoleDam.
	DamEdges int

	// DurationMilli is the total build time in milliseconds.
	// NOTE: For fast builds (< 1ms) this rounds to 0. Use DurationMicro
	// for precision.
	DurationMilli int64

	// DurationMicro is the total build time in microseconds.
	DurationMicro int64
}

// BuildResult contains the result of a successful graph build.
//
// A failed build returns no BuildResult at all: the error carries a
// RecordError identifying the offending record, and no partial graph is
// exposed to callers.
type BuildResult struct {
	// Graph is the constructed, frozen pedigree graph.
	Graph *Graph

	// Stats contains build statistics.
	Stats BuildStats
}
