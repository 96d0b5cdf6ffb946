// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the pedigree graph model and its analysis suite.
//
// The graph package converts a validated pedigree record sequence into a
// directed acyclic graph (nodes are animals, edges run parent → offspring,
// tagged sire or dam) and computes structural and relational metrics over
// it: ancestor/descendant/family queries, progeny influence, degree
// distributions, density, dyad census, geodesic distance, and centrality.
//
// # Ownership Model
//
// The builder reads pedigree records but never retains or mutates them.
// A built graph owns its nodes and edges outright.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed for:
//   - Single-writer access during build phase (AddNode, AddEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), all queries and metrics can run from multiple goroutines
// concurrently; none of them mutate the graph.
//
// # Lifecycle
//
// A typical graph lifecycle:
//  1. Build with Builder.Build(ctx, records)
//  2. Query with Ancestors(), NodeDegrees(), ClosenessCentrality(), etc.
//  3. Discard when the analysis session ends (no persistence)
//
// # Error Taxonomy
//
// Failures are explicit, typed, and never collapsed into sentinel values:
//
//   - construction failures (ErrUnresolvedParent, ErrDuplicateNode, ...)
//     abort the build with no usable graph
//   - ErrMalformedGraph: a traversal that assumes acyclic data found a
//     cycle; the query fails instead of hanging
//   - ErrUndefinedMetric: a metric's mathematical precondition does not
//     hold (density of a 1-node graph, mean of an empty map, ...)
//   - ErrNodeNotFound: a query referenced an unknown node; the one
//     documented exception is CountOffspring, which degrades to zero
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	// Once Freeze() is called, the graph becomes read-only and no further
	// nodes or edges can be added.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when a query or edge references a node
	// absent from the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node with an ID that
	// already exists in the graph.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidNode is returned when a node ID is empty or otherwise
	// fails validation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrSelfLoop is returned when an edge would make an animal its own
	// parent. Pedigree graphs never contain self-loops.
	ErrSelfLoop = errors.New("self-loop rejected")

	// ErrUnresolvedParent is returned when a record references a parent
	// that has not yet been added, i.e. the pedigree is not topologically
	// ordered or the reference is dangling. The build aborts entirely.
	ErrUnresolvedParent = errors.New("unresolved parent reference")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrBuildCancelled is returned when a build operation is cancelled
	// via context.
	ErrBuildCancelled = errors.New("build cancelled")

	// ErrMalformedGraph is returned when a traversal intended for acyclic
	// pedigree data detects a cycle. The query fails rather than looping.
	ErrMalformedGraph = errors.New("malformed graph: cycle detected")

	// ErrUndefinedMetric is returned when a metric's mathematical
	// precondition fails, e.g. density on a graph with fewer than two
	// nodes or a mean over an empty value set.
	ErrUndefinedMetric = errors.New("metric undefined for this graph")
)
