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

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DFS node coloring for cycle detection.
const (
	colorWhite = iota // undiscovered
	colorGray         // on the current DFS path
	colorBlack        // fully explored
)

// Ancestors returns the transitive ancestor set of a node.
//
// Description:
//
//	Walks parent edges backwards from the node and collects every animal
//	reachable that way. The node itself is excluded. A founder yields an
//	empty set. Pedigree data is expected to be acyclic; if a cycle is
//	reachable the traversal fails instead of looping.
//
// Outputs:
//
//	map[string]bool - Ancestor IDs, all values true.
//	error - ErrNodeNotFound for an unknown id, ErrMalformedGraph if a
//	        reachable cycle is detected.
//
// Thread Safety: Safe on a frozen graph.
//
// Complexity: O(V + E) over the reachable subgraph.
func (g *Graph) Ancestors(ctx context.Context, id string) (map[string]bool, error) {
	return g.closure(ctx, "graph.Ancestors", id, g.Predecessors)
}

// Descendants returns the transitive descendant set of a node.
//
// The mirror of Ancestors: walks offspring edges forward. A terminal
// animal (no recorded offspring) yields an empty set.
func (g *Graph) Descendants(ctx context.Context, id string) (map[string]bool, error) {
	return g.closure(ctx, "graph.Descendants", id, g.Successors)
}

// closure computes a transitive closure via iterative depth-first search
// with gray/black coloring. A gray revisit means the current path loops.
func (g *Graph) closure(
	ctx context.Context,
	spanName string,
	id string,
	next func(string) []string,
) (map[string]bool, error) {
	initMetrics()
	_, span := tracer.Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attribute.String("node.id", id))
	start := time.Now()
	defer func() {
		queryLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0,
			metric.WithAttributes(attribute.String("op", spanName)))
	}()

	if _, ok := g.GetNode(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	type frame struct {
		id        string
		idx       int
		neighbors []string
	}

	color := map[string]int{id: colorGray}
	result := make(map[string]bool)
	stack := []frame{{id: id, neighbors: next(id)}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.idx >= len(f.neighbors) {
			color[f.id] = colorBlack
			stack = stack[:len(stack)-1]
			continue
		}

		n := f.neighbors[f.idx]
		f.idx++
		switch color[n] {
		case colorGray:
			return nil, fmt.Errorf("%w: cycle through %q", ErrMalformedGraph, n)
		case colorWhite:
			color[n] = colorGray
			result[n] = true
			stack = append(stack, frame{id: n, neighbors: next(n)})
		}
	}
	return result, nil
}

// AncestorsWithin returns ancestors within a bounded number of
// generations.
//
// Description:
//
//	Each ancestor maps to the generation budget remaining when it was
//	first discovered: direct parents carry the full budget, their parents
//	one less, and so on. An ancestor reachable along several paths keeps
//	the depth of its first discovery. generations <= 0 yields an empty
//	map. Every call starts from a fresh accumulator.
//
// Outputs:
//
//	map[string]int - Ancestor ID to remaining-generation count at first
//	                 discovery.
//	error - ErrNodeNotFound for an unknown id.
func (g *Graph) AncestorsWithin(ctx context.Context, id string, generations int) (map[string]int, error) {
	if _, ok := g.GetNode(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	acc := make(map[string]int)
	if generations <= 0 {
		return acc, nil
	}
	g.boundedAncestors(id, generations, acc)
	return acc, nil
}

// boundedAncestors records parents depth-first. The first-discovery check
// doubles as the termination guard, so even malformed data cannot recurse
// forever.
func (g *Graph) boundedAncestors(id string, gens int, acc map[string]int) {
	if gens == 0 {
		return
	}
	for _, p := range g.Predecessors(id) {
		if _, seen := acc[p]; seen {
			continue
		}
		acc[p] = gens
		g.boundedAncestors(p, gens-1, acc)
	}
}

// ImmediateFamily returns the union of a node's direct parents and direct
// offspring. The node itself is excluded.
func (g *Graph) ImmediateFamily(ctx context.Context, id string) (map[string]bool, error) {
	if _, ok := g.GetNode(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	family := make(map[string]bool)
	for _, p := range g.Predecessors(id) {
		family[p] = true
	}
	for _, s := range g.Successors(id) {
		family[s] = true
	}
	return family, nil
}

// FounderDescendants returns the descendant set of every founder.
//
// Description:
//
//	A founder is any animal with fewer than two recorded parents. For each
//	founder the full transitive descendant set is computed; founders with
//	no offspring map to an empty set.
//
// Outputs:
//
//	map[string]map[string]bool - Founder ID to its descendant set.
//	error - ErrMalformedGraph if any traversal detects a cycle.
//
// Complexity: O(F * (V + E)) for F founders.
func (g *Graph) FounderDescendants(ctx context.Context) (map[string]map[string]bool, error) {
	initMetrics()
	ctx, span := tracer.Start(ctx, "graph.FounderDescendants")
	defer span.End()

	out := make(map[string]map[string]bool)
	for _, id := range g.NodeIDs() {
		if g.InDegree(id) >= 2 {
			continue
		}
		desc, err := g.Descendants(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("founder %q: %w", id, err)
		}
		out[id] = desc
	}
	span.SetAttributes(attribute.Int("founders", len(out)))
	return out, nil
}
