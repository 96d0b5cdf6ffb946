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
)

// TieResolve selects how MostInfluentialOffspring breaks ties between
// equally influential children.
type TieResolve int

const (
	// ResolveFirst keeps the earliest child (edge-insertion order) among
	// those sharing the maximum influence.
	ResolveFirst TieResolve = iota

	// ResolveLast keeps the latest such child.
	ResolveLast

	// ResolveAll keeps every child sharing the maximum influence.
	ResolveAll
)

// String returns a human-readable tie policy name.
func (t TieResolve) String() string {
	switch t {
	case ResolveFirst:
		return "first"
	case ResolveLast:
		return "last"
	case ResolveAll:
		return "all"
	default:
		return fmt.Sprintf("TieResolve(%d)", int(t))
	}
}

// ParseTieResolve parses a tie policy name ("first", "last", "all").
func ParseTieResolve(s string) (TieResolve, error) {
	switch s {
	case "first":
		return ResolveFirst, nil
	case "last":
		return ResolveLast, nil
	case "all":
		return ResolveAll, nil
	default:
		return 0, fmt.Errorf("unknown tie policy %q (want first, last, or all)", s)
	}
}

// CountOffspring returns the number of direct offspring of a node.
//
// Computed as the neighbor count minus the parent count. An unknown id
// degrades to 0 rather than erroring; callers counting offspring across
// speculative id lists rely on that.
func (g *Graph) CountOffspring(id string) int {
	if _, ok := g.GetNode(id); !ok {
		return 0
	}
	return len(g.Neighbors(id)) - len(g.Predecessors(id))
}

// OffspringInfluence returns the grand-offspring count of each direct
// child of a node.
//
// Description:
//
//	For every child, influence is the number of the child's distinct
//	offspring, matching CountOffspring. A parent filling both slots of a
//	grandchild still counts that grandchild once, and an unrecorded
//	parent contributes nothing. Children with no offspring score 0.
//
// Outputs:
//
//	map[string]int - Child ID to influence score.
//	error - ErrNodeNotFound for an unknown id.
func (g *Graph) OffspringInfluence(ctx context.Context, id string) (map[string]int, error) {
	if _, ok := g.GetNode(id); !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	influence := make(map[string]int)
	for _, child := range g.Successors(id) {
		influence[child] = len(g.Successors(child))
	}
	return influence, nil
}

// MostInfluentialOffspring returns the child (or children) of a node with
// the most grand-offspring.
//
// Description:
//
//	Scores children with OffspringInfluence, then applies the tie policy:
//	ResolveFirst keeps the earliest maximal child in edge-insertion
//	order, ResolveLast the latest, ResolveAll every child matching the
//	maximum. Iteration order is the deterministic edge-insertion order,
//	so repeated calls agree.
//
// Outputs:
//
//	[]string - Winning child IDs. One element for first/last policies.
//	int - The maximum influence score.
//	error - ErrNodeNotFound for an unknown id, ErrUndefinedMetric when
//	        the node has no offspring.
func (g *Graph) MostInfluentialOffspring(ctx context.Context, id string, resolve TieResolve) ([]string, int, error) {
	influence, err := g.OffspringInfluence(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	children := g.Successors(id)
	if len(children) == 0 {
		return nil, 0, fmt.Errorf("%w: %q has no offspring", ErrUndefinedMetric, id)
	}

	best := -1
	var winners []string
	for _, child := range children {
		score := influence[child]
		switch resolve {
		case ResolveFirst:
			if score > best {
				best = score
				winners = []string{child}
			}
		case ResolveLast:
			if score >= best {
				best = score
				winners = []string{child}
			}
		default: // ResolveAll
			if score > best {
				best = score
			}
		}
	}

	if resolve == ResolveAll {
		for _, child := range children {
			if influence[child] == best {
				winners = append(winners, child)
			}
		}
	}
	return winners, best, nil
}
