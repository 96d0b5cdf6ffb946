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
	"errors"
	"testing"
)

// cyclicGraph builds an unfrozen graph with the cycle A -> B -> C -> A.
// Build() can never produce one; queries still must refuse to loop on it.
func cyclicGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph("cyclic")
	for _, id := range []string{"A", "B", "C"} {
		if _, err := g.AddNode(id, "", ""); err != nil {
			t.Fatalf("AddNode(%s) error = %v", id, err)
		}
	}
	for _, e := range [][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}} {
		if err := g.AddEdge(e[0], e[1], RoleSire); err != nil {
			t.Fatalf("AddEdge(%s -> %s) error = %v", e[0], e[1], err)
		}
	}
	return g
}

// chainPedigree is a single line of descent: 1 -> 2 -> 3 -> 4.
func chainPedigree() *Graph {
	g := NewGraph("chain")
	g.AddNode("1", "", "")
	g.AddNode("2", "1", "")
	g.AddEdge("1", "2", RoleSire)
	g.AddNode("3", "2", "")
	g.AddEdge("2", "3", RoleSire)
	g.AddNode("4", "3", "")
	g.AddEdge("3", "4", RoleSire)
	g.Freeze()
	return g
}

func TestAncestors(t *testing.T) {
	ctx := context.Background()
	g := mustBuild(t, familyPedigree())

	t.Run("founder has no ancestors", func(t *testing.T) {
		anc, err := g.Ancestors(ctx, "1")
		if err != nil {
			t.Fatalf("Ancestors() error = %v", err)
		}
		if len(anc) != 0 {
			t.Errorf("founder ancestors = %v, want empty", anc)
		}
	})

	t.Run("collects transitive ancestors", func(t *testing.T) {
		anc, err := g.Ancestors(ctx, "5")
		if err != nil {
			t.Fatalf("Ancestors() error = %v", err)
		}
		want := []string{"1", "2", "3"}
		if len(anc) != len(want) {
			t.Fatalf("ancestors = %v, want %v", anc, want)
		}
		for _, id := range want {
			if !anc[id] {
				t.Errorf("ancestor %s missing from %v", id, anc)
			}
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		if _, err := g.Ancestors(ctx, "404"); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("Ancestors(404) error = %v, want ErrNodeNotFound", err)
		}
	})

	t.Run("cycle fails instead of hanging", func(t *testing.T) {
		cg := cyclicGraph(t)
		if _, err := cg.Ancestors(ctx, "A"); !errors.Is(err, ErrMalformedGraph) {
			t.Errorf("Ancestors on cycle error = %v, want ErrMalformedGraph", err)
		}
	})
}

func TestDescendants(t *testing.T) {
	ctx := context.Background()
	g := mustBuild(t, familyPedigree())

	t.Run("terminal node has no descendants", func(t *testing.T) {
		desc, err := g.Descendants(ctx, "5")
		if err != nil {
			t.Fatalf("Descendants() error = %v", err)
		}
		if len(desc) != 0 {
			t.Errorf("terminal descendants = %v, want empty", desc)
		}
	})

	t.Run("symmetric with ancestors", func(t *testing.T) {
		for _, id := range g.NodeIDs() {
			anc, err := g.Ancestors(ctx, id)
			if err != nil {
				t.Fatalf("Ancestors(%s) error = %v", id, err)
			}
			for a := range anc {
				desc, err := g.Descendants(ctx, a)
				if err != nil {
					t.Fatalf("Descendants(%s) error = %v", a, err)
				}
				if !desc[id] {
					t.Errorf("%s is ancestor of %s but %s not in its descendants", a, id, id)
				}
			}
		}
	})

	t.Run("cycle fails instead of hanging", func(t *testing.T) {
		cg := cyclicGraph(t)
		if _, err := cg.Descendants(ctx, "B"); !errors.Is(err, ErrMalformedGraph) {
			t.Errorf("Descendants on cycle error = %v, want ErrMalformedGraph", err)
		}
	})
}

func TestAncestorsWithin(t *testing.T) {
	ctx := context.Background()
	g := chainPedigree()

	t.Run("zero generations yields empty map", func(t *testing.T) {
		anc, err := g.AncestorsWithin(ctx, "4", 0)
		if err != nil {
			t.Fatalf("AncestorsWithin() error = %v", err)
		}
		if len(anc) != 0 {
			t.Errorf("0-generation ancestors = %v, want empty", anc)
		}
	})

	t.Run("bounded chain records remaining generations", func(t *testing.T) {
		anc, err := g.AncestorsWithin(ctx, "4", 2)
		if err != nil {
			t.Fatalf("AncestorsWithin() error = %v", err)
		}
		want := map[string]int{"3": 2, "2": 1}
		if len(anc) != len(want) {
			t.Fatalf("ancestors = %v, want %v", anc, want)
		}
		for id, gens := range want {
			if anc[id] != gens {
				t.Errorf("ancestor %s = %d generations, want %d", id, anc[id], gens)
			}
		}
	})

	t.Run("large budget reaches every ancestor", func(t *testing.T) {
		anc, err := g.AncestorsWithin(ctx, "4", 10)
		if err != nil {
			t.Fatalf("AncestorsWithin() error = %v", err)
		}
		want := map[string]int{"3": 10, "2": 9, "1": 8}
		for id, gens := range want {
			if anc[id] != gens {
				t.Errorf("ancestor %s = %d generations, want %d", id, anc[id], gens)
			}
		}
	})

	t.Run("first discovery wins on converging paths", func(t *testing.T) {
		fam := mustBuild(t, familyPedigree())
		// Node 5's parents are 3 and 2; 2 is also 3's dam. Depth-first
		// order discovers 2 through 3 (budget 2) before the direct edge
		// is considered, and the later rediscovery must not update it.
		anc, err := fam.AncestorsWithin(ctx, "5", 3)
		if err != nil {
			t.Fatalf("AncestorsWithin() error = %v", err)
		}
		if anc["2"] != 2 {
			t.Errorf("ancestor 2 = %d generations, want 2 (first discovery via node 3)", anc["2"])
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		if _, err := g.AncestorsWithin(ctx, "404", 3); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("AncestorsWithin(404) error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestImmediateFamily(t *testing.T) {
	ctx := context.Background()
	g := mustBuild(t, familyPedigree())

	fam, err := g.ImmediateFamily(ctx, "3")
	if err != nil {
		t.Fatalf("ImmediateFamily() error = %v", err)
	}
	want := []string{"1", "2", "5"}
	if len(fam) != len(want) {
		t.Fatalf("family = %v, want %v", fam, want)
	}
	for _, id := range want {
		if !fam[id] {
			t.Errorf("family member %s missing from %v", id, fam)
		}
	}
	if fam["3"] {
		t.Error("node must not be in its own immediate family")
	}
}

func TestFounderDescendants(t *testing.T) {
	ctx := context.Background()
	g := mustBuild(t, familyPedigree())

	fd, err := g.FounderDescendants(ctx)
	if err != nil {
		t.Fatalf("FounderDescendants() error = %v", err)
	}

	// Founders by the in-degree < 2 convention: 1 and 2.
	if len(fd) != 2 {
		t.Fatalf("founder count = %d (%v), want 2", len(fd), fd)
	}
	for _, id := range []string{"3", "4", "5"} {
		if !fd["1"][id] {
			t.Errorf("descendant %s missing for founder 1", id)
		}
		if !fd["2"][id] {
			t.Errorf("descendant %s missing for founder 2", id)
		}
	}
}
