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
	"reflect"
	"testing"
)

// influencePedigree: founder 1 has offspring 2, 3, 4. Offspring 2 and 4
// have two children each, offspring 3 has none. Ties between 2 and 4 are
// what the resolve policies disambiguate.
func influencePedigree(t *testing.T) *Graph {
	t.Helper()
	return mustBuild(t, recordSet(
		rec(1, 0, 0, "F"),
		rec(2, 1, 0, "A"),
		rec(3, 1, 0, "C"),
		rec(4, 1, 0, "B"),
		rec(5, 2, 0, "A1"),
		rec(6, 2, 0, "A2"),
		rec(7, 4, 0, "B1"),
		rec(8, 4, 0, "B2"),
	))
}

func TestCountOffspring(t *testing.T) {
	g := influencePedigree(t)

	cases := []struct {
		id   string
		want int
	}{
		{"1", 3},
		{"2", 2},
		{"3", 0},
		{"5", 0},
		{"404", 0}, // unknown ids degrade to zero
	}
	for _, tc := range cases {
		if got := g.CountOffspring(tc.id); got != tc.want {
			t.Errorf("CountOffspring(%s) = %d, want %d", tc.id, got, tc.want)
		}
	}
}

func TestOffspringInfluence(t *testing.T) {
	ctx := context.Background()
	g := influencePedigree(t)

	t.Run("scores grand-offspring per child", func(t *testing.T) {
		influence, err := g.OffspringInfluence(ctx, "1")
		if err != nil {
			t.Fatalf("OffspringInfluence() error = %v", err)
		}
		want := map[string]int{"2": 2, "3": 0, "4": 2}
		if !reflect.DeepEqual(influence, want) {
			t.Errorf("influence = %v, want %v", influence, want)
		}
	})

	t.Run("childless node yields empty map", func(t *testing.T) {
		influence, err := g.OffspringInfluence(ctx, "5")
		if err != nil {
			t.Fatalf("OffspringInfluence() error = %v", err)
		}
		if len(influence) != 0 {
			t.Errorf("influence = %v, want empty", influence)
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		if _, err := g.OffspringInfluence(ctx, "404"); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("OffspringInfluence(404) error = %v, want ErrNodeNotFound", err)
		}
	})

	t.Run("selfed child counts each grandchild once", func(t *testing.T) {
		// Animal 1 fills both parent slots of 2, so 2 carries two
		// incoming edges but exactly one offspring (3).
		selfed := mustBuild(t, recordSet(
			rec(1, 0, 0, "F"),
			rec(2, 1, 1, "S"),
			rec(3, 2, 0, "K"),
		))

		influence, err := selfed.OffspringInfluence(ctx, "1")
		if err != nil {
			t.Fatalf("OffspringInfluence() error = %v", err)
		}
		if want := map[string]int{"2": 1}; !reflect.DeepEqual(influence, want) {
			t.Errorf("influence = %v, want %v", influence, want)
		}
		if got := selfed.CountOffspring("2"); got != influence["2"] {
			t.Errorf("CountOffspring(2) = %d, influence[2] = %d, want agreement", got, influence["2"])
		}
	})
}

func TestMostInfluentialOffspring(t *testing.T) {
	ctx := context.Background()
	g := influencePedigree(t)

	t.Run("first keeps earliest maximal child", func(t *testing.T) {
		ids, score, err := g.MostInfluentialOffspring(ctx, "1", ResolveFirst)
		if err != nil {
			t.Fatalf("MostInfluentialOffspring() error = %v", err)
		}
		if !reflect.DeepEqual(ids, []string{"2"}) || score != 2 {
			t.Errorf("first = (%v, %d), want ([2], 2)", ids, score)
		}
	})

	t.Run("last keeps latest maximal child", func(t *testing.T) {
		ids, score, err := g.MostInfluentialOffspring(ctx, "1", ResolveLast)
		if err != nil {
			t.Fatalf("MostInfluentialOffspring() error = %v", err)
		}
		if !reflect.DeepEqual(ids, []string{"4"}) || score != 2 {
			t.Errorf("last = (%v, %d), want ([4], 2)", ids, score)
		}
	})

	t.Run("all keeps every maximal child", func(t *testing.T) {
		ids, score, err := g.MostInfluentialOffspring(ctx, "1", ResolveAll)
		if err != nil {
			t.Fatalf("MostInfluentialOffspring() error = %v", err)
		}
		if !reflect.DeepEqual(ids, []string{"2", "4"}) || score != 2 {
			t.Errorf("all = (%v, %d), want ([2 4], 2)", ids, score)
		}
	})

	t.Run("no offspring is undefined", func(t *testing.T) {
		_, _, err := g.MostInfluentialOffspring(ctx, "3", ResolveAll)
		if !errors.Is(err, ErrUndefinedMetric) {
			t.Errorf("childless error = %v, want ErrUndefinedMetric", err)
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		_, _, err := g.MostInfluentialOffspring(ctx, "404", ResolveFirst)
		if !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("unknown node error = %v, want ErrNodeNotFound", err)
		}
	})
}

func TestParseTieResolve(t *testing.T) {
	for name, want := range map[string]TieResolve{
		"first": ResolveFirst,
		"last":  ResolveLast,
		"all":   ResolveAll,
	} {
		got, err := ParseTieResolve(name)
		if err != nil || got != want {
			t.Errorf("ParseTieResolve(%q) = (%v, %v), want (%v, nil)", name, got, err, want)
		}
	}
	if _, err := ParseTieResolve("middle"); err == nil {
		t.Error("ParseTieResolve(middle) should fail")
	}
}
