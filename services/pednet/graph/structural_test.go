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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeDegrees(t *testing.T) {
	g := mustBuild(t, familyPedigree())
	degrees := g.NodeDegrees()

	assert.Equal(t, map[string]int{"1": 0, "2": 0, "3": 2, "4": 2, "5": 2}, degrees.In)
	assert.Equal(t, map[string]int{"1": 2, "2": 3, "3": 1, "4": 0, "5": 0}, degrees.Out)

	// Total degree is always the sum of in and out.
	for id, all := range degrees.All {
		assert.Equal(t, degrees.In[id]+degrees.Out[id], all, "node %s", id)
	}
}

func TestHistograms(t *testing.T) {
	g := mustBuild(t, familyPedigree())

	hists, err := g.NodeDegrees().Histograms()
	require.NoError(t, err)

	assert.Equal(t, []int{2, 0, 3}, hists.In)
	assert.Equal(t, []int{2, 1, 1, 1}, hists.Out)
	assert.Equal(t, []int{0, 0, 3, 2}, hists.All)

	// Conservation: every histogram buckets all nodes exactly once.
	for _, hist := range [][]int{hists.In, hists.Out, hists.All} {
		total := 0
		for _, count := range hist {
			total += count
		}
		assert.Equal(t, g.NodeCount(), total)
	}
}

func TestHistogramEmpty(t *testing.T) {
	_, err := Histogram(map[string]int{})
	assert.ErrorIs(t, err, ErrUndefinedMetric)
}

func TestDensity(t *testing.T) {
	t.Run("directed density over ordered pairs", func(t *testing.T) {
		g := mustBuild(t, familyPedigree())
		density, err := g.Density()
		require.NoError(t, err)
		assert.InDelta(t, 0.3, density, 1e-12) // 6 edges / 20 ordered pairs
		assert.GreaterOrEqual(t, density, 0.0)
		assert.LessOrEqual(t, density, 1.0)
	})

	t.Run("undefined below two nodes", func(t *testing.T) {
		g := NewGraph("single")
		_, err := g.AddNode("1", "", "")
		require.NoError(t, err)
		g.Freeze()

		_, err = g.Density()
		assert.ErrorIs(t, err, ErrUndefinedMetric)
	})
}

func TestMeanGeodesic(t *testing.T) {
	ctx := context.Background()

	t.Run("averages connected ordered pairs only", func(t *testing.T) {
		g := mustBuild(t, familyPedigree())
		mean, err := g.MeanGeodesic(ctx)
		require.NoError(t, err)
		// 7 connected pairs, total distance 8.
		assert.InDelta(t, 8.0/7.0, mean, 1e-12)
	})

	t.Run("undefined with no connected pairs", func(t *testing.T) {
		g := NewGraph("isolated")
		_, err := g.AddNode("1", "", "")
		require.NoError(t, err)
		_, err = g.AddNode("2", "", "")
		require.NoError(t, err)
		g.Freeze()

		_, err = g.MeanGeodesic(ctx)
		assert.ErrorIs(t, err, ErrUndefinedMetric)
	})
}

func TestMeanGeodesicParallel(t *testing.T) {
	ctx := context.Background()

	t.Run("small graph falls back to sequential", func(t *testing.T) {
		g := mustBuild(t, familyPedigree())
		sequential, err := g.MeanGeodesic(ctx)
		require.NoError(t, err)
		parallel, err := g.MeanGeodesicParallel(ctx)
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel)
	})

	t.Run("agrees with sequential above threshold", func(t *testing.T) {
		// A long chain comfortably above the parallel threshold.
		g := NewGraph("long-chain")
		_, err := g.AddNode(nodeName(0), "", "")
		require.NoError(t, err)
		for i := 1; i < parallelThreshold*2; i++ {
			prev := nodeName(i - 1)
			cur := nodeName(i)
			_, err := g.AddNode(cur, prev, "")
			require.NoError(t, err)
			require.NoError(t, g.AddEdge(prev, cur, RoleSire))
		}
		g.Freeze()

		sequential, err := g.MeanGeodesic(ctx)
		require.NoError(t, err)
		parallel, err := g.MeanGeodesicParallel(ctx)
		require.NoError(t, err)
		assert.InDelta(t, sequential, parallel, 1e-9)
	})
}

func nodeName(i int) string {
	return fmt.Sprintf("n%02d", i)
}

func TestDyadCensus(t *testing.T) {
	ctx := context.Background()

	t.Run("classifies all unordered pairs", func(t *testing.T) {
		g := mustBuild(t, familyPedigree())
		census, err := g.DyadCensus(ctx)
		require.NoError(t, err)

		assert.Equal(t, 6, census.Asymmetric)
		assert.Equal(t, 0, census.Mutual)
		assert.Equal(t, 4, census.Null)

		// Conservation: counts sum to n*(n-1)/2.
		n := g.NodeCount()
		assert.Equal(t, n*(n-1)/2, census.Null+census.Asymmetric+census.Mutual)
	})

	t.Run("refuses cyclic data", func(t *testing.T) {
		cg := cyclicGraph(t)
		_, err := cg.DyadCensus(ctx)
		assert.ErrorIs(t, err, ErrMalformedGraph)
	})
}
