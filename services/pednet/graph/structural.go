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
)

// DegreeReport holds per-node degree maps for one graph.
type DegreeReport struct {
	// In maps node ID to in-degree (recorded parents).
	In map[string]int

	// Out maps node ID to out-degree (recorded offspring edges).
	Out map[string]int

	// All maps node ID to total degree.
	All map[string]int
}

// HistogramReport holds dense degree histograms for one graph.
//
// Each slice is indexed by degree, spans [0, max observed degree], and
// carries explicit zero buckets for unobserved degrees.
type HistogramReport struct {
	In  []int
	Out []int
	All []int
}

// NodeDegrees returns in/out/total degree for every node.
func (g *Graph) NodeDegrees() DegreeReport {
	r := DegreeReport{
		In:  make(map[string]int, g.NodeCount()),
		Out: make(map[string]int, g.NodeCount()),
		All: make(map[string]int, g.NodeCount()),
	}
	for _, id := range g.NodeIDs() {
		r.In[id] = g.InDegree(id)
		r.Out[id] = g.OutDegree(id)
		r.All[id] = g.Degree(id)
	}
	return r
}

// Histogram bins a degree map into a dense slice indexed by degree.
//
// The result spans [0, max degree] with explicit zeros, so the sum of all
// buckets equals the number of nodes. An empty map yields
// ErrUndefinedMetric.
func Histogram(degrees map[string]int) ([]int, error) {
	if len(degrees) == 0 {
		return nil, fmt.Errorf("%w: empty degree map", ErrUndefinedMetric)
	}

	maxDegree := 0
	for _, d := range degrees {
		if d > maxDegree {
			maxDegree = d
		}
	}
	hist := make([]int, maxDegree+1)
	for _, d := range degrees {
		hist[d]++
	}
	return hist, nil
}

// Histograms bins all three degree maps of a report.
func (r DegreeReport) Histograms() (HistogramReport, error) {
	in, err := Histogram(r.In)
	if err != nil {
		return HistogramReport{}, fmt.Errorf("in-degree: %w", err)
	}
	out, err := Histogram(r.Out)
	if err != nil {
		return HistogramReport{}, fmt.Errorf("out-degree: %w", err)
	}
	all, err := Histogram(r.All)
	if err != nil {
		return HistogramReport{}, fmt.Errorf("total degree: %w", err)
	}
	return HistogramReport{In: in, Out: out, All: all}, nil
}

// Density returns the graph density E / (n * (n - 1)).
//
// Directed density over ordered pairs. Graphs with fewer than two nodes
// have no defined density and yield ErrUndefinedMetric.
func (g *Graph) Density() (float64, error) {
	n := g.NodeCount()
	if n <= 1 {
		return 0, fmt.Errorf("%w: density needs at least 2 nodes, have %d",
			ErrUndefinedMetric, n)
	}
	return float64(g.EdgeCount()) / float64(n*(n-1)), nil
}

// MeanGeodesic returns the mean shortest-path length over all ordered
// node pairs connected by a directed path.
//
// Description:
//
//	Runs a breadth-first search from every node and averages the
//	resulting distances. Pairs with no directed path are excluded from
//	both the numerator and the denominator. A graph where no pair is
//	connected (including single-node graphs) yields ErrUndefinedMetric.
//
// Thread Safety: Safe on a frozen graph.
//
// Complexity: O(V * (V + E)).
func (g *Graph) MeanGeodesic(ctx context.Context) (float64, error) {
	initMetrics()
	_, span := tracer.Start(ctx, "graph.MeanGeodesic")
	defer span.End()
	start := time.Now()

	ids := g.NodeIDs()
	totalDist := 0
	pairs := 0
	for _, src := range ids {
		dist := g.bfsDistances(src)
		for dst, d := range dist {
			if dst == src {
				continue
			}
			totalDist += d
			pairs++
		}
	}

	span.SetAttributes(
		attribute.Int("pairs.connected", pairs),
		attribute.Int64("duration_us", time.Since(start).Microseconds()),
	)
	if pairs == 0 {
		return 0, fmt.Errorf("%w: no connected node pairs", ErrUndefinedMetric)
	}
	return float64(totalDist) / float64(pairs), nil
}

// bfsDistances returns directed BFS distances from src, src included at
// distance 0. Unreachable nodes are absent.
func (g *Graph) bfsDistances(src string) map[string]int {
	dist := map[string]int{src: 0}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Successors(cur) {
			if _, seen := dist[next]; seen {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// DyadCensusReport counts unordered node pairs by their tie type.
type DyadCensusReport struct {
	// Null pairs share no edge in either direction.
	Null int

	// Asymmetric pairs share an edge in exactly one direction.
	Asymmetric int

	// Mutual pairs share edges in both directions. Always zero for a
	// well-formed pedigree.
	Mutual int
}

// DyadCensus classifies every unordered node pair as null, asymmetric,
// or mutual.
//
// Description:
//
//	The census is only meaningful for acyclic pedigree data, so the graph
//	is checked first; a cyclic graph fails with ErrMalformedGraph rather
//	than producing a silently wrong census. The three counts always sum
//	to n*(n-1)/2.
//
// Complexity: O(V^2).
func (g *Graph) DyadCensus(ctx context.Context) (DyadCensusReport, error) {
	initMetrics()
	_, span := tracer.Start(ctx, "graph.DyadCensus")
	defer span.End()

	if !g.IsAcyclic() {
		return DyadCensusReport{}, fmt.Errorf("%w: dyad census requires acyclic data",
			ErrMalformedGraph)
	}

	ids := g.NodeIDs()
	var report DyadCensusReport
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			ab := g.HasEdge(ids[i], ids[j])
			ba := g.HasEdge(ids[j], ids[i])
			switch {
			case ab && ba:
				report.Mutual++
			case ab || ba:
				report.Asymmetric++
			default:
				report.Null++
			}
		}
	}
	return report, nil
}
