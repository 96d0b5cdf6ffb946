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

// MeanValue returns the arithmetic mean of a metric map's values.
//
// An empty map has no mean and yields ErrUndefinedMetric, rather than a
// magic sentinel value the caller could mistake for data.
func MeanValue[V ~int | ~float64](values map[string]V) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: mean of empty value set", ErrUndefinedMetric)
	}
	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)), nil
}

// MeanDegreeCentrality returns mean degree centrality statistics.
//
// Description:
//
//	For acyclic graphs the result has "in" and "out" keys: the mean
//	in-degree and mean out-degree, each optionally normalized by
//	(edge count - 1). For a graph that is not a DAG the result degrades
//	to a single "all" key, the mean total degree optionally normalized
//	by (n - 1).
//
// Outputs:
//
//	map[string]float64 - Statistic name to value.
//	error - ErrUndefinedMetric when the graph is empty or the requested
//	        normalization would divide by zero.
func (g *Graph) MeanDegreeCentrality(normalize bool) (map[string]float64, error) {
	n := g.NodeCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty graph", ErrUndefinedMetric)
	}

	degrees := g.NodeDegrees()
	stats := make(map[string]float64, 2)

	if g.IsAcyclic() {
		meanIn, err := MeanValue(degrees.In)
		if err != nil {
			return nil, err
		}
		meanOut, err := MeanValue(degrees.Out)
		if err != nil {
			return nil, err
		}
		if normalize {
			div := float64(g.EdgeCount() - 1)
			if div <= 0 {
				return nil, fmt.Errorf("%w: cannot normalize with %d edges",
					ErrUndefinedMetric, g.EdgeCount())
			}
			meanIn /= div
			meanOut /= div
		}
		stats["in"] = meanIn
		stats["out"] = meanOut
		return stats, nil
	}

	meanAll, err := MeanValue(degrees.All)
	if err != nil {
		return nil, err
	}
	if normalize {
		if n <= 1 {
			return nil, fmt.Errorf("%w: cannot normalize with %d nodes",
				ErrUndefinedMetric, n)
		}
		meanAll /= float64(n - 1)
	}
	stats["all"] = meanAll
	return stats, nil
}

// ClosenessCentrality returns per-node closeness over directed forward
// distances.
//
// Description:
//
//	For each node, runs a forward breadth-first search; closeness is the
//	number of reachable nodes divided by the sum of their distances, i.e.
//	the reciprocal of the mean distance to what the node can reach. A
//	node that reaches nothing scores 0.
//
// Complexity: O(V * (V + E)).
func (g *Graph) ClosenessCentrality(ctx context.Context) (map[string]float64, error) {
	initMetrics()
	_, span := tracer.Start(ctx, "graph.ClosenessCentrality")
	defer span.End()

	out := make(map[string]float64, g.NodeCount())
	for _, id := range g.NodeIDs() {
		dist := g.bfsDistances(id)
		reached := 0
		sum := 0
		for dst, d := range dist {
			if dst == id {
				continue
			}
			reached++
			sum += d
		}
		if reached == 0 || sum == 0 {
			out[id] = 0
			continue
		}
		out[id] = float64(reached) / float64(sum)
	}
	return out, nil
}

// ClusteringCoefficient returns the Watts-Strogatz local clustering
// coefficient of each node, computed over the underlying undirected
// simple graph.
//
// Description:
//
//	For a node with k distinct neighbors (parents and offspring pooled),
//	the coefficient is the fraction of the k*(k-1)/2 possible neighbor
//	pairs that are themselves connected in either direction. Nodes with
//	fewer than two neighbors score 0.
//
// Complexity: O(V * d^2) for maximum degree d.
func (g *Graph) ClusteringCoefficient(ctx context.Context) (map[string]float64, error) {
	initMetrics()
	_, span := tracer.Start(ctx, "graph.ClusteringCoefficient")
	defer span.End()

	out := make(map[string]float64, g.NodeCount())
	for _, id := range g.NodeIDs() {
		neighbors := g.Neighbors(id)
		k := len(neighbors)
		if k < 2 {
			out[id] = 0
			continue
		}
		links := 0
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if g.HasEdge(neighbors[i], neighbors[j]) || g.HasEdge(neighbors[j], neighbors[i]) {
					links++
				}
			}
		}
		out[id] = 2.0 * float64(links) / float64(k*(k-1))
	}
	return out, nil
}

// BetweennessCentrality returns per-node betweenness via Brandes'
// algorithm over directed shortest paths.
//
// Description:
//
//	Betweenness of v is the sum over source/target pairs (s, t), both
//	distinct from v, of the fraction of shortest s-t paths passing
//	through v, normalized by (n-1)*(n-2). Graphs with fewer than three
//	nodes have nothing to be between; every node scores 0.
//
// Complexity: O(V * E) for unweighted graphs.
func (g *Graph) BetweennessCentrality(ctx context.Context) (map[string]float64, error) {
	initMetrics()
	_, span := tracer.Start(ctx, "graph.BetweennessCentrality")
	defer span.End()

	ids := g.NodeIDs()
	n := len(ids)
	score := make(map[string]float64, n)
	for _, id := range ids {
		score[id] = 0
	}
	if n < 3 {
		return score, nil
	}

	for _, src := range ids {
		// Single-source shortest paths with path counting.
		var order []string
		pred := make(map[string][]string, n)
		sigma := map[string]float64{src: 1}
		dist := map[string]int{src: 0}
		queue := []string{src}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			order = append(order, cur)
			for _, next := range g.Successors(cur) {
				if _, seen := dist[next]; !seen {
					dist[next] = dist[cur] + 1
					queue = append(queue, next)
				}
				if dist[next] == dist[cur]+1 {
					sigma[next] += sigma[cur]
					pred[next] = append(pred[next], cur)
				}
			}
		}

		// Dependency accumulation in reverse BFS order.
		delta := make(map[string]float64, len(order))
		for i := len(order) - 1; i >= 0; i-- {
			w := order[i]
			for _, v := range pred[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != src {
				score[w] += delta[w]
			}
		}
	}

	norm := float64((n - 1) * (n - 2))
	for id := range score {
		score[id] /= norm
	}
	return score, nil
}
