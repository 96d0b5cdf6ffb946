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
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	// parallelThreshold is the minimum node count before parallel
	// all-pairs traversal is worth the goroutine overhead.
	parallelThreshold = 32

	// maxParallelWorkers caps worker goroutines regardless of GOMAXPROCS.
	maxParallelWorkers = 8
)

// MeanGeodesicParallel computes MeanGeodesic with bounded worker
// goroutines.
//
// Description:
//
//	Identical semantics to MeanGeodesic: mean directed shortest-path
//	length over connected ordered pairs, pathless pairs excluded. Source
//	nodes are sharded across up to maxParallelWorkers goroutines; small
//	graphs fall back to the sequential implementation. Safe because a
//	frozen graph is read-only.
//
// Outputs:
//
//	float64 - Mean geodesic distance.
//	error - ErrUndefinedMetric when no pair is connected, or the context
//	        error on cancellation.
func (g *Graph) MeanGeodesicParallel(ctx context.Context) (float64, error) {
	ids := g.NodeIDs()
	if len(ids) < parallelThreshold {
		return g.MeanGeodesic(ctx)
	}

	initMetrics()
	ctx, span := tracer.Start(ctx, "graph.MeanGeodesicParallel")
	defer span.End()

	workers := runtime.GOMAXPROCS(0)
	if workers > maxParallelWorkers {
		workers = maxParallelWorkers
	}

	var totalDist, pairs atomic.Int64
	eg, ctx := errgroup.WithContext(ctx)
	chunk := (len(ids) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(ids))
		if lo >= hi {
			break
		}
		shard := ids[lo:hi]
		eg.Go(func() error {
			localDist := 0
			localPairs := 0
			for _, src := range shard {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				for dst, d := range g.bfsDistances(src) {
					if dst == src {
						continue
					}
					localDist += d
					localPairs++
				}
			}
			totalDist.Add(int64(localDist))
			pairs.Add(int64(localPairs))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("parallel geodesic: %w", err)
	}

	if pairs.Load() == 0 {
		return 0, fmt.Errorf("%w: no connected node pairs", ErrUndefinedMetric)
	}
	return float64(totalDist.Load()) / float64(pairs.Load()), nil
}
