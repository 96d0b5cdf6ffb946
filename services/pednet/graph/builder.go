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
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/AleutianAI/pednet/services/pednet/pedigree"
)

// contextCheckInterval is how often (in records) the builder polls the
// context for cancellation.
const contextCheckInterval = 1000

// BuilderOptions configures pedigree graph building.
type BuilderOptions struct {
	// UseOriginalIDs keys graph nodes by the records' external identifiers
	// instead of their dense internal identifiers. Default: false.
	UseOriginalIDs bool

	// MaxNodes is the maximum number of nodes for the built graph.
	// Default: DefaultMaxNodes.
	MaxNodes int

	// MaxEdges is the maximum number of edges for the built graph.
	// Default: DefaultMaxEdges.
	MaxEdges int

	// Logger for build progress. Default: slog.Default().
	Logger *slog.Logger

	// ProgressCallback, if non-nil, is invoked every contextCheckInterval
	// records with the number of records processed so far.
	ProgressCallback func(processed int)
}

// BuilderOption is a functional option for configuring the builder.
type BuilderOption func(*BuilderOptions)

// WithOriginalIDs keys nodes by external identifiers.
func WithOriginalIDs() BuilderOption {
	return func(o *BuilderOptions) {
		o.UseOriginalIDs = true
	}
}

// WithBuilderMaxNodes sets the node capacity of the built graph.
func WithBuilderMaxNodes(maxNodes int) BuilderOption {
	return func(o *BuilderOptions) {
		o.MaxNodes = maxNodes
	}
}

// WithBuilderMaxEdges sets the edge capacity of the built graph.
func WithBuilderMaxEdges(maxEdges int) BuilderOption {
	return func(o *BuilderOptions) {
		o.MaxEdges = maxEdges
	}
}

// WithLogger sets the logger used for build progress.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(o *BuilderOptions) {
		o.Logger = logger
	}
}

// WithProgressCallback sets a periodic progress callback.
func WithProgressCallback(cb func(processed int)) BuilderOption {
	return func(o *BuilderOptions) {
		o.ProgressCallback = cb
	}
}

// Builder constructs pedigree graphs from record sets.
//
// The Builder is stateless and safe for concurrent use; each Build call
// produces an independent graph.
type Builder struct {
	options BuilderOptions
}

// NewBuilder creates a graph builder with the given options.
func NewBuilder(opts ...BuilderOption) *Builder {
	options := BuilderOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Builder{options: options}
}

// Build constructs a frozen pedigree graph from a record set.
//
// Description:
//
//	Processes records in pedigree order, creating one node per animal and
//	one edge per recorded parent (sire → offspring tagged RoleSire, dam →
//	offspring tagged RoleDam). Because records are expected in topological
//	order, every recorded parent must already exist as a node when its
//	offspring is processed; a dangling or forward reference aborts the
//	build. The build is all-or-nothing: on any error no graph is returned.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked every contextCheckInterval
//	      records.
//	rs - The pedigree record set. Never mutated.
//
// Outputs:
//
//	*BuildResult - The frozen graph plus build statistics.
//	error - RecordError wrapping ErrUnresolvedParent, ErrDuplicateNode,
//	        ErrSelfLoop, ErrInvalidNode, ErrMaxNodesExceeded, or
//	        ErrMaxEdgesExceeded; ErrBuildCancelled on context
//	        cancellation.
//
// Thread Safety: Safe for concurrent calls.
//
// Complexity: O(n) in the number of records.
func (b *Builder) Build(ctx context.Context, rs *pedigree.RecordSet) (*BuildResult, error) {
	initMetrics()

	ctx, span := tracer.Start(ctx, "graph.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("pedigree.name", rs.Name),
		attribute.Int("pedigree.records", rs.Len()),
		attribute.Bool("pedigree.original_ids", b.options.UseOriginalIDs),
	)

	start := time.Now()
	g := NewGraph(rs.Name,
		WithMaxNodes(b.options.MaxNodes),
		WithMaxEdges(b.options.MaxEdges),
	)

	// In original-ID mode parent references still arrive as dense internal
	// identifiers and must be translated through the animals seen so far.
	var originalByAnimal map[int]string
	if b.options.UseOriginalIDs {
		originalByAnimal = make(map[int]string, rs.Len())
	}

	stats := BuildStats{}
	for i, r := range rs.Records {
		if i%contextCheckInterval == 0 {
			select {
			case <-ctx.Done():
				b.recordBuild(ctx, start, "cancelled")
				return nil, fmt.Errorf("%w after %d records: %v",
					ErrBuildCancelled, i, ctx.Err())
			default:
			}
			if b.options.ProgressCallback != nil && i > 0 {
				b.options.ProgressCallback(i)
			}
		}

		nodeID, sireID, damID, err := b.resolveRecord(rs, r, originalByAnimal)
		if err != nil {
			b.recordBuild(ctx, start, "error")
			return nil, RecordError{Index: i, AnimalID: r.AnimalID, Err: err}
		}

		if _, err := g.AddNode(nodeID, sireID, damID); err != nil {
			b.recordBuild(ctx, start, "error")
			return nil, RecordError{Index: i, AnimalID: r.AnimalID, Err: err}
		}
		stats.NodesCreated++

		if sireID != "" {
			if err := b.addParentEdge(g, sireID, nodeID, RoleSire); err != nil {
				b.recordBuild(ctx, start, "error")
				return nil, RecordError{Index: i, AnimalID: r.AnimalID, Err: err}
			}
			stats.SireEdges++
			stats.EdgesCreated++
		}
		if damID != "" {
			if err := b.addParentEdge(g, damID, nodeID, RoleDam); err != nil {
				b.recordBuild(ctx, start, "error")
				return nil, RecordError{Index: i, AnimalID: r.AnimalID, Err: err}
			}
			stats.DamEdges++
			stats.EdgesCreated++
		}

		if originalByAnimal != nil {
			originalByAnimal[r.AnimalID] = r.OriginalID
		}
		stats.RecordsProcessed++
	}

	g.Freeze()

	elapsed := time.Since(start)
	stats.DurationMilli = elapsed.Milliseconds()
	stats.DurationMicro = elapsed.Microseconds()

	b.recordBuild(ctx, start, "ok")
	nodesCreated.Add(ctx, int64(stats.NodesCreated))
	edgesCreated.Add(ctx, int64(stats.EdgesCreated))

	b.options.Logger.Info("pedigree graph built",
		"pedigree", rs.Name,
		"nodes", stats.NodesCreated,
		"edges", stats.EdgesCreated,
		"duration_ms", stats.DurationMilli,
	)

	return &BuildResult{Graph: g, Stats: stats}, nil
}

// resolveRecord translates a record into node/parent keys for the
// configured id-space. Parent keys are "" when the parent is unrecorded.
func (b *Builder) resolveRecord(
	rs *pedigree.RecordSet,
	r pedigree.Record,
	originalByAnimal map[int]string,
) (nodeID, sireID, damID string, err error) {
	if !b.options.UseOriginalIDs {
		nodeID = strconv.Itoa(r.AnimalID)
		if rs.HasSire(r) {
			sireID = strconv.Itoa(r.SireID)
		}
		if rs.HasDam(r) {
			damID = strconv.Itoa(r.DamID)
		}
		return nodeID, sireID, damID, nil
	}

	nodeID = r.OriginalID
	if rs.HasSire(r) {
		orig, ok := originalByAnimal[r.SireID]
		if !ok {
			return "", "", "", fmt.Errorf("%w: sire %d has no known external id",
				ErrUnresolvedParent, r.SireID)
		}
		sireID = orig
	}
	if rs.HasDam(r) {
		orig, ok := originalByAnimal[r.DamID]
		if !ok {
			return "", "", "", fmt.Errorf("%w: dam %d has no known external id",
				ErrUnresolvedParent, r.DamID)
		}
		damID = orig
	}
	return nodeID, sireID, damID, nil
}

// addParentEdge adds a parent → offspring edge, converting a missing
// parent node into an unresolved-parent failure.
func (b *Builder) addParentEdge(g *Graph, parentID, childID string, role ParentRole) error {
	if _, ok := g.GetNode(parentID); !ok {
		return fmt.Errorf("%w: %s %q not present before offspring %q",
			ErrUnresolvedParent, role, parentID, childID)
	}
	return g.AddEdge(parentID, childID, role)
}

// recordBuild emits build telemetry with an outcome label.
func (b *Builder) recordBuild(ctx context.Context, start time.Time, outcome string) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	buildLatency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0, attrs)
	buildTotal.Add(ctx, 1, attrs)
}
