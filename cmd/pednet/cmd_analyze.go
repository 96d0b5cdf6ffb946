// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/pednet/pkg/logging"
	"github.com/AleutianAI/pednet/services/pednet/graph"
	"github.com/AleutianAI/pednet/services/pednet/pedigree"
	"github.com/AleutianAI/pednet/services/pednet/telemetry"
)

// newLogger builds the CLI logger from config plus the --debug flag.
func newLogger() *logging.Logger {
	level := logging.LevelInfo
	switch config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	if debugMode {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{
		Level:   level,
		LogDir:  config.Logging.Dir,
		Service: "pednet",
		JSON:    config.Logging.JSON,
	})
}

// buildGraph loads the pedigree file and builds a frozen graph.
func buildGraph(ctx context.Context, path string, logger *logging.Logger) (*graph.BuildResult, error) {
	var loadOpts []pedigree.LoadOption
	if missingParent != 0 {
		loadOpts = append(loadOpts, pedigree.WithMissing(missingParent))
	}
	if commaDelim != "" {
		runes := []rune(commaDelim)
		if len(runes) != 1 {
			return nil, fmt.Errorf("--comma must be a single character, got %q", commaDelim)
		}
		loadOpts = append(loadOpts, pedigree.WithComma(runes[0]))
	}

	rs, err := pedigree.LoadFile(path, loadOpts...)
	if err != nil {
		return nil, err
	}
	logger.Debug("pedigree loaded", "file", path, "records", rs.Len())

	builderOpts := []graph.BuilderOption{graph.WithLogger(logger.Slog())}
	if useOriginalIDs {
		builderOpts = append(builderOpts, graph.WithOriginalIDs())
	}
	return graph.NewBuilder(builderOpts...).Build(ctx, rs)
}

// initTelemetry starts telemetry per config. Returns a shutdown func.
func initTelemetry(ctx context.Context, logger *logging.Logger) func() {
	cfg := telemetry.DefaultConfig()
	cfg.TraceExporter = config.Telemetry.TraceExporter
	cfg.MetricExporter = config.Telemetry.MetricExporter
	if cfg.TraceExporter == "none" && cfg.MetricExporter == "none" {
		return func() {}
	}

	shutdown, err := telemetry.Init(ctx, cfg)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}
}

// runStats implements "pednet stats".
func runStats(_ *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	ctx := context.Background()

	result, err := buildGraph(ctx, args[0], logger)
	if err != nil {
		logger.Error("build failed", "file", args[0], "error", err)
		os.Exit(1)
	}

	stats := result.Graph.Stats()
	fmt.Printf("Pedigree:  %s\n", result.Graph.Name)
	fmt.Printf("Animals:   %d\n", stats.NodeCount)
	fmt.Printf("Edges:     %d (sire %d, dam %d)\n",
		stats.EdgeCount, stats.EdgesByRole[graph.RoleSire], stats.EdgesByRole[graph.RoleDam])
	fmt.Printf("Founders:  %d\n", stats.Founders)
	fmt.Printf("Built in:  %dus\n", result.Stats.DurationMicro)
}

// runAnalyze implements "pednet analyze".
func runAnalyze(_ *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Close()
	ctx := context.Background()
	defer initTelemetry(ctx, logger)()

	resolve, err := graph.ParseTieResolve(tiePolicy)
	if err != nil {
		logger.Error("invalid flag", "error", err)
		os.Exit(1)
	}

	result, err := buildGraph(ctx, args[0], logger)
	if err != nil {
		logger.Error("build failed", "file", args[0], "error", err)
		os.Exit(1)
	}
	g := result.Graph

	stats := g.Stats()
	fmt.Printf("=== %s ===\n", g.Name)
	fmt.Printf("animals %d, edges %d (sire %d / dam %d), founders %d\n\n",
		stats.NodeCount, stats.EdgeCount,
		stats.EdgesByRole[graph.RoleSire], stats.EdgesByRole[graph.RoleDam], stats.Founders)

	printStructural(ctx, g)
	printCentrality(ctx, g)

	if nodeID != "" {
		printNodeReport(ctx, g, nodeID, resolve)
	}
}

// printStructural prints density, histograms, geodesic, and dyads.
func printStructural(ctx context.Context, g *graph.Graph) {
	fmt.Println("-- structure --")

	if density, err := g.Density(); err == nil {
		fmt.Printf("density:        %.6f\n", density)
	} else {
		fmt.Printf("density:        undefined (%v)\n", err)
	}

	if hists, err := g.NodeDegrees().Histograms(); err == nil {
		fmt.Printf("in-degree:      %v\n", hists.In)
		fmt.Printf("out-degree:     %v\n", hists.Out)
		fmt.Printf("total degree:   %v\n", hists.All)
	}

	var mean float64
	var err error
	if runParallel {
		mean, err = g.MeanGeodesicParallel(ctx)
	} else {
		mean, err = g.MeanGeodesic(ctx)
	}
	if err == nil {
		fmt.Printf("mean geodesic:  %.6f\n", mean)
	} else {
		fmt.Printf("mean geodesic:  undefined (%v)\n", err)
	}

	if census, err := g.DyadCensus(ctx); err == nil {
		fmt.Printf("dyads:          null %d, asymmetric %d, mutual %d\n",
			census.Null, census.Asymmetric, census.Mutual)
	} else {
		fmt.Printf("dyads:          undefined (%v)\n", err)
	}
	fmt.Println()
}

// printCentrality prints mean degree centrality plus the means of the
// per-node measures.
func printCentrality(ctx context.Context, g *graph.Graph) {
	fmt.Println("-- centrality --")

	if stats, err := g.MeanDegreeCentrality(normalize); err == nil {
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("degree (%s):   %.6f\n", k, stats[k])
		}
	}

	printMeanOf(ctx, g, "closeness", g.ClosenessCentrality)
	printMeanOf(ctx, g, "clustering", g.ClusteringCoefficient)
	printMeanOf(ctx, g, "betweenness", g.BetweennessCentrality)
	fmt.Println()
}

func printMeanOf(
	ctx context.Context,
	g *graph.Graph,
	name string,
	fn func(context.Context) (map[string]float64, error),
) {
	values, err := fn(ctx)
	if err != nil {
		fmt.Printf("%-14s undefined (%v)\n", name+":", err)
		return
	}
	mean, err := graph.MeanValue(values)
	if err != nil {
		fmt.Printf("%-14s undefined (%v)\n", name+":", err)
		return
	}
	fmt.Printf("%-14s %.6f (mean)\n", name+":", mean)
}

// printNodeReport prints lineage and influence for a single animal.
func printNodeReport(ctx context.Context, g *graph.Graph, id string, resolve graph.TieResolve) {
	fmt.Printf("-- animal %s --\n", id)

	if generations > 0 {
		anc, err := g.AncestorsWithin(ctx, id, generations)
		if err != nil {
			fmt.Printf("ancestors:      error (%v)\n", err)
			return
		}
		fmt.Printf("ancestors (within %d generations): %d\n", generations, len(anc))
	} else {
		anc, err := g.Ancestors(ctx, id)
		if err != nil {
			fmt.Printf("ancestors:      error (%v)\n", err)
			return
		}
		fmt.Printf("ancestors:      %d\n", len(anc))
	}

	if desc, err := g.Descendants(ctx, id); err == nil {
		fmt.Printf("descendants:    %d\n", len(desc))
	}
	if family, err := g.ImmediateFamily(ctx, id); err == nil {
		fmt.Printf("family:         %d\n", len(family))
	}
	fmt.Printf("offspring:      %d\n", g.CountOffspring(id))

	winners, score, err := g.MostInfluentialOffspring(ctx, id, resolve)
	switch {
	case err == nil:
		fmt.Printf("most influential offspring (%s): %v with %d grand-offspring\n",
			resolve, winners, score)
	case errors.Is(err, graph.ErrUndefinedMetric):
		fmt.Println("most influential offspring: none (no offspring)")
	default:
		fmt.Printf("most influential offspring: error (%v)\n", err)
	}
}
