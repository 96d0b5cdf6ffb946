// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command pednetd starts the pednet analysis API server.
//
// Sessions are ephemeral: every graph lives in memory and is rebuilt
// from pedigree text on demand. Nothing is persisted.
//
// Usage:
//
//	go run ./cmd/pednetd
//	go run ./cmd/pednetd -port 9090 -debug
//	go run ./cmd/pednetd -watch herd.ped
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/pednet/health
//
//	# Build a graph from pedigree text
//	curl -X POST http://localhost:8080/v1/pednet/analyses \
//	  -H "Content-Type: application/json" \
//	  -d '{"name": "herd", "pedigree": "1 0 0\n2 0 0\n3 1 2\n"}'
//
//	# Query it
//	curl http://localhost:8080/v1/pednet/analyses/<id>/ancestors/3
//	curl http://localhost:8080/v1/pednet/analyses/<id>/density
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/pednet/pkg/logging"
	"github.com/AleutianAI/pednet/services/pednet/graph"
	"github.com/AleutianAI/pednet/services/pednet/pedigree"
	"github.com/AleutianAI/pednet/services/pednet/server"
	"github.com/AleutianAI/pednet/services/pednet/telemetry"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	watchPath := flag.String("watch", "", "Pedigree file to watch and auto-rebuild as a named session")
	traceExporter := flag.String("trace-exporter", "", "Trace exporter: stdout or none (default from OTEL_TRACES_EXPORTER)")
	metricExporter := flag.String("metric-exporter", "", "Metric exporter: prometheus, stdout, or none (default from OTEL_METRICS_EXPORTER)")
	flag.Parse()

	level := logging.LevelInfo
	if *debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Service: "pednetd"})
	defer logger.Close()

	ctx := context.Background()

	// Telemetry before anything instrument-bearing runs.
	telCfg := telemetry.DefaultConfig()
	if *traceExporter != "" {
		telCfg.TraceExporter = *traceExporter
	}
	if *metricExporter != "" {
		telCfg.MetricExporter = *metricExporter
	}
	shutdown, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		logger.Error("telemetry init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	store := server.NewStore()
	handlers := server.NewHandlers(store, logger.Slog())
	router := server.NewRouter(handlers, *debug)

	if *watchPath != "" {
		watcher, err := startWatchedSession(ctx, store, *watchPath, logger)
		if err != nil {
			logger.Error("watch setup failed", "path", *watchPath, "error", err)
			os.Exit(1)
		}
		defer watcher.Stop()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down pednetd")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting pednetd", "address", addr, "watch", *watchPath)
	if err := router.Run(addr); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// startWatchedSession builds an initial session from the watched file and
// installs a watcher that rebuilds it in place on every change. The session
// id stays stable across rebuilds so clients can keep polling it.
func startWatchedSession(
	ctx context.Context,
	store *server.Store,
	path string,
	logger *logging.Logger,
) (*graph.PedigreeWatcher, error) {
	rebuild := func(p string) *server.AnalysisSession {
		rs, err := pedigree.LoadFile(p)
		if err != nil {
			logger.Error("watched pedigree load failed", "path", p, "error", err)
			return nil
		}
		result, err := graph.NewBuilder(graph.WithLogger(logger.Slog())).Build(ctx, rs)
		if err != nil {
			logger.Error("watched pedigree build failed", "path", p, "error", err)
			return nil
		}
		return &server.AnalysisSession{
			Name:       rs.Name,
			Graph:      result.Graph,
			BuildStats: result.Stats,
		}
	}

	initial := rebuild(path)
	if initial == nil {
		return nil, fmt.Errorf("initial build of %s failed", path)
	}
	session := store.Create(initial.Name, initial.Graph, initial.BuildStats)
	logger.Info("watched session created",
		"session", session.ID, "path", path, "nodes", initial.Graph.NodeCount())

	watcher, err := graph.NewPedigreeWatcher(path, func(p string) {
		next := rebuild(p)
		if next == nil {
			return
		}
		store.Replace(session.ID, next.Graph, next.BuildStats)
		logger.Info("watched session rebuilt",
			"session", session.ID, "nodes", next.Graph.NodeCount())
	}, nil)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(ctx); err != nil {
		return nil, err
	}
	return watcher, nil
}
