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
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer trace.Tracer
	meter  metric.Meter

	buildLatency metric.Float64Histogram
	buildTotal   metric.Int64Counter
	nodesCreated metric.Int64Counter
	edgesCreated metric.Int64Counter
	queryLatency metric.Float64Histogram

	metricsOnce sync.Once
)

// initMetrics lazily initializes OpenTelemetry instruments. Called on
// first use to respect whatever global providers the host wired up.
func initMetrics() {
	metricsOnce.Do(func() {
		tracer = otel.Tracer("pednet.graph")
		meter = otel.Meter("pednet.graph")

		var err error
		buildLatency, err = meter.Float64Histogram(
			"pednet.graph.build.duration",
			metric.WithDescription("Pedigree graph build duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			otel.Handle(err)
		}

		buildTotal, err = meter.Int64Counter(
			"pednet.graph.build.total",
			metric.WithDescription("Total pedigree graph builds, by outcome"),
		)
		if err != nil {
			otel.Handle(err)
		}

		nodesCreated, err = meter.Int64Counter(
			"pednet.graph.nodes.created",
			metric.WithDescription("Total nodes added across builds"),
		)
		if err != nil {
			otel.Handle(err)
		}

		edgesCreated, err = meter.Int64Counter(
			"pednet.graph.edges.created",
			metric.WithDescription("Total edges added across builds"),
		)
		if err != nil {
			otel.Handle(err)
		}

		queryLatency, err = meter.Float64Histogram(
			"pednet.graph.query.duration",
			metric.WithDescription("Graph query duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}
