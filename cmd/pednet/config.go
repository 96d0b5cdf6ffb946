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

// Config is the optional config.yaml schema for the CLI.
//
// Per-analysis knobs (id-space, tie policy, generations) are flags, not
// config, so one run's settings never bleed into the next.
type Config struct {
	Logging struct {
		// Level is the minimum log level: debug, info, warn, error.
		Level string `yaml:"level"`

		// Dir enables JSON file logging in the given directory.
		Dir string `yaml:"dir"`

		// JSON switches stderr logs to JSON format.
		JSON bool `yaml:"json"`
	} `yaml:"logging"`

	Telemetry struct {
		// TraceExporter: "stdout" or "none".
		TraceExporter string `yaml:"trace_exporter"`

		// MetricExporter: "prometheus", "stdout", or "none".
		MetricExporter string `yaml:"metric_exporter"`
	} `yaml:"telemetry"`
}

// DefaultCLIConfig returns the defaults used when config.yaml is absent.
// Telemetry stays off for one-shot CLI runs.
func DefaultCLIConfig() Config {
	var cfg Config
	cfg.Logging.Level = "info"
	cfg.Telemetry.TraceExporter = "none"
	cfg.Telemetry.MetricExporter = "none"
	return cfg
}
