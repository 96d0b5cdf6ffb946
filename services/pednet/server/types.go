// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

// ServiceVersion is the pednet service version.
const ServiceVersion = "0.1.0"

// AnalyzeRequest is the body of POST /v1/pednet/analyses.
type AnalyzeRequest struct {
	// Name labels the pedigree. Defaults to "pedigree".
	Name string `json:"name"`

	// Pedigree is the delimited pedigree text (one record per line).
	Pedigree string `json:"pedigree" binding:"required"`

	// OriginalIDs keys graph nodes by external identifiers.
	OriginalIDs bool `json:"original_ids"`

	// Missing overrides the missing-parent sentinel. Default 0.
	Missing *int `json:"missing,omitempty"`

	// Comma sets an explicit single-character field delimiter.
	// Default: whitespace runs.
	Comma string `json:"comma,omitempty"`
}

// AnalyzeResponse describes a newly created analysis session.
type AnalyzeResponse struct {
	// SessionID identifies the session for follow-up metric queries.
	SessionID string `json:"session_id"`

	// Name is the pedigree label.
	Name string `json:"name"`

	// Nodes is the number of animals in the graph.
	Nodes int `json:"nodes"`

	// Edges is the number of parent edges.
	Edges int `json:"edges"`

	// Records is the number of pedigree records processed.
	Records int `json:"records"`

	// BuildMicros is the build duration in microseconds.
	BuildMicros int64 `json:"build_us"`
}

// SessionResponse describes an existing session.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Founders  int    `json:"founders"`
	CreatedAt string `json:"created_at"`
}

// InfluenceResponse is the body for influence queries.
type InfluenceResponse struct {
	// Node is the queried animal.
	Node string `json:"node"`

	// Offspring maps each child to its grand-offspring count.
	Offspring map[string]int `json:"offspring"`

	// MostInfluential lists the winner(s) under the tie policy.
	MostInfluential []string `json:"most_influential"`

	// Influence is the winning score.
	Influence int `json:"influence"`

	// Resolve echoes the tie policy applied.
	Resolve string `json:"resolve"`
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
