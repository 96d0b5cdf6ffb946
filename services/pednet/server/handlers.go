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

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/pednet/services/pednet/graph"
	"github.com/AleutianAI/pednet/services/pednet/pedigree"
)

// Handlers contains the HTTP handlers for pednet analysis sessions.
type Handlers struct {
	store  *Store
	logger *slog.Logger
}

// NewHandlers creates handlers over the given session store.
func NewHandlers(store *Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{store: store, logger: logger}
}

// HandleAnalyze handles POST /v1/pednet/analyses.
//
// Description:
//
//	Parses the posted pedigree text, builds a frozen graph, and registers
//	an analysis session for it. Per-call options (original ids, missing
//	sentinel, delimiter) never leak into other sessions.
//
// Response:
//
//	201 Created: AnalyzeResponse
//	400 Bad Request: unparseable body or pedigree
//	422 Unprocessable Entity: pedigree parsed but graph construction failed
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := h.logger.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "INVALID_REQUEST"})
		return
	}
	if req.Name == "" {
		req.Name = "pedigree"
	}

	var loadOpts []pedigree.LoadOption
	if req.Missing != nil {
		loadOpts = append(loadOpts, pedigree.WithMissing(*req.Missing))
	}
	if req.Comma != "" {
		runes := []rune(req.Comma)
		if len(runes) != 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "comma must be a single character", Code: "INVALID_REQUEST"})
			return
		}
		loadOpts = append(loadOpts, pedigree.WithComma(runes[0]))
	}

	rs, err := pedigree.Load(strings.NewReader(req.Pedigree), req.Name, loadOpts...)
	if err != nil {
		logger.Warn("pedigree parse failed", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PEDIGREE"})
		return
	}

	builderOpts := []graph.BuilderOption{graph.WithLogger(h.logger)}
	if req.OriginalIDs {
		builderOpts = append(builderOpts, graph.WithOriginalIDs())
	}

	result, err := graph.NewBuilder(builderOpts...).Build(c.Request.Context(), rs)
	if err != nil {
		logger.Warn("graph build failed", "pedigree", req.Name, "error", err)
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "BUILD_FAILED"})
		return
	}

	session := h.store.Create(req.Name, result.Graph, result.Stats)
	logger.Info("analysis session created",
		"session_id", session.ID,
		"pedigree", req.Name,
		"nodes", result.Stats.NodesCreated,
		"edges", result.Stats.EdgesCreated)

	c.JSON(http.StatusCreated, AnalyzeResponse{
		SessionID:   session.ID,
		Name:        session.Name,
		Nodes:       result.Stats.NodesCreated,
		Edges:       result.Stats.EdgesCreated,
		Records:     result.Stats.RecordsProcessed,
		BuildMicros: result.Stats.DurationMicro,
	})
}

// HandleSession handles GET /v1/pednet/analyses/:id.
func (h *Handlers) HandleSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	stats := session.Graph.Stats()
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: session.ID,
		Name:      session.Name,
		Nodes:     stats.NodeCount,
		Edges:     stats.EdgeCount,
		Founders:  stats.Founders,
		CreatedAt: session.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleDeleteSession handles DELETE /v1/pednet/analyses/:id.
func (h *Handlers) HandleDeleteSession(c *gin.Context) {
	if !h.store.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found", Code: "SESSION_NOT_FOUND"})
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAncestors handles GET /v1/pednet/analyses/:id/ancestors/:node.
//
// With a "generations" query parameter the search is depth-bounded and
// the response maps each ancestor to its remaining-generation count;
// without it the full transitive set is returned.
func (h *Handlers) HandleAncestors(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	node := c.Param("node")

	if gensParam := c.Query("generations"); gensParam != "" {
		gens, err := strconv.Atoi(gensParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "generations must be an integer", Code: "INVALID_REQUEST"})
			return
		}
		anc, err := session.Graph.AncestorsWithin(c.Request.Context(), node, gens)
		if err != nil {
			h.queryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"node": node, "generations": gens, "ancestors": anc})
		return
	}

	anc, err := session.Graph.Ancestors(c.Request.Context(), node)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "ancestors": setKeys(anc)})
}

// HandleDescendants handles GET /v1/pednet/analyses/:id/descendants/:node.
func (h *Handlers) HandleDescendants(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	node := c.Param("node")

	desc, err := session.Graph.Descendants(c.Request.Context(), node)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "descendants": setKeys(desc)})
}

// HandleFamily handles GET /v1/pednet/analyses/:id/family/:node.
func (h *Handlers) HandleFamily(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	node := c.Param("node")

	family, err := session.Graph.ImmediateFamily(c.Request.Context(), node)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"node": node, "family": setKeys(family)})
}

// HandleFounders handles GET /v1/pednet/analyses/:id/founders.
func (h *Handlers) HandleFounders(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	fd, err := session.Graph.FounderDescendants(c.Request.Context())
	if err != nil {
		h.queryError(c, err)
		return
	}
	out := make(map[string][]string, len(fd))
	for founder, desc := range fd {
		out[founder] = setKeys(desc)
	}
	c.JSON(http.StatusOK, gin.H{"founders": out})
}

// HandleInfluence handles GET /v1/pednet/analyses/:id/influence/:node.
//
// The "resolve" query parameter selects the tie policy (first, last,
// all; default all).
func (h *Handlers) HandleInfluence(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	node := c.Param("node")

	resolve := graph.ResolveAll
	if resolveParam := c.Query("resolve"); resolveParam != "" {
		var err error
		resolve, err = graph.ParseTieResolve(resolveParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
			return
		}
	}

	offspring, err := session.Graph.OffspringInfluence(c.Request.Context(), node)
	if err != nil {
		h.queryError(c, err)
		return
	}

	resp := InfluenceResponse{Node: node, Offspring: offspring, Resolve: resolve.String()}
	if len(offspring) > 0 {
		winners, score, err := session.Graph.MostInfluentialOffspring(c.Request.Context(), node, resolve)
		if err != nil {
			h.queryError(c, err)
			return
		}
		resp.MostInfluential = winners
		resp.Influence = score
	}
	c.JSON(http.StatusOK, resp)
}

// HandleDegrees handles GET /v1/pednet/analyses/:id/degrees.
func (h *Handlers) HandleDegrees(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	degrees := session.Graph.NodeDegrees()
	c.JSON(http.StatusOK, gin.H{"in": degrees.In, "out": degrees.Out, "all": degrees.All})
}

// HandleHistograms handles GET /v1/pednet/analyses/:id/histograms.
func (h *Handlers) HandleHistograms(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	hists, err := session.Graph.NodeDegrees().Histograms()
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in": hists.In, "out": hists.Out, "all": hists.All})
}

// HandleDensity handles GET /v1/pednet/analyses/:id/density.
func (h *Handlers) HandleDensity(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	density, err := session.Graph.Density()
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"density": density})
}

// HandleGeodesic handles GET /v1/pednet/analyses/:id/geodesic.
//
// "parallel=true" opts into the sharded all-pairs traversal; results are
// identical either way.
func (h *Handlers) HandleGeodesic(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var mean float64
	var err error
	if c.Query("parallel") == "true" {
		mean, err = session.Graph.MeanGeodesicParallel(c.Request.Context())
	} else {
		mean, err = session.Graph.MeanGeodesic(c.Request.Context())
	}
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mean_geodesic": mean})
}

// HandleDyads handles GET /v1/pednet/analyses/:id/dyads.
func (h *Handlers) HandleDyads(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	census, err := session.Graph.DyadCensus(c.Request.Context())
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"null":       census.Null,
		"asymmetric": census.Asymmetric,
		"mutual":     census.Mutual,
	})
}

// HandleCentrality handles GET /v1/pednet/analyses/:id/centrality.
//
// The "kind" query parameter selects the measure: degree (default),
// closeness, betweenness, or clustering. "normalize=true" applies to the
// degree measure only.
func (h *Handlers) HandleCentrality(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch kind := c.DefaultQuery("kind", "degree"); kind {
	case "degree":
		normalize := c.Query("normalize") == "true"
		stats, err := session.Graph.MeanDegreeCentrality(normalize)
		if err != nil {
			h.queryError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": kind, "normalized": normalize, "values": stats})

	case "closeness":
		values, err := session.Graph.ClosenessCentrality(ctx)
		if err != nil {
			h.queryError(c, err)
			return
		}
		h.centralityResponse(c, kind, values)

	case "betweenness":
		values, err := session.Graph.BetweennessCentrality(ctx)
		if err != nil {
			h.queryError(c, err)
			return
		}
		h.centralityResponse(c, kind, values)

	case "clustering":
		values, err := session.Graph.ClusteringCoefficient(ctx)
		if err != nil {
			h.queryError(c, err)
			return
		}
		h.centralityResponse(c, kind, values)

	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "kind must be degree, closeness, betweenness, or clustering",
			Code:  "INVALID_REQUEST",
		})
	}
}

// centralityResponse attaches the per-node values and their mean.
func (h *Handlers) centralityResponse(c *gin.Context, kind string, values map[string]float64) {
	mean, err := graph.MeanValue(values)
	if err != nil {
		h.queryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "values": values, "mean": mean})
}

// HandleHealth handles GET /v1/pednet/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"version":  ServiceVersion,
		"sessions": h.store.Len(),
	})
}

// session resolves the :id path parameter, writing a 404 on miss.
func (h *Handlers) session(c *gin.Context) (*AnalysisSession, bool) {
	session, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "session not found", Code: "SESSION_NOT_FOUND"})
		return nil, false
	}
	return session, true
}

// queryError maps graph errors to HTTP status codes.
func (h *Handlers) queryError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "QUERY_FAILED"

	switch {
	case errors.Is(err, graph.ErrNodeNotFound):
		status = http.StatusNotFound
		code = "NODE_NOT_FOUND"
	case errors.Is(err, graph.ErrUndefinedMetric):
		status = http.StatusUnprocessableEntity
		code = "UNDEFINED_METRIC"
	case errors.Is(err, graph.ErrMalformedGraph):
		status = http.StatusUnprocessableEntity
		code = "MALFORMED_GRAPH"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("query failed", "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// setKeys flattens a membership set into a sorted slice for JSON.
func setKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// getOrCreateRequestID returns the inbound request id or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
