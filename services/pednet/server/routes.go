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
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/pednet/services/pednet/telemetry"
)

// RegisterRoutes registers all pednet routes with the router group.
//
// Description:
//
//	Registers all /v1/pednet/* endpoints. The router group should already
//	have any required middleware applied.
//
// Endpoints:
//
//	POST   /v1/pednet/analyses - Build a graph from pedigree text
//	GET    /v1/pednet/analyses/:id - Session summary
//	DELETE /v1/pednet/analyses/:id - Drop a session
//	GET    /v1/pednet/analyses/:id/ancestors/:node - Ancestor set (optionally bounded)
//	GET    /v1/pednet/analyses/:id/descendants/:node - Descendant set
//	GET    /v1/pednet/analyses/:id/family/:node - Immediate family
//	GET    /v1/pednet/analyses/:id/founders - Descendants of every founder
//	GET    /v1/pednet/analyses/:id/influence/:node - Progeny influence
//	GET    /v1/pednet/analyses/:id/degrees - Per-node degrees
//	GET    /v1/pednet/analyses/:id/histograms - Degree histograms
//	GET    /v1/pednet/analyses/:id/density - Graph density
//	GET    /v1/pednet/analyses/:id/geodesic - Mean geodesic distance
//	GET    /v1/pednet/analyses/:id/dyads - Dyad census
//	GET    /v1/pednet/analyses/:id/centrality - Centrality measures
//	GET    /v1/pednet/health - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	pednet := rg.Group("/pednet")
	{
		// Session lifecycle
		pednet.POST("/analyses", handlers.HandleAnalyze)
		pednet.GET("/analyses/:id", handlers.HandleSession)
		pednet.DELETE("/analyses/:id", handlers.HandleDeleteSession)

		// Lineage queries
		pednet.GET("/analyses/:id/ancestors/:node", handlers.HandleAncestors)
		pednet.GET("/analyses/:id/descendants/:node", handlers.HandleDescendants)
		pednet.GET("/analyses/:id/family/:node", handlers.HandleFamily)
		pednet.GET("/analyses/:id/founders", handlers.HandleFounders)

		// Influence
		pednet.GET("/analyses/:id/influence/:node", handlers.HandleInfluence)

		// Structural metrics
		pednet.GET("/analyses/:id/degrees", handlers.HandleDegrees)
		pednet.GET("/analyses/:id/histograms", handlers.HandleHistograms)
		pednet.GET("/analyses/:id/density", handlers.HandleDensity)
		pednet.GET("/analyses/:id/geodesic", handlers.HandleGeodesic)
		pednet.GET("/analyses/:id/dyads", handlers.HandleDyads)
		pednet.GET("/analyses/:id/centrality", handlers.HandleCentrality)

		// Health
		pednet.GET("/health", handlers.HandleHealth)
	}
}

// NewRouter builds the full pednet router: recovery middleware, the /v1
// API group, and the prometheus scrape endpoint when active.
func NewRouter(handlers *Handlers, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)

	if metricsHandler := telemetry.MetricsHandler(); metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	return router
}
