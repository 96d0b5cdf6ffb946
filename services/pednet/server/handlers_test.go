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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPedigree: founders 1 and 2, offspring 3 and 4, then 3 x 2 -> 5.
const testPedigree = "1 0 0\n2 0 0\n3 1 2\n4 1 2\n5 3 2\n"

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewHandlers(NewStore(), nil), false)
}

// createSession posts a pedigree and returns the session id.
func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body, _ := json.Marshal(AnalyzeRequest{Name: "herd", Pedigree: testPedigree})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/pednet/analyses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleAnalyze(t *testing.T) {
	router := testRouter()

	t.Run("creates session", func(t *testing.T) {
		body, _ := json.Marshal(AnalyzeRequest{Name: "herd", Pedigree: testPedigree})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/pednet/analyses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp AnalyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 5, resp.Nodes)
		assert.Equal(t, 6, resp.Edges)
		assert.Equal(t, "herd", resp.Name)
	})

	t.Run("rejects missing pedigree text", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/pednet/analyses", bytes.NewReader([]byte(`{"name":"x"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unbuildable pedigree", func(t *testing.T) {
		// Forward parent reference: not topologically ordered.
		body, _ := json.Marshal(AnalyzeRequest{Pedigree: "1 2 0\n2 0 0\n"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/pednet/analyses", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BUILD_FAILED", resp.Code)
	})
}

func TestSessionLifecycle(t *testing.T) {
	router := testRouter()
	id := createSession(t, router)

	w := get(router, "/v1/pednet/analyses/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Nodes)
	assert.Equal(t, 2, resp.Founders)

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/v1/pednet/analyses/"+id, nil))
	assert.Equal(t, http.StatusNoContent, del.Code)

	assert.Equal(t, http.StatusNotFound, get(router, "/v1/pednet/analyses/"+id).Code)
}

func TestLineageEndpoints(t *testing.T) {
	router := testRouter()
	id := createSession(t, router)

	t.Run("ancestors", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/ancestors/5")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Ancestors []string `json:"ancestors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"1", "2", "3"}, resp.Ancestors)
	})

	t.Run("bounded ancestors", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/ancestors/5?generations=1")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Ancestors map[string]int `json:"ancestors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, map[string]int{"3": 1, "2": 1}, resp.Ancestors)
	})

	t.Run("descendants", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/descendants/1")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Descendants []string `json:"descendants"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"3", "4", "5"}, resp.Descendants)
	})

	t.Run("family", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/family/3")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Family []string `json:"family"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.ElementsMatch(t, []string{"1", "2", "5"}, resp.Family)
	})

	t.Run("unknown node maps to 404", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/ancestors/404")
		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "NODE_NOT_FOUND", resp.Code)
	})

	t.Run("unknown session maps to 404", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/no-such-session/ancestors/1")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInfluenceEndpoint(t *testing.T) {
	router := testRouter()
	id := createSession(t, router)

	t.Run("default resolve all", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/influence/2")
		require.Equal(t, http.StatusOK, w.Code)
		var resp InfluenceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, map[string]int{"5": 0}, resp.Offspring)
		assert.Equal(t, "all", resp.Resolve)
	})

	t.Run("invalid resolve", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/influence/1?resolve=middle")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricEndpoints(t *testing.T) {
	router := testRouter()
	id := createSession(t, router)

	t.Run("density", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/density")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Density float64 `json:"density"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.InDelta(t, 0.3, resp.Density, 1e-12)
	})

	t.Run("geodesic sequential and parallel agree", func(t *testing.T) {
		seq := get(router, "/v1/pednet/analyses/"+id+"/geodesic")
		par := get(router, "/v1/pednet/analyses/"+id+"/geodesic?parallel=true")
		require.Equal(t, http.StatusOK, seq.Code)
		require.Equal(t, http.StatusOK, par.Code)
		assert.JSONEq(t, seq.Body.String(), par.Body.String())
	})

	t.Run("dyads", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/dyads")
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Null       int `json:"null"`
			Asymmetric int `json:"asymmetric"`
			Mutual     int `json:"mutual"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 6, resp.Asymmetric)
		assert.Equal(t, 0, resp.Mutual)
		assert.Equal(t, 10, resp.Null+resp.Asymmetric+resp.Mutual)
	})

	t.Run("histograms", func(t *testing.T) {
		w := get(router, "/v1/pednet/analyses/"+id+"/histograms")
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("centrality kinds", func(t *testing.T) {
		for _, kind := range []string{"degree", "closeness", "betweenness", "clustering"} {
			w := get(router, "/v1/pednet/analyses/"+id+"/centrality?kind="+kind)
			assert.Equal(t, http.StatusOK, w.Code, kind)
		}
		w := get(router, "/v1/pednet/analyses/"+id+"/centrality?kind=gravity")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	router := testRouter()
	w := get(router, "/v1/pednet/health")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ServiceVersion, resp.Version)
}
