// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes pedigree analysis over HTTP.
//
// Graphs are ephemeral: a client posts a pedigree, gets back a session
// id, and queries metrics against the frozen in-memory graph until the
// session is deleted or the process exits. Nothing is persisted.
package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/pednet/services/pednet/graph"
)

// AnalysisSession holds one built pedigree graph and its build metadata.
type AnalysisSession struct {
	// ID is the session identifier handed to the client.
	ID string

	// Name is the pedigree name supplied at analysis time.
	Name string

	// Graph is the frozen pedigree graph.
	Graph *graph.Graph

	// BuildStats records how the graph was built.
	BuildStats graph.BuildStats

	// CreatedAt is when the session was created.
	CreatedAt time.Time
}

// Store is an in-memory session registry.
//
// Safe for concurrent use. Sessions hold frozen graphs, so readers never
// contend beyond the map lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*AnalysisSession
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*AnalysisSession)}
}

// Create registers a new session for a built graph and returns it.
func (s *Store) Create(name string, g *graph.Graph, stats graph.BuildStats) *AnalysisSession {
	session := &AnalysisSession{
		ID:         uuid.NewString(),
		Name:       name,
		Graph:      g,
		BuildStats: stats,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns the session with the given id, or false.
func (s *Store) Get(id string) (*AnalysisSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Replace swaps in a freshly built graph under an existing session id.
// Used by the file watcher so rebuilds keep the id clients already hold.
// Returns false if the session does not exist.
func (s *Store) Replace(id string, g *graph.Graph, stats graph.BuildStats) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.sessions[id]
	if !ok {
		return false
	}
	// A new value, not mutation: handlers holding the old pointer keep a
	// consistent (frozen) graph until their next lookup.
	s.sessions[id] = &AnalysisSession{
		ID:         id,
		Name:       old.Name,
		Graph:      g,
		BuildStats: stats,
		CreatedAt:  old.CreatedAt,
	}
	return true
}

// Delete removes a session. Returns false if it did not exist.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
