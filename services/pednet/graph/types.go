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
	"fmt"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 1_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	// Each animal contributes at most two incoming edges, so this is generous.
	DefaultMaxEdges = 2_000_000
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// ParentRole identifies which parent slot contributed an edge.
type ParentRole int

const (
	// RoleSire tags an edge from the sire to the offspring.
	RoleSire ParentRole = iota

	// RoleDam tags an edge from the dam to the offspring.
	RoleDam

	// NumParentRoles is the total number of roles (for array sizing).
	NumParentRoles
)

// String returns the string representation of the ParentRole.
func (r ParentRole) String() string {
	switch r {
	case RoleSire:
		return "sire"
	case RoleDam:
		return "dam"
	default:
		return "unknown"
	}
}

// Edge represents a directed parent → offspring relationship.
//
// Each filled parent slot contributes its own edge, so an animal that is
// both sire and dam of the same offspring produces two parallel edges
// distinguished by Role.
type Edge struct {
	// FromID is the parent node ID.
	FromID string

	// ToID is the offspring node ID.
	ToID string

	// Role records which parent slot produced the edge.
	Role ParentRole
}

// Node represents an animal in the pedigree graph.
//
// SireID and DamID mirror the record's parent identifiers in the graph's
// id-space so lookups need no re-traversal. They are empty when the parent
// is unrecorded.
type Node struct {
	// ID is the unique node identifier (dense index or original ID,
	// depending on how the graph was built).
	ID string

	// SireID is the sire's node ID, or "" if the sire is unrecorded.
	SireID string

	// DamID is the dam's node ID, or "" if the dam is unrecorded.
	DamID string

	// Outgoing contains edges where this node is the parent.
	Outgoing []*Edge

	// Incoming contains edges where this node is the offspring.
	// At most two entries (one per parent slot).
	Incoming []*Edge
}

// KnownParents returns how many of the node's parents are recorded (0-2).
func (n *Node) KnownParents() int {
	return len(n.Incoming)
}

// GraphOptions configures Graph behavior and limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes the graph can hold.
	// Default: 1,000,000
	MaxNodes int

	// MaxEdges is the maximum number of edges the graph can hold.
	// Default: 2,000,000
	MaxEdges int
}

// DefaultGraphOptions returns sensible defaults for graph configuration.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// GraphOption is a functional option for configuring Graph.
type GraphOption func(*GraphOptions)

// WithMaxNodes sets the maximum number of nodes the graph can hold.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum number of edges the graph can hold.
func WithMaxEdges(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxEdges = n
	}
}

// Graph represents a pedigree as a directed graph.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. After Freeze()
//	is called, the graph can be safely read from multiple goroutines; no
//	query mutates it.
//
// Determinism:
//
//	Node insertion order is preserved (see NodeIDs), so every query that
//	iterates "in discovery order" is reproducible for a given pedigree.
type Graph struct {
	// Name identifies the source pedigree.
	Name string

	// nodes maps node ID to Node. Unexported to prevent direct access.
	nodes map[string]*Node

	// order holds node IDs in insertion order for deterministic iteration.
	order []string

	// edges contains all edges in the graph.
	edges []*Edge

	// edgesByRole stores edges grouped by parent role.
	edgesByRole [NumParentRoles][]*Edge

	// state is the current lifecycle state.
	state GraphState

	// options contains configuration.
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was
	// called. Zero if the graph has not been frozen.
	BuiltAtMilli int64
}

// NewGraph creates a new empty pedigree graph.
//
// Description:
//
//	Creates a graph in the Building state, ready to accept AddNode and
//	AddEdge calls. Most callers should use Builder.Build instead of
//	assembling a graph by hand.
//
// Inputs:
//
//	name - Pedigree name (used in diagnostics only).
//	opts - Optional configuration options.
func NewGraph(name string, opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		Name:    name,
		nodes:   make(map[string]*Node),
		order:   make([]string, 0),
		edges:   make([]*Edge, 0),
		state:   GraphStateBuilding,
		options: options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// Freeze transitions the graph to read-only mode.
//
// After calling Freeze(), AddNode and AddEdge return ErrGraphFrozen. The
// operation is irreversible; BuiltAtMilli is set to the current time.
func (g *Graph) Freeze() {
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AddNode adds an animal as a node in the graph.
//
// Inputs:
//
//	id - Node identifier. Must be non-empty and unique.
//	sireID - Sire's node ID, or "" when unrecorded.
//	damID - Dam's node ID, or "" when unrecorded.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrInvalidNode - id is empty
//	ErrDuplicateNode - Node with same ID already exists
//	ErrMaxNodesExceeded - Graph is at node capacity
func (g *Graph) AddNode(id, sireID, damID string) (*Node, error) {
	if g.state == GraphStateReadOnly {
		return nil, ErrGraphFrozen
	}

	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidNode)
	}

	if len(g.nodes) >= g.options.MaxNodes {
		return nil, ErrMaxNodesExceeded
	}

	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}

	node := &Node{
		ID:       id,
		SireID:   sireID,
		DamID:    damID,
		Outgoing: make([]*Edge, 0),
		Incoming: make([]*Edge, 0, 2),
	}

	g.nodes[id] = node
	g.order = append(g.order, id)

	return node, nil
}

// AddEdge creates a directed parent → offspring edge.
//
// Both nodes must already exist; pedigrees are topologically ordered, so
// the parent is always added before the offspring.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrSelfLoop - fromID == toID (an animal cannot be its own parent)
//	ErrNodeNotFound - Parent or offspring doesn't exist
//	ErrMaxEdgesExceeded - Graph is at edge capacity
func (g *Graph) AddEdge(fromID, toID string, role ParentRole) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}

	if fromID == toID {
		return fmt.Errorf("%w: %s", ErrSelfLoop, fromID)
	}

	if len(g.edges) >= g.options.MaxEdges {
		return ErrMaxEdgesExceeded
	}

	fromNode, fromOK := g.nodes[fromID]
	if !fromOK {
		return fmt.Errorf("%w: parent %s", ErrNodeNotFound, fromID)
	}

	toNode, toOK := g.nodes[toID]
	if !toOK {
		return fmt.Errorf("%w: offspring %s", ErrNodeNotFound, toID)
	}

	edge := &Edge{
		FromID: fromID,
		ToID:   toID,
		Role:   role,
	}

	g.edges = append(g.edges, edge)
	fromNode.Outgoing = append(fromNode.Outgoing, edge)
	toNode.Incoming = append(toNode.Incoming, edge)

	if role >= 0 && role < NumParentRoles {
		g.edgesByRole[role] = append(g.edgesByRole[role], edge)
	}

	return nil
}

// GetNode retrieves a node by its ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// NodeIDs returns all node IDs in insertion (pedigree) order.
//
// The returned slice is a copy; callers may modify it freely.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Edges returns a slice of all edges in the graph.
//
// Callers should NOT modify the returned slice.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Successors returns the direct offspring of id in edge-insertion order.
//
// Returns nil if the node is unknown. Each offspring appears once even if
// defensive duplicate edges exist.
func (g *Graph) Successors(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(node.Outgoing))
	seen := make(map[string]bool, len(node.Outgoing))
	for _, e := range node.Outgoing {
		if seen[e.ToID] {
			continue
		}
		seen[e.ToID] = true
		out = append(out, e.ToID)
	}
	return out
}

// Predecessors returns the direct parents of id in edge-insertion order.
//
// Returns nil if the node is unknown. At most two entries.
func (g *Graph) Predecessors(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	in := make([]string, 0, len(node.Incoming))
	seen := make(map[string]bool, len(node.Incoming))
	for _, e := range node.Incoming {
		if seen[e.FromID] {
			continue
		}
		seen[e.FromID] = true
		in = append(in, e.FromID)
	}
	return in
}

// Neighbors returns the union of parents and offspring of id, parents
// first, each node once. Returns nil if the node is unknown.
func (g *Graph) Neighbors(id string) []string {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(node.Incoming)+len(node.Outgoing))
	all := make([]string, 0, len(node.Incoming)+len(node.Outgoing))
	for _, e := range node.Incoming {
		if !seen[e.FromID] {
			seen[e.FromID] = true
			all = append(all, e.FromID)
		}
	}
	for _, e := range node.Outgoing {
		if !seen[e.ToID] {
			seen[e.ToID] = true
			all = append(all, e.ToID)
		}
	}
	return all
}

// InDegree returns the number of incoming edges of id, or 0 if unknown.
func (g *Graph) InDegree(id string) int {
	node, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(node.Incoming)
}

// OutDegree returns the number of outgoing edges of id, or 0 if unknown.
func (g *Graph) OutDegree(id string) int {
	node, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(node.Outgoing)
}

// Degree returns the total number of edges incident to id, or 0 if unknown.
func (g *Graph) Degree(id string) int {
	node, ok := g.nodes[id]
	if !ok {
		return 0
	}
	return len(node.Incoming) + len(node.Outgoing)
}

// HasEdge reports whether a directed edge fromID → toID exists.
func (g *Graph) HasEdge(fromID, toID string) bool {
	node, ok := g.nodes[fromID]
	if !ok {
		return false
	}
	for _, e := range node.Outgoing {
		if e.ToID == toID {
			return true
		}
	}
	return false
}

// IsAcyclic reports whether the graph contains no directed cycle.
//
// Description:
//
//	Runs Kahn's algorithm over a scratch in-degree table. A pedigree from
//	a well-formed source is always acyclic; this check exists so metrics
//	with an acyclicity precondition (dyad census, mean degree centrality)
//	can fail fast on corrupt input instead of reporting nonsense.
//
// Complexity: O(V + E). Thread Safety: safe on frozen graphs.
func (g *Graph) IsAcyclic() bool {
	indeg := make(map[string]int, len(g.nodes))
	for id, node := range g.nodes {
		indeg[id] = len(node.Incoming)
	}

	queue := make([]string, 0, len(g.nodes))
	for _, id := range g.order {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, e := range g.nodes[id].Outgoing {
			indeg[e.ToID]--
			if indeg[e.ToID] == 0 {
				queue = append(queue, e.ToID)
			}
		}
	}

	return visited == len(g.nodes)
}

// GraphStats contains statistics about the graph.
//
// Thread Safety: GraphStats is a value type with no internal state.
// Safe for concurrent use as long as the source Graph is frozen.
type GraphStats struct {
	// NodeCount is the total number of animals.
	NodeCount int

	// EdgeCount is the total number of parent → offspring edges.
	EdgeCount int

	// EdgesByRole maps each ParentRole to the count of edges of that role.
	EdgesByRole map[ParentRole]int

	// Founders is the number of nodes with no recorded parents.
	Founders int

	// MaxNodes is the configured maximum node capacity.
	MaxNodes int

	// MaxEdges is the configured maximum edge capacity.
	MaxEdges int

	// State is the current graph state.
	State GraphState

	// BuiltAtMilli is when Freeze() was called (0 if not frozen).
	BuiltAtMilli int64
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() GraphStats {
	edgesByRole := make(map[ParentRole]int)
	for i := 0; i < int(NumParentRoles); i++ {
		if count := len(g.edgesByRole[i]); count > 0 {
			edgesByRole[ParentRole(i)] = count
		}
	}

	founders := 0
	for _, node := range g.nodes {
		if len(node.Incoming) == 0 {
			founders++
		}
	}

	return GraphStats{
		NodeCount:    len(g.nodes),
		EdgeCount:    len(g.edges),
		EdgesByRole:  edgesByRole,
		Founders:     founders,
		MaxNodes:     g.options.MaxNodes,
		MaxEdges:     g.options.MaxEdges,
		State:        g.state,
		BuiltAtMilli: g.BuiltAtMilli,
	}
}
