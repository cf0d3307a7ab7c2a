package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Edge is a directed connection from a dependency to its dependent.
type Edge struct {
	From string // Depended-upon node ID
	To   string // Dependent node ID
}

// Graph is a directed dependency graph with per-node repository labels.
//
// Nodes and edges are unique; re-adding either is a no-op. Iteration order of
// [Graph.Nodes] and [Graph.Edges] is insertion order, which makes rendering
// deterministic for a given declaration list.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	order    []string
	repos    map[string]string // nodeID -> repository label
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string // nodeID -> dependent IDs
	incoming map[string][]string // nodeID -> dependency IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		repos:    make(map[string]string),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node labeled with repo and reports whether it was created.
// Adding an existing ID leaves the graph, including the node's label,
// unchanged and returns false. Returns ErrInvalidNodeID for an empty ID.
func (g *Graph) AddNode(id, repo string) (bool, error) {
	if id == "" {
		return false, ErrInvalidNodeID
	}
	if _, exists := g.repos[id]; exists {
		return false, nil
	}
	g.repos[id] = repo
	g.order = append(g.order, id)
	return true, nil
}

// AddEdge adds the edge from→to and reports whether it was created.
// Adding an existing edge is a no-op returning false. Both endpoints must
// already exist. A self-loop (from == to) is a valid edge.
func (g *Graph) AddEdge(from, to string) (bool, error) {
	if !g.HasNode(from) {
		return false, ErrUnknownSourceNode
	}
	if !g.HasNode(to) {
		return false, ErrUnknownTargetNode
	}
	e := Edge{From: from, To: to}
	if _, exists := g.edgeSet[e]; exists {
		return false, nil
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return true, nil
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.repos[id]
	return ok
}

// HasEdge reports whether the edge from→to is in the graph.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeSet[Edge{From: from, To: to}]
	return ok
}

// Repo returns the repository label of id, or "" if id is not in the graph.
func (g *Graph) Repo(id string) string { return g.repos[id] }

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes that depend on id.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that id depends on.
// The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Sources returns nodes with no incoming edges (leaf dependencies),
// in insertion order.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Sinks returns nodes with no outgoing edges (top-level consumers),
// in insertion order.
func (g *Graph) Sinks() []string {
	var out []string
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Repos returns the distinct repository labels in first-encountered node order.
func (g *Graph) Repos() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range g.order {
		r := g.repos[id]
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// NodesInRepo returns the IDs labeled with repo, in insertion order.
func (g *Graph) NodesInRepo(repo string) []string {
	var out []string
	for _, id := range g.order {
		if g.repos[id] == repo {
			out = append(out, id)
		}
	}
	return out
}
