package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
)

// ReadJSON decodes a JSON graph from r.
//
// ReadJSON returns an error if the JSON is malformed, a node has an empty
// or duplicate id, or an edge references an unknown node. Errors are
// wrapped with the offending node or edge; use errors.Is with the depgraph
// sentinel errors to inspect them. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*depgraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := depgraph.New()
	for _, n := range data.Nodes {
		repo := n.Repo
		if repo == "" {
			repo = depgraph.LabelUnknown
		}
		added, err := g.AddNode(n.ID, repo)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		if !added {
			return nil, fmt.Errorf("node %q: duplicate id", n.ID)
		}
	}
	for _, e := range data.Edges {
		if _, err := g.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads the JSON graph file at path.
func ImportJSON(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
