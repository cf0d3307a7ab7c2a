package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string `json:"id"`
	Repo string `json:"repo,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes g as JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	nodes, edges := g.Nodes(), g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	for i, id := range nodes {
		out.Nodes[i] = node{ID: id, Repo: g.Repo(id)}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path atomically.
func ExportJSON(g *depgraph.Graph, path string) error {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return err
	}
	return WriteFileAtomic(path, buf.Bytes())
}
