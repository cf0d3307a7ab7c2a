// Package cluster serializes a dependency graph to Graphviz DOT with one
// colored container per owning repository.
//
// # Output
//
// The document declares a top-to-bottom layout (rankdir=TB), then emits one
// "cluster_<i>" subgraph per repository label in the order labels are first
// met while iterating nodes, then every edge once, outside any container:
//
//	digraph G {
//	  rankdir=TB;
//	  ...
//	  subgraph "cluster_0" {
//	    label="ROCm/rocm-libraries";
//	    style=filled;
//	    fillcolor="#cde4f7";
//	    "rocBLAS";
//	  }
//
//	  "hip-clr" -> "rocBLAS";
//	}
//
// Edges routinely cross container boundaries. This package computes no
// layout; the Graphviz engine does that from the layout directive.
package cluster

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
)

// Options configures DOT generation.
type Options struct {
	// Palette adds or overrides repository fill colors on top of DefaultPalette.
	Palette map[string]string
}

// ToDOT converts g to a clustered DOT document. An empty graph yields a
// valid document with no containers and no edges.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")

	for i, repo := range g.Repos() {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", repo)
		buf.WriteString("    style=filled;\n")
		fmt.Fprintf(&buf, "    fillcolor=%q;\n", ColorFor(repo, opts.Palette))
		buf.WriteString("    color=\"#888888\";\n")
		for _, id := range g.NodesInRepo(repo) {
			fmt.Fprintf(&buf, "    %q;\n", id)
		}
		buf.WriteString("  }\n")
	}

	if g.EdgeCount() > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Clusters returns the number of containers ToDOT emits for g.
func Clusters(g *depgraph.Graph) int { return len(g.Repos()) }
