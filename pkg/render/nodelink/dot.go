package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed adds the repository label and in/out degree to node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts g to a flat Graphviz DOT document. Nodes and edges are
// emitted in the graph's insertion order.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if g.NodeCount() > 0 {
		buf.WriteString("\n")
	}
	for _, id := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(g, id, opts.Detailed), ", "))
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

func fmtLabel(g *depgraph.Graph, id string, detailed bool) string {
	if !detailed {
		return id
	}
	return fmt.Sprintf("%s\nrepo: %s\nin: %d, out: %d", id, g.Repo(id), g.InDegree(id), g.OutDegree(id))
}

func fmtAttrs(g *depgraph.Graph, id string, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(g, id, detailed)),
		fmt.Sprintf("tooltip=%q", g.Repo(id)),
	}
	if g.Repo(id) == depgraph.LabelExternal {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}
