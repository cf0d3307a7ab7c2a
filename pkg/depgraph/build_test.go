package depgraph

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/rockgraph/pkg/extract"
)

func decl(project string, deps ...string) extract.Declaration {
	return extract.Declaration{Project: project, Dependencies: deps}
}

func scenario() []extract.Declaration {
	return []extract.Declaration{
		decl("core"),
		decl("libfoo", "core"),
		decl("therock-zlib"),
		decl("app", "libfoo", "therock-zlib"),
	}
}

func sortedNodes(g *Graph) []string {
	return slices.Sorted(slices.Values(g.Nodes()))
}

func sortedEdges(g *Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.From+"->"+e.To)
	}
	slices.Sort(out)
	return out
}

func TestBuildScenario(t *testing.T) {
	tests := []struct {
		name            string
		includeExternal bool
		wantNodes       []string
		wantEdges       []string
	}{
		{
			name:      "external excluded",
			wantNodes: []string{"app", "core", "libfoo"},
			wantEdges: []string{"core->libfoo", "libfoo->app"},
		},
		{
			name:            "external included",
			includeExternal: true,
			wantNodes:       []string{"app", "core", "libfoo", "therock-zlib"},
			wantEdges:       []string{"core->libfoo", "libfoo->app", "therock-zlib->app"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(scenario(), Options{IncludeExternal: tt.includeExternal})
			if got := sortedNodes(g); !slices.Equal(got, tt.wantNodes) {
				t.Errorf("nodes = %v, want %v", got, tt.wantNodes)
			}
			if got := sortedEdges(g); !slices.Equal(got, tt.wantEdges) {
				t.Errorf("edges = %v, want %v", got, tt.wantEdges)
			}
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, decls := range [][]extract.Declaration{nil, {}} {
		g := Build(decls, Options{})
		if g.NodeCount() != 0 || g.EdgeCount() != 0 {
			t.Errorf("Build(%v) = %d nodes, %d edges", decls, g.NodeCount(), g.EdgeCount())
		}
	}
}

func TestBuildDropsExternalEverywhere(t *testing.T) {
	g := Build([]extract.Declaration{decl("P", "therock-D1", "D2")}, Options{})

	if !g.HasEdge("D2", "P") {
		t.Error("missing edge D2 -> P")
	}
	if g.HasNode("therock-D1") {
		t.Error("external node therock-D1 must be dropped")
	}
	for _, e := range g.Edges() {
		if strings.HasPrefix(e.From, "therock-") || strings.HasPrefix(e.To, "therock-") {
			t.Errorf("edge %v references an external node", e)
		}
	}
}

func TestBuildDropsExternalProjects(t *testing.T) {
	// An external project's own dependency list contributes nothing.
	g := Build([]extract.Declaration{decl("therock-fmt", "core"), decl("core")}, Options{})
	if g.HasNode("therock-fmt") || g.EdgeCount() != 0 {
		t.Errorf("external project leaked: nodes=%v edges=%v", g.Nodes(), g.Edges())
	}
}

func TestBuildDirection(t *testing.T) {
	g := Build([]extract.Declaration{decl("app", "lib")}, Options{})
	if !g.HasEdge("lib", "app") {
		t.Error("edge must point from dependency to dependent")
	}
	if g.HasEdge("app", "lib") {
		t.Error("edge must never point from dependent to dependency")
	}
}

func TestBuildForwardReference(t *testing.T) {
	// hip is referenced before it is declared, and zstd is never declared.
	decls := []extract.Declaration{
		decl("rocBLAS", "hip", "zstd"),
		decl("hip", "llvm"),
	}
	g := Build(decls, Options{})
	for _, id := range []string{"rocBLAS", "hip", "zstd", "llvm"} {
		if !g.HasNode(id) {
			t.Errorf("missing node %s", id)
		}
	}
	if !g.HasEdge("hip", "rocBLAS") || !g.HasEdge("llvm", "hip") || !g.HasEdge("zstd", "rocBLAS") {
		t.Errorf("missing edges: %v", g.Edges())
	}
	// Phase 1 creates declared projects before any dependency-only node.
	if got := g.Nodes(); !slices.Equal(got[:2], []string{"rocBLAS", "hip"}) {
		t.Errorf("declared projects should come first, got %v", got)
	}
}

func TestBuildSelfDependency(t *testing.T) {
	g := Build([]extract.Declaration{decl("P", "P")}, Options{})
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}
	if !g.HasEdge("P", "P") {
		t.Error("self-loop P -> P missing")
	}
}

func TestBuildDuplicateDeclarationsAccumulate(t *testing.T) {
	decls := []extract.Declaration{
		decl("app", "a"),
		decl("app", "b", "a"),
	}
	g := Build(decls, Options{})
	want := []string{"a->app", "b->app"}
	if got := sortedEdges(g); !slices.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", g.NodeCount())
	}
}

func TestBuildSkipsEmptyProject(t *testing.T) {
	g := Build([]extract.Declaration{decl("", "core"), decl("core")}, Options{})
	if g.HasNode("") || g.EdgeCount() != 0 || g.NodeCount() != 1 {
		t.Errorf("nodes=%v edges=%v", g.Nodes(), g.Edges())
	}
}

func TestBuildLabels(t *testing.T) {
	repos := map[string]string{
		"libfoo":       "OrgA/repo1",
		"therock-zlib": "OrgZ/zlib",
	}
	g := Build(scenario(), Options{IncludeExternal: true, Repos: repos})

	tests := map[string]string{
		"libfoo":       "OrgA/repo1",
		"core":         LabelUnknown,
		"app":          LabelUnknown,
		"therock-zlib": LabelExternal, // the marker wins over the map
	}
	for id, want := range tests {
		if got := g.Repo(id); got != want {
			t.Errorf("Repo(%s) = %q, want %q", id, got, want)
		}
	}
}

func TestBuildCustomPrefix(t *testing.T) {
	decls := []extract.Declaration{decl("app", "ext.zlib", "therock-fmt")}
	g := Build(decls, Options{ExternalPrefix: "ext."})
	if g.HasNode("ext.zlib") {
		t.Error("ext.zlib should be filtered with prefix ext.")
	}
	if !g.HasNode("therock-fmt") || g.Repo("therock-fmt") != LabelUnknown {
		t.Error("therock-fmt is not external under prefix ext.")
	}
}

// randomDecls generates declarations over a small name pool so duplicates,
// forward references, externals and self-loops all occur.
func randomDecls(r *rand.Rand) []extract.Declaration {
	pool := []string{"a", "b", "c", "d", "e", "therock-x", "therock-y"}
	n := r.IntN(8)
	decls := make([]extract.Declaration, n)
	for i := range decls {
		d := extract.Declaration{Project: pool[r.IntN(len(pool))]}
		for range r.IntN(5) {
			d.Dependencies = append(d.Dependencies, pool[r.IntN(len(pool))])
		}
		decls[i] = d
	}
	return decls
}

func TestBuildProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := range 500 {
		decls := randomDecls(r)
		for _, include := range []bool{false, true} {
			opts := Options{IncludeExternal: include}
			g := Build(decls, opts)
			name := fmt.Sprintf("case %d include=%v %v", i, include, decls)

			// Every retained referenced name appears exactly once.
			want := map[string]bool{}
			for _, d := range decls {
				if !include && opts.IsExternal(d.Project) {
					continue
				}
				want[d.Project] = true
				for _, dep := range d.Dependencies {
					if include || !opts.IsExternal(dep) {
						want[dep] = true
					}
				}
			}
			nodes := g.Nodes()
			if len(nodes) != len(want) {
				t.Fatalf("%s: nodes %v, want set %v", name, nodes, want)
			}
			for _, id := range nodes {
				if !want[id] {
					t.Fatalf("%s: unexpected node %s", name, id)
				}
			}

			// Every retained declared dependency has its edge, pointing D -> P.
			for _, d := range decls {
				if !want[d.Project] {
					continue
				}
				for _, dep := range d.Dependencies {
					if want[dep] && !g.HasEdge(dep, d.Project) {
						t.Fatalf("%s: missing edge %s -> %s", name, dep, d.Project)
					}
				}
			}

			// Rebuilding yields the same node and edge sets.
			again := Build(decls, opts)
			if !slices.Equal(sortedNodes(g), sortedNodes(again)) || !slices.Equal(sortedEdges(g), sortedEdges(again)) {
				t.Fatalf("%s: rebuild differs", name)
			}
		}
	}
}

func TestOptionsLabel(t *testing.T) {
	opts := Options{Repos: map[string]string{"a": "OrgA/a", "blank": "", "fake": LabelExternal, "plain": LabelUnknown}}
	tests := map[string]string{
		"a":           "OrgA/a",
		"blank":       LabelUnknown,
		"fake":        LabelUnknown,
		"plain":       LabelUnknown,
		"b":           LabelUnknown,
		"therock-zip": LabelExternal,
	}
	for name, want := range tests {
		if got := opts.Label(name); got != want {
			t.Errorf("Label(%s) = %q, want %q", name, got, want)
		}
	}
}

func TestBuildReservedRepoLabelsStayUnmapped(t *testing.T) {
	g := Build([]extract.Declaration{{Project: "app", Dependencies: []string{"therock-zlib"}}},
		Options{IncludeExternal: true, Repos: map[string]string{"app": LabelExternal}})

	if got := g.NodesInRepo(LabelExternal); len(got) != 1 || got[0] != "therock-zlib" {
		t.Errorf("external container = %v, want only therock-zlib", got)
	}
	if g.Repo("app") != LabelUnknown {
		t.Errorf("Repo(app) = %q, want %q", g.Repo("app"), LabelUnknown)
	}
}
