// Package pkg provides the libraries behind rockgraph, which maps the
// sub-project dependency graph of a TheRock source tree.
//
// # Overview
//
// The data flows through the packages in one direction:
//
//	TheRock checkout
//	         ↓
//	    [extract] (evaluate the build description, parse declarations)
//	         ↓
//	    [repomap] (project → repository labels)
//	         ↓
//	    [depgraph] (graph of dependency → dependent edges)
//	         ↓
//	    [render/cluster] or [render/nodelink] (DOT text)
//	         ↓
//	    [render] (PNG/SVG through Graphviz)
//
// [pipeline] runs these stages in order and collects non-fatal failures.
// [io] exports the graph as JSON and writes every artifact atomically.
// [errors] defines the coded errors shared by all stages, and
// [observability] lets the CLI trace stages and external programs.
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.SourceDir = "/src/TheRock"
//	result, err := runner.Execute(ctx, opts)
//
// [extract]: github.com/matzehuels/rockgraph/pkg/extract
// [repomap]: github.com/matzehuels/rockgraph/pkg/repomap
// [depgraph]: github.com/matzehuels/rockgraph/pkg/depgraph
// [render/cluster]: github.com/matzehuels/rockgraph/pkg/render/cluster
// [render/nodelink]: github.com/matzehuels/rockgraph/pkg/render/nodelink
// [render]: github.com/matzehuels/rockgraph/pkg/render
// [pipeline]: github.com/matzehuels/rockgraph/pkg/pipeline
// [io]: github.com/matzehuels/rockgraph/pkg/io
// [errors]: github.com/matzehuels/rockgraph/pkg/errors
// [observability]: github.com/matzehuels/rockgraph/pkg/observability
package pkg
