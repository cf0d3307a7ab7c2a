package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
	"github.com/matzehuels/rockgraph/pkg/pipeline"
	"github.com/matzehuels/rockgraph/pkg/render"
)

// graphCommand creates the graph command: extract, build, and render.
func (c *CLI) graphCommand() *cobra.Command {
	var src sourceFlags
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "graph [source-dir]",
		Short: "Build and render the sub-project dependency graph",
		Long: `Build and render the sub-project dependency graph of a TheRock checkout.

The graph command evaluates the source tree's build description with CMake,
collects every declared sub-project and its build and runtime dependencies,
and writes a DOT document with one colored container per repository. The
DOT file is then rendered to PNG (and optionally SVG) with Graphviz.

Projects are assigned to repositories through a repository map (repo_map.yaml
by default; .toml and .json also work). Names starting with the external
prefix (therock-) are third-party dependencies and are left out unless
--include-external is given.

Failures while extracting, loading the repository map, or rendering are
reported and the run continues; only invalid flags or an unwritable DOT file
end with a non-zero exit status.`,
		Example: `  # Default: the_rock_deps.dot and the_rock_deps.png in the current directory
  rockgraph graph ~/src/TheRock

  # Include external dependencies and also write SVG and JSON
  rockgraph graph ~/src/TheRock --include-external --svg deps.svg --json deps.json

  # Re-render from a saved declarations file without cmake or Graphviz
  rockgraph graph --declarations therock_deps.txt --engine builtin

  # DOT only, flat layout
  rockgraph graph ~/src/TheRock --png "" --plain`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.SourceDir = args[0]
			}
			if opts.SourceDir == "" && opts.DeclarationsFile == "" {
				return rgerrors.New(rgerrors.ErrCodeInvalidInput, "a source directory or --declarations file is required")
			}
			opts.Logger = c.Logger
			return c.runGraph(cmd.Context(), opts, src)
		},
	}

	// Output flags
	cmd.Flags().StringVar(&opts.DotPath, "dot", opts.DotPath, "DOT output file")
	cmd.Flags().StringVar(&opts.PNGPath, "png", opts.PNGPath, `PNG output file ("" to skip)`)
	cmd.Flags().StringVar(&opts.SVGPath, "svg", opts.SVGPath, "SVG output file (skipped when empty)")
	cmd.Flags().StringVar(&opts.JSONPath, "json", opts.JSONPath, "JSON graph export (skipped when empty)")

	// Graph flags
	cmd.Flags().BoolVar(&opts.IncludeExternal, "include-external", opts.IncludeExternal, "keep dependencies carrying the external prefix")
	cmd.Flags().StringVar(&opts.ExternalPrefix, "external-prefix", opts.ExternalPrefix, "name prefix marking external dependencies")
	cmd.Flags().StringVar(&opts.RepoMapPath, "repo-map", opts.RepoMapPath, "project → repository map (yaml, toml, or json)")
	cmd.Flags().StringVar(&opts.DeclarationsFile, "declarations", "", "read declarations from a file instead of running cmake")

	// Render flags
	cmd.Flags().BoolVar(&opts.Plain, "plain", opts.Plain, "flat node-link DOT without repository containers")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", opts.Detailed, "with --plain, show repository and degree in node labels")
	cmd.Flags().StringVar(&opts.Engine, "engine", opts.Engine, "render engine: "+strings.Join(render.Engines, ", "))
	cmd.Flags().StringToStringVar(&opts.Palette, "color", nil, "repository fill colors (REPO=COLOR)")

	src.register(cmd)
	return cmd
}

// runGraph executes the pipeline and reports its outcome.
func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, src sourceFlags) error {
	ctx = withLogger(ctx, c.Logger)
	runner := c.newRunner(src, opts.DeclarationsFile)
	prog := newProgress(loggerFromContext(ctx))

	var spinner *Spinner
	if !c.verbose() && opts.DeclarationsFile == "" {
		spinner = newSpinnerWithContext(ctx, "Evaluating build description...")
		spinner.Start()
	}
	result, err := runner.Execute(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		if result != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if rgerrors.IsFatal(err) {
			printError(c.Out, "%s", rgerrors.UserMessage(err))
		}
		return err
	}

	prog.done(fmt.Sprintf("Built graph with %d nodes", result.Stats.NodeCount))
	c.printResult(result)
	return nil
}

// printResult writes the run summary to c.Out.
func (c *CLI) printResult(result *pipeline.Result) {
	w := c.Out
	s := result.Stats
	printStats(w, s.NodeCount, s.EdgeCount, s.Clusters)
	if s.ExternalRefs > 0 {
		printDetail(w, "%d external dependency references", s.ExternalRefs)
	}

	for _, d := range result.Diagnostics {
		printWarning(w, "%s: %s", d.Stage, diagnosticText(d))
	}

	if len(result.Outputs) == 0 {
		return
	}
	if result.HasDiagnostics() {
		printInfo(w, "Wrote %d file(s) with %d problem(s)", len(result.Outputs), len(result.Diagnostics))
	} else {
		printSuccess(w, "Wrote %d file(s)", len(result.Outputs))
	}
	for _, o := range result.Outputs {
		printFile(w, o.Path)
	}
}

// diagnosticText renders a diagnostic with its underlying cause, if any.
func diagnosticText(d pipeline.Diagnostic) string {
	var e *rgerrors.Error
	if d.Err != nil && errors.As(d.Err, &e) && e.Cause != nil {
		return fmt.Sprintf("%s (%v)", d.Message, e.Cause)
	}
	return d.Message
}
