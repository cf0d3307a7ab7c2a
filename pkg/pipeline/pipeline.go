// Package pipeline runs the extract → build → render pipeline for a TheRock
// source tree.
//
// This package ties the stages together so the CLI (and tests) drive one
// entry point with consistent defaults and error handling.
//
// # Architecture
//
// The pipeline runs strictly in sequence:
//
//  1. Extract: evaluate the build description (or read a saved declarations file)
//  2. Report: count references to external dependencies
//  3. Label: load the repository map
//  4. Build: turn declarations into a dependency graph
//  5. Serialize: produce DOT, clustered by repository unless Plain is set
//  6. Write: save the DOT document
//  7. Render: produce the requested PNG and SVG images
//  8. Export: optionally save the graph as JSON
//
// Failures in extraction, repository-map loading, rendering, or export are
// recorded as [Diagnostic] values and the run continues with whatever it has
// (an extraction failure yields an empty graph). Only invalid options or an
// unwritable DOT file make [Runner.Execute] return an error.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.SourceDir = "/src/TheRock"
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range result.Diagnostics {
//	    logger.Warn(d.Message, "stage", d.Stage)
//	}
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
	"github.com/matzehuels/rockgraph/pkg/extract"
	"github.com/matzehuels/rockgraph/pkg/render"
	"github.com/matzehuels/rockgraph/pkg/repomap"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI
// =============================================================================

const (
	// DefaultDotPath is where the DOT document is written.
	DefaultDotPath = "the_rock_deps.dot"

	// DefaultPNGPath is where the PNG rendering is written.
	DefaultPNGPath = "the_rock_deps.png"

	// DefaultRepoMapPath is the repository map read from the working directory.
	DefaultRepoMapPath = repomap.DefaultFile

	// DefaultEngine is the rendering engine.
	DefaultEngine = render.EngineDot

	// DefaultExternalPrefix marks external dependency names.
	DefaultExternalPrefix = depgraph.DefaultExternalPrefix
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input: exactly one of these drives extraction. DeclarationsFile wins
	// when both are set.
	SourceDir        string
	DeclarationsFile string

	// Outputs. DotPath is always written; an empty PNGPath, SVGPath, or
	// JSONPath skips that output.
	DotPath  string
	PNGPath  string
	SVGPath  string
	JSONPath string

	// Graph construction
	IncludeExternal bool
	ExternalPrefix  string
	RepoMapPath     string

	// Serialization and rendering
	Plain    bool              // flat node-link DOT instead of repository clusters
	Detailed bool              // with Plain, add repository and degree to node labels
	Engine   string            // render.EngineDot or render.EngineBuiltin
	Palette  map[string]string // repository label → fill color overrides

	// Runtime options
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options matching the CLI defaults: DOT and PNG
// output in the working directory, externals excluded.
func DefaultOptions() Options {
	return Options{
		DotPath:        DefaultDotPath,
		PNGPath:        DefaultPNGPath,
		RepoMapPath:    DefaultRepoMapPath,
		Engine:         DefaultEngine,
		ExternalPrefix: DefaultExternalPrefix,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs.
	RunID string

	// Declarations are the extracted (project, dependencies) pairs.
	Declarations []extract.Declaration

	// Graph is the built dependency graph. It is never nil.
	Graph *depgraph.Graph

	// DOT is the serialized graph.
	DOT string

	// Outputs lists every file written, in write order.
	Outputs []Output

	// Diagnostics lists non-fatal failures, in the order they occurred.
	Diagnostics []Diagnostic

	// Stats contains timing and size information.
	Stats Stats
}

// Output is a file the pipeline wrote.
type Output struct {
	Kind string // "dot", "png", "svg", or "json"
	Path string
	Size int
}

// Stage names used in diagnostics.
const (
	StageExtract = "extract"
	StageRepoMap = "repo-map"
	StageRender  = "render"
	StageExport  = "export"
)

// Diagnostic is a failure the run recovered from.
type Diagnostic struct {
	Stage   string
	Code    rgerrors.Code
	Message string
	Err     error
}

func newDiagnostic(stage string, err error) Diagnostic {
	return Diagnostic{
		Stage:   stage,
		Code:    rgerrors.GetCode(err),
		Message: rgerrors.UserMessage(err),
		Err:     err,
	}
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Declarations int
	ExternalRefs int
	NodeCount    int
	EdgeCount    int
	Clusters     int
	ExtractTime  time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// HasDiagnostics reports whether any stage failed.
func (r *Result) HasDiagnostics() bool { return len(r.Diagnostics) > 0 }

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.SourceDir == "" && o.DeclarationsFile == "" {
		return rgerrors.New(rgerrors.ErrCodeInvalidInput, "a source directory or declarations file is required")
	}

	if o.DotPath == "" {
		o.DotPath = DefaultDotPath
	}
	if o.RepoMapPath == "" {
		o.RepoMapPath = DefaultRepoMapPath
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.ExternalPrefix == "" {
		o.ExternalPrefix = DefaultExternalPrefix
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := rgerrors.ValidateExternalPrefix(o.ExternalPrefix); err != nil {
		return err
	}
	for _, p := range []string{o.DotPath, o.PNGPath, o.SVGPath, o.JSONPath} {
		if err := rgerrors.ValidateOutputPath(p); err != nil {
			return err
		}
	}
	if _, err := render.NewRenderer(o.Engine); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// GraphOptions returns the graph builder options for a repository map.
func (o *Options) GraphOptions(repos repomap.Map) depgraph.Options {
	return depgraph.Options{
		IncludeExternal: o.IncludeExternal,
		ExternalPrefix:  o.ExternalPrefix,
		Repos:           repos,
	}
}

// Targets returns the image outputs in rendering order. Entries with an
// empty path are skipped by render.RenderAll.
func (o *Options) Targets() []render.Target {
	return []render.Target{
		{Format: render.FormatPNG, Path: o.PNGPath},
		{Format: render.FormatSVG, Path: o.SVGPath},
	}
}
