package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/rockgraph/pkg/depgraph"
	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
	"github.com/matzehuels/rockgraph/pkg/extract"
	pkgio "github.com/matzehuels/rockgraph/pkg/io"
	"github.com/matzehuels/rockgraph/pkg/observability"
	"github.com/matzehuels/rockgraph/pkg/render"
	"github.com/matzehuels/rockgraph/pkg/render/cluster"
	"github.com/matzehuels/rockgraph/pkg/render/nodelink"
	"github.com/matzehuels/rockgraph/pkg/repomap"
)

// Runner executes the pipeline.
//
// Source and Renderer may be nil, in which case Execute picks them from the
// options: a FileSource when DeclarationsFile is set (else a CMakeSource),
// and the renderer named by Engine. Setting them replaces the defaults,
// which is how tests stub the external programs.
type Runner struct {
	Source   extract.Source
	Renderer render.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default();
// nil source and renderer are resolved per run.
func NewRunner(source extract.Source, renderer render.Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source:   source,
		Renderer: renderer,
		Logger:   logger,
	}
}

// Execute runs the complete pipeline.
//
// The returned error is non-nil only for invalid options, an unwritable DOT
// file, or cancellation. In the cancellation case the partial result is
// returned alongside ctx.Err().
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Extract
	decls := r.extract(ctx, opts, logger, result)
	if err := ctx.Err(); err != nil {
		result.Graph = depgraph.New()
		return result, err
	}
	result.Declarations = decls
	result.Stats.Declarations = len(decls)

	// Stage 2: Report external references
	result.Stats.ExternalRefs = extract.CountExternal(decls, opts.ExternalPrefix)
	logger.Info("external dependencies",
		"count", result.Stats.ExternalRefs,
		"included", opts.IncludeExternal)

	// Stage 3: Repository map
	repos := r.loadRepoMap(opts, logger, result)

	// Stage 4: Build
	buildStart := time.Now()
	g := depgraph.Build(decls, opts.GraphOptions(repos))
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.Clusters = cluster.Clusters(g)
	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), result.Stats.BuildTime)

	logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"repos", result.Stats.Clusters,
		"duration", result.Stats.BuildTime)

	// Stage 5: Serialize
	result.DOT = Serialize(g, opts)

	// Stage 6: Write DOT
	if err := pkgio.WriteFileAtomic(opts.DotPath, []byte(result.DOT)); err != nil {
		return result, fmt.Errorf("write DOT: %w", err)
	}
	result.addOutput("dot", opts.DotPath, len(result.DOT))
	logger.Info("wrote DOT", "path", opts.DotPath)

	// Stage 7: Render
	renderer, err := r.renderer(opts)
	if err != nil {
		return result, fmt.Errorf("invalid options: %w", err)
	}
	r.renderImages(ctx, renderer, opts, logger, result)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	// Stage 8: Export
	if opts.JSONPath != "" {
		r.exportJSON(g, opts, logger, result)
	}

	return result, nil
}

func (r *Runner) exportJSON(g *depgraph.Graph, opts Options, logger *log.Logger, result *Result) {
	if err := pkgio.ExportJSON(g, opts.JSONPath); err != nil {
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StageExport, err))
		logger.Warn("JSON export failed", "path", opts.JSONPath, "error", err)
		return
	}
	var size int
	if info, err := os.Stat(opts.JSONPath); err == nil {
		size = int(info.Size())
	}
	result.addOutput("json", opts.JSONPath, size)
	logger.Info("wrote JSON", "path", opts.JSONPath)
}

// Serialize produces the DOT document for g according to opts.Plain.
func Serialize(g *depgraph.Graph, opts Options) string {
	if opts.Plain {
		return nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	}
	return cluster.ToDOT(g, cluster.Options{Palette: cluster.MergePalette(opts.Palette)})
}

// extract runs the source. Failures become a diagnostic and an empty list.
func (r *Runner) extract(ctx context.Context, opts Options, logger *log.Logger, result *Result) []extract.Declaration {
	source := r.source(opts)
	logger.Info("extracting declarations", "source", source.Name(), "dir", opts.SourceDir)
	observability.Pipeline().OnExtractStart(ctx, source.Name(), opts.SourceDir)

	start := time.Now()
	decls, err := source.Extract(ctx, opts.SourceDir)
	result.Stats.ExtractTime = time.Since(start)
	observability.Pipeline().OnExtractComplete(ctx, source.Name(), len(decls), result.Stats.ExtractTime, err)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StageExtract, err))
		logger.Error("extraction failed; continuing with an empty graph", "error", err)
		return nil
	}

	logger.Info("extracted declarations",
		"count", len(decls),
		"duration", result.Stats.ExtractTime)
	return decls
}

// loadRepoMap loads the repository map, recording decode failures and
// malformed-entry warnings as diagnostics.
func (r *Runner) loadRepoMap(opts Options, logger *log.Logger, result *Result) repomap.Map {
	warn := func(format string, args ...any) {
		err := rgerrors.New(rgerrors.ErrCodeInvalidManifest, format, args...)
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StageRepoMap, err))
		logger.Warn(err.Message, "path", opts.RepoMapPath)
	}
	repos, err := repomap.Load(opts.RepoMapPath, warn)
	if err != nil {
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StageRepoMap, err))
		logger.Warn("repository map unusable; all projects labeled unknown", "path", opts.RepoMapPath, "error", err)
		return repos
	}
	if len(repos) == 0 {
		logger.Debug("no repository map entries", "path", opts.RepoMapPath)
	} else {
		logger.Debug("loaded repository map", "path", opts.RepoMapPath, "projects", len(repos))
	}
	return repos
}

// renderImages renders and writes every requested image. Each format
// succeeds or fails on its own.
func (r *Runner) renderImages(ctx context.Context, renderer render.Renderer, opts Options, logger *log.Logger, result *Result) {
	var formats []string
	for _, t := range opts.Targets() {
		if t.Path != "" {
			formats = append(formats, string(t.Format))
		}
	}
	if len(formats) == 0 {
		return
	}

	observability.Pipeline().OnRenderStart(ctx, formats)
	start := time.Now()

	var firstErr error
	fail := func(t render.Target, err error) {
		if firstErr == nil {
			firstErr = err
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		result.Diagnostics = append(result.Diagnostics, newDiagnostic(StageRender, err))
		logger.Warn("render failed", "format", t.Format, "path", t.Path, "error", err)
	}

	for _, out := range render.RenderAll(ctx, renderer, []byte(result.DOT), opts.Targets(), fail) {
		if err := pkgio.WriteFileAtomic(out.Path, out.Data); err != nil {
			fail(out.Target, err)
			continue
		}
		result.addOutput(string(out.Format), out.Path, len(out.Data))
		logger.Info("wrote image", "format", out.Format, "path", out.Path)
	}

	result.Stats.RenderTime = time.Since(start)
	observability.Pipeline().OnRenderComplete(ctx, formats, result.Stats.RenderTime, firstErr)
}

func (r *Runner) source(opts Options) extract.Source {
	if r.Source != nil {
		return r.Source
	}
	if opts.DeclarationsFile != "" {
		return extract.NewFileSource(opts.DeclarationsFile)
	}
	return extract.NewCMakeSource(opts.Logger)
}

func (r *Runner) renderer(opts Options) (render.Renderer, error) {
	if r.Renderer != nil {
		return r.Renderer, nil
	}
	return render.NewRenderer(opts.Engine)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (res *Result) addOutput(kind, path string, size int) {
	res.Outputs = append(res.Outputs, Output{Kind: kind, Path: path, Size: size})
}
