// Package render turns DOT documents into images.
//
// # Overview
//
// DOT text is produced by the [cluster] and [nodelink] subpackages. This
// package hands it to a Graphviz engine and returns the image bytes:
//
//	r, err := render.NewRenderer(render.EngineDot)
//	png, err := r.Render(ctx, []byte(dot), render.FormatPNG)
//
// # Engines
//
// Two [Renderer] implementations are available:
//
//   - [ExecRenderer] ("dot"): runs the external dot program with the
//     document on stdin. The program name can be overridden with the
//     RGRAPH_DOT environment variable.
//   - [GraphvizRenderer] ("builtin"): renders in-process through
//     [github.com/goccy/go-graphviz], for hosts without Graphviz installed.
//
// # Multiple Outputs
//
// [RenderAll] renders a list of targets one after another. A target that
// fails is reported through a callback and never stops the remaining ones:
//
//	out := render.RenderAll(ctx, r, dot, targets, func(t render.Target, err error) {
//	    logger.Warn("render failed", "format", t.Format, "error", err)
//	})
//
// [cluster]: github.com/matzehuels/rockgraph/pkg/render/cluster
// [nodelink]: github.com/matzehuels/rockgraph/pkg/render/nodelink
package render
