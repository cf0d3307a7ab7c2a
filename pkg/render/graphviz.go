package render

import (
	"bytes"
	"context"

	"github.com/goccy/go-graphviz"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// GraphvizRenderer renders in-process with the WebAssembly build of
// Graphviz. It needs no external programs.
type GraphvizRenderer struct{}

// Render parses dot and lays it out with the dot algorithm.
func (r *GraphvizRenderer) Render(ctx context.Context, dot []byte, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatSVG:
		gvFormat = graphviz.SVG
	default:
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeRenderFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeRenderFailed, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var _ Renderer = (*GraphvizRenderer)(nil)
