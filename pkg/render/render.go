package render

import (
	"context"
	"fmt"
	"slices"
	"strings"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// Format is an image output format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Formats lists the supported formats in rendering order.
var Formats = []Format{FormatPNG, FormatSVG}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", rgerrors.New(rgerrors.ErrCodeInvalidFormat, "unsupported format %q (valid: png, svg)", s)
	}
	return f, nil
}

// Engine names a [Renderer] implementation.
const (
	EngineDot     = "dot"
	EngineBuiltin = "builtin"
)

// Engines lists the valid engine names.
var Engines = []string{EngineDot, EngineBuiltin}

// Renderer converts a DOT document into an image.
type Renderer interface {
	Render(ctx context.Context, dot []byte, format Format) ([]byte, error)
}

// NewRenderer returns the renderer for engine. An empty name selects the
// external dot engine.
func NewRenderer(engine string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineDot:
		return NewExecRenderer(), nil
	case EngineBuiltin:
		return &GraphvizRenderer{}, nil
	default:
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidEngine,
			"unknown engine %q (valid: %s)", engine, strings.Join(Engines, ", "))
	}
}

// Target is one requested output file.
type Target struct {
	Format Format
	Path   string
}

func (t Target) String() string { return fmt.Sprintf("%s (%s)", t.Path, t.Format) }

// Output is a successfully rendered target.
type Output struct {
	Target
	Data []byte
}

// RenderAll renders every target with a non-empty path, in order. Failures
// are passed to onErr (which may be nil) and the remaining targets are
// still attempted. A canceled context stops before the next target.
func RenderAll(ctx context.Context, r Renderer, dot []byte, targets []Target, onErr func(Target, error)) []Output {
	var out []Output
	for _, t := range targets {
		if t.Path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			if onErr != nil {
				onErr(t, err)
			}
			continue
		}
		data, err := r.Render(ctx, dot, t.Format)
		if err != nil {
			if onErr != nil {
				onErr(t, err)
			}
			continue
		}
		out = append(out, Output{Target: t, Data: data})
	}
	return out
}
