package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
	"github.com/matzehuels/rockgraph/pkg/observability"
)

const (
	// DefaultDotCommand is the Graphviz layout program.
	DefaultDotCommand = "dot"
	// DotEnv overrides the dot program name or path.
	DotEnv = "RGRAPH_DOT"
)

// ExecRenderer renders by running the external dot program.
type ExecRenderer struct {
	// Command is the program name or path. Empty means DefaultDotCommand.
	Command string
}

// NewExecRenderer returns a renderer for the dot program named by
// RGRAPH_DOT, or DefaultDotCommand.
func NewExecRenderer() *ExecRenderer {
	cmd := os.Getenv(DotEnv)
	if cmd == "" {
		cmd = DefaultDotCommand
	}
	return &ExecRenderer{Command: cmd}
}

// Render runs "dot -T<format>" with the document on stdin and returns its
// stdout.
func (r *ExecRenderer) Render(ctx context.Context, dot []byte, format Format) ([]byte, error) {
	name := r.Command
	if name == "" {
		name = DefaultDotCommand
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeToolNotFound, err,
			"%s not found on PATH; install Graphviz or use --engine builtin", name)
	}

	args := []string{"-T" + string(format)}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(dot)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	observability.Process().OnProcessStart(ctx, name, args)
	start := time.Now()
	err = cmd.Run()
	observability.Process().OnProcessExit(ctx, name, time.Since(start), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, rgerrors.Wrap(rgerrors.ErrCodeRenderFailed, err,
			"%s -T%s: %s", name, format, strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}

var _ Renderer = (*ExecRenderer)(nil)
