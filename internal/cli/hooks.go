package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rockgraph/pkg/observability"
)

// logHooks traces pipeline stages and external programs at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnExtractStart(_ context.Context, source, sourceDir string) {
	h.logger.Debug("extract start", "source", source, "dir", sourceDir)
}

func (h *logHooks) OnExtractComplete(_ context.Context, source string, declarations int, d time.Duration, err error) {
	h.logger.Debug("extract done", "source", source, "declarations", declarations, "duration", d, "error", err)
}

func (h *logHooks) OnBuildComplete(_ context.Context, nodes, edges int, d time.Duration) {
	h.logger.Debug("build done", "nodes", nodes, "edges", edges, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", strings.Join(formats, ","))
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", strings.Join(formats, ","), "duration", d, "error", err)
}

func (h *logHooks) OnProcessStart(_ context.Context, name string, args []string) {
	h.logger.Debug("exec", "cmd", name, "args", strings.Join(args, " "))
}

func (h *logHooks) OnProcessExit(_ context.Context, name string, d time.Duration, err error) {
	h.logger.Debug("exit", "cmd", name, "duration", d, "error", err)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.ProcessHooks  = (*logHooks)(nil)
)
