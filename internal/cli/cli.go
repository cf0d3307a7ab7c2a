package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rockgraph/pkg/buildinfo"
	"github.com/matzehuels/rockgraph/pkg/observability"
	"github.com/matzehuels/rockgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "rockgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives human-facing status lines; logs go to Logger.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level. At debug level it also registers
// hooks that log every pipeline stage and external program.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := &logHooks{logger: c.Logger}
		observability.SetPipelineHooks(hooks)
		observability.SetProcessHooks(hooks)
	}
}

// verbose reports whether debug logging is enabled.
func (c *CLI) verbose() bool {
	return c.Logger.GetLevel() <= log.DebugLevel
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Rockgraph maps the dependency graph of a TheRock source tree",
		Long: `Rockgraph evaluates the build description of a TheRock checkout, extracts every
sub-project and its declared dependencies, and draws the result as a graph
with one colored box per owning repository.`,
		Version:      buildinfo.Resolve().Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Extraction runs through
// the CMake source configured by flags unless a declarations file is given.
func (c *CLI) newRunner(src sourceFlags, declarationsFile string) *pipeline.Runner {
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	if declarationsFile == "" {
		runner.Source = src.cmakeSource(c.Logger)
	}
	return runner
}
