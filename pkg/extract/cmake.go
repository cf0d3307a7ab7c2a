package extract

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
	"github.com/matzehuels/rockgraph/pkg/observability"
)

const (
	// DefaultCommand is the evaluator binary looked up on PATH.
	DefaultCommand = "cmake"

	// DefaultOutputName is the file the evaluator project writes declarations to.
	DefaultOutputName = "therock_deps.txt"

	// DefaultGPUFamilies is passed as THEROCK_AMDGPU_FAMILIES so the tree
	// configures without probing hardware.
	DefaultGPUFamilies = "gfx1100"

	// CommandEnv overrides the evaluator binary when set.
	CommandEnv = "RGRAPH_CMAKE"
)

//go:embed cmake/CMakeLists.txt
var embeddedProject []byte

// CMakeSource evaluates a source tree with CMake.
//
// Each Extract call creates a private run directory with os.MkdirTemp, runs
// the evaluator in <run>/build, and removes the run directory afterwards.
// Concurrent runs never share output, and no pre-existing directory is ever
// deleted.
type CMakeSource struct {
	// Command is the evaluator binary (default: $RGRAPH_CMAKE or "cmake").
	Command string
	// WorkDir is the parent of the per-run directories. It is created when
	// missing and never removed (default: os.TempDir()).
	WorkDir string
	// ProjectDir is the CMake project that records declarations. When empty,
	// the embedded project is written to <run>/project.
	ProjectDir string
	// Defines are extra -D cache entries. THEROCK_SOURCE_DIR and
	// ROCKGRAPH_OUTPUT are always set by Extract.
	Defines map[string]string
	// OutputName is the output file name inside the build directory.
	OutputName string
	// Logger receives evaluator output at debug level (default: log.Default()).
	Logger *log.Logger
}

// NewCMakeSource returns a CMakeSource with defaults applied.
func NewCMakeSource(logger *log.Logger) *CMakeSource {
	s := &CMakeSource{Logger: logger}
	s.setDefaults()
	return s
}

func (s *CMakeSource) setDefaults() {
	if s.Command == "" {
		s.Command = DefaultCommand
		if env := os.Getenv(CommandEnv); env != "" {
			s.Command = env
		}
	}
	if s.OutputName == "" {
		s.OutputName = DefaultOutputName
	}
	if s.Defines == nil {
		s.Defines = map[string]string{"THEROCK_AMDGPU_FAMILIES": DefaultGPUFamilies}
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
}

// Name returns "cmake".
func (s *CMakeSource) Name() string { return "cmake" }

// Extract runs the evaluator against sourceDir and parses its output.
func (s *CMakeSource) Extract(ctx context.Context, sourceDir string) ([]Declaration, error) {
	s.setDefaults()

	absSource, err := checkSourceTree(sourceDir)
	if err != nil {
		return nil, err
	}

	bin, err := exec.LookPath(s.Command)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeToolNotFound, err, "%s not found on PATH", s.Command)
	}

	runDir, err := s.makeRunDir()
	if err != nil {
		return nil, err
	}
	defer s.removeRunDir(runDir)

	buildDir, projectDir, err := s.layoutRunDir(runDir)
	if err != nil {
		return nil, err
	}
	outPath := filepath.Join(buildDir, s.OutputName)

	args := s.args(absSource, outPath, projectDir)
	s.Logger.Debug("running evaluator", "cmd", bin, "args", strings.Join(args, " "), "dir", buildDir)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = buildDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	observability.Process().OnProcessStart(ctx, s.Command, args)
	start := time.Now()
	err = cmd.Run()
	observability.Process().OnProcessExit(ctx, s.Command, time.Since(start), err)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, rgerrors.Wrap(rgerrors.ErrCodeEvaluatorFailed, err,
			"%s configuration failed: %s", s.Command, strings.TrimSpace(stderr.String()))
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		s.Logger.Debug("evaluator output", "stdout", out)
	}

	return readOutput(outPath)
}

// args builds the evaluator command line. Defines are sorted so the
// invocation is reproducible.
func (s *CMakeSource) args(absSource, outPath, projectDir string) []string {
	args := []string{
		"-DTHEROCK_SOURCE_DIR=" + absSource,
		"-DROCKGRAPH_OUTPUT=" + outPath,
	}
	for _, k := range slices.Sorted(maps.Keys(s.Defines)) {
		args = append(args, fmt.Sprintf("-D%s=%s", k, s.Defines[k]))
	}
	return append(args, projectDir)
}

// runDirPattern names the per-run directories created under WorkDir.
const runDirPattern = "rockgraph-extract-*"

// makeRunDir creates a fresh, empty directory for one evaluator run.
func (s *CMakeSource) makeRunDir() (string, error) {
	if s.WorkDir != "" {
		if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
			return "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "create work dir %s", s.WorkDir)
		}
	}
	dir, err := os.MkdirTemp(s.WorkDir, runDirPattern)
	if err != nil {
		return "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "create run dir in %q", s.WorkDir)
	}
	return dir, nil
}

// removeRunDir deletes a directory created by makeRunDir.
func (s *CMakeSource) removeRunDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.Logger.Warn("could not remove evaluator run dir", "dir", dir, "error", err)
	}
}

// layoutRunDir creates build/ and, when needed, the embedded project inside
// runDir. It returns the build and project directories.
func (s *CMakeSource) layoutRunDir(runDir string) (string, string, error) {
	buildDir := filepath.Join(runDir, "build")
	if err := os.Mkdir(buildDir, 0o755); err != nil {
		return "", "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "create build dir %s", buildDir)
	}

	if s.ProjectDir != "" {
		abs, err := filepath.Abs(s.ProjectDir)
		if err != nil {
			return "", "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "resolve project dir %s", s.ProjectDir)
		}
		return buildDir, abs, nil
	}

	projectDir := filepath.Join(runDir, "project")
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		return "", "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "create project dir %s", projectDir)
	}
	if err := os.WriteFile(filepath.Join(projectDir, "CMakeLists.txt"), embeddedProject, 0o644); err != nil {
		return "", "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "write evaluator project")
	}
	return buildDir, projectDir, nil
}

// checkSourceTree verifies that dir is a directory with a top-level
// CMakeLists.txt and returns its absolute path.
func checkSourceTree(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", rgerrors.New(rgerrors.ErrCodeInvalidPath, "source tree %s is not a directory", dir)
	}
	if _, err := os.Stat(filepath.Join(abs, "CMakeLists.txt")); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", rgerrors.New(rgerrors.ErrCodeInvalidPath, "no CMakeLists.txt in %s", dir)
		}
		return "", rgerrors.Wrap(rgerrors.ErrCodeInvalidPath, err, "stat %s", dir)
	}
	return abs, nil
}
