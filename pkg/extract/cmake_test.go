package extract

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// fakeEvaluator writes an executable shell script standing in for cmake.
func fakeEvaluator(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script evaluator requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-cmake")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// sourceTree creates a directory with a top-level CMakeLists.txt.
func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "CMakeLists.txt"), []byte("project(x)\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(new(strings.Builder), log.Options{Level: log.FatalLevel})
}

func TestCMakeSourceExtract(t *testing.T) {
	// Writes to the ROCKGRAPH_OUTPUT path passed on the command line.
	bin := fakeEvaluator(t, `for a in "$@"; do
  case "$a" in -DROCKGRAPH_OUTPUT=*) out="${a#-DROCKGRAPH_OUTPUT=}";; esac
done
printf 'core:\nlibfoo:core\napp:libfoo, therock-zlib\n' > "$out"`)

	src := &CMakeSource{Command: bin, WorkDir: filepath.Join(t.TempDir(), "work"), Logger: quietLogger()}
	got, err := src.Extract(context.Background(), sourceTree(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Extract() returned %d declarations, want 3", len(got))
	}
	if got[2].Project != "app" || len(got[2].Dependencies) != 2 {
		t.Errorf("unexpected declaration: %#v", got[2])
	}
}

func TestCMakeSourceRunsInBuildDir(t *testing.T) {
	// The last argument is the evaluator project; it must be materialized.
	bin := fakeEvaluator(t, `for a in "$@"; do last="$a"; done
test -f "$last/CMakeLists.txt" || exit 7
test "$(basename "$PWD")" = build || exit 8
printf 'core:\n' > therock_deps.txt`)

	src := &CMakeSource{Command: bin, WorkDir: filepath.Join(t.TempDir(), "work"), Logger: quietLogger()}
	got, err := src.Extract(context.Background(), sourceTree(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 || got[0].Project != "core" {
		t.Errorf("Extract() = %#v", got)
	}
}

func TestCMakeSourceIgnoresExistingWorkDirContents(t *testing.T) {
	work := filepath.Join(t.TempDir(), "work")
	stale := filepath.Join(work, "build", DefaultOutputName)
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("stale:\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Succeeds without writing any output.
	bin := fakeEvaluator(t, "exit 0")
	src := &CMakeSource{Command: bin, WorkDir: work, Logger: quietLogger()}

	got, err := src.Extract(context.Background(), sourceTree(t))
	if got != nil {
		t.Errorf("Extract() returned stale declarations: %#v", got)
	}
	if !rgerrors.Is(err, rgerrors.ErrCodeOutputMissing) {
		t.Errorf("Extract() error = %v, want %s", err, rgerrors.ErrCodeOutputMissing)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Errorf("existing work dir contents were removed: %v", err)
	}
}

func TestCMakeSourceKeepsSourceTree(t *testing.T) {
	tests := []struct {
		name    string
		command func(t *testing.T) string
		code    rgerrors.Code
	}{
		{"tool missing", func(*testing.T) string { return "rockgraph-no-such-cmake" }, rgerrors.ErrCodeToolNotFound},
		{"evaluator runs", func(t *testing.T) string { return fakeEvaluator(t, `printf 'core:\n' > therock_deps.txt`) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := sourceTree(t)
			keep := filepath.Join(dir, "precious.cmake")
			if err := os.WriteFile(keep, []byte("# keep\n"), 0o644); err != nil {
				t.Fatal(err)
			}

			// Work dir is the source tree itself.
			src := &CMakeSource{Command: tt.command(t), WorkDir: dir, Logger: quietLogger()}
			_, err := src.Extract(context.Background(), dir)
			if tt.code == "" && err != nil {
				t.Errorf("Extract() error = %v", err)
			}
			if tt.code != "" && !rgerrors.Is(err, tt.code) {
				t.Errorf("Extract() error = %v, want %s", err, tt.code)
			}

			for _, f := range []string{keep, filepath.Join(dir, "CMakeLists.txt")} {
				if _, err := os.Stat(f); err != nil {
					t.Errorf("source file %s was removed: %v", filepath.Base(f), err)
				}
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 2 {
				t.Errorf("source tree has %d entries after extraction, want 2", len(entries))
			}
		})
	}
}

func TestCMakeSourcePrivateRunDirs(t *testing.T) {
	record := filepath.Join(t.TempDir(), "dirs.log")
	bin := fakeEvaluator(t, `sleep 0.1
pwd >> '`+record+`'
printf 'core:\n' > therock_deps.txt`)
	work := filepath.Join(t.TempDir(), "work")
	source := sourceTree(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src := &CMakeSource{Command: bin, WorkDir: work, Logger: quietLogger()}
			_, errs[i] = src.Extract(context.Background(), source)
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d: Extract() error = %v", i, err)
		}
	}

	data, err := os.ReadFile(record)
	if err != nil {
		t.Fatal(err)
	}
	dirs := strings.Fields(string(data))
	if len(dirs) != 2 || dirs[0] == dirs[1] {
		t.Fatalf("runs used directories %v, want two distinct", dirs)
	}
	for _, d := range dirs {
		if !strings.Contains(d, "rockgraph-extract-") {
			t.Errorf("run dir %s is not a per-run directory", d)
		}
	}

	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("run directories left behind: %d", len(entries))
	}
}

func TestCMakeSourceDefaultWorkDirIsTemp(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	bin := fakeEvaluator(t, `printf 'core:\n' > therock_deps.txt`)

	src := NewCMakeSource(quietLogger())
	src.Command = bin
	for range 2 {
		if _, err := src.Extract(context.Background(), sourceTree(t)); err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
	}
	if src.WorkDir != "" {
		t.Errorf("WorkDir = %q, want empty (per-run temp dirs)", src.WorkDir)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "rockgraph-extract-") {
			t.Errorf("run dir %s left in temp dir", e.Name())
		}
	}
}

func TestCMakeSourceFailures(t *testing.T) {
	tests := []struct {
		name   string
		source func(t *testing.T) *CMakeSource
		dir    func(t *testing.T) string
		code   rgerrors.Code
	}{
		{
			name: "tool missing",
			source: func(t *testing.T) *CMakeSource {
				return &CMakeSource{Command: "rockgraph-no-such-cmake", WorkDir: filepath.Join(t.TempDir(), "w")}
			},
			dir:  sourceTree,
			code: rgerrors.ErrCodeToolNotFound,
		},
		{
			name: "non-zero exit",
			source: func(t *testing.T) *CMakeSource {
				return &CMakeSource{Command: fakeEvaluator(t, "echo boom >&2; exit 3"), WorkDir: filepath.Join(t.TempDir(), "w")}
			},
			dir:  sourceTree,
			code: rgerrors.ErrCodeEvaluatorFailed,
		},
		{
			name: "source without build files",
			source: func(t *testing.T) *CMakeSource {
				return &CMakeSource{Command: fakeEvaluator(t, "exit 0"), WorkDir: filepath.Join(t.TempDir(), "w")}
			},
			dir:  func(t *testing.T) string { return t.TempDir() },
			code: rgerrors.ErrCodeInvalidPath,
		},
		{
			name: "source missing",
			source: func(t *testing.T) *CMakeSource {
				return &CMakeSource{Command: fakeEvaluator(t, "exit 0"), WorkDir: filepath.Join(t.TempDir(), "w")}
			},
			dir:  func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			code: rgerrors.ErrCodeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.source(t)
			src.Logger = quietLogger()
			got, err := src.Extract(context.Background(), tt.dir(t))
			if got != nil {
				t.Errorf("Extract() = %#v, want nil", got)
			}
			if !rgerrors.Is(err, tt.code) {
				t.Errorf("Extract() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestCMakeSourceStderrInDiagnostic(t *testing.T) {
	bin := fakeEvaluator(t, "echo 'CMake Error: missing toolchain' >&2; exit 1")
	src := &CMakeSource{Command: bin, WorkDir: filepath.Join(t.TempDir(), "w"), Logger: quietLogger()}

	_, err := src.Extract(context.Background(), sourceTree(t))
	if err == nil || !strings.Contains(err.Error(), "missing toolchain") {
		t.Errorf("Extract() error = %v, want evaluator stderr included", err)
	}
}

func TestCMakeSourceArgs(t *testing.T) {
	src := &CMakeSource{Defines: map[string]string{"Z": "1", "A": "2"}}
	got := src.args("/src", "/w/build/out.txt", "/w/project")
	want := []string{
		"-DTHEROCK_SOURCE_DIR=/src",
		"-DROCKGRAPH_OUTPUT=/w/build/out.txt",
		"-DA=2",
		"-DZ=1",
		"/w/project",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("args() = %v, want %v", got, want)
	}
}

func TestCMakeSourceDefaults(t *testing.T) {
	t.Setenv(CommandEnv, "")
	src := NewCMakeSource(nil)
	if src.Command != DefaultCommand {
		t.Errorf("Command = %q, want %q", src.Command, DefaultCommand)
	}
	if src.OutputName != DefaultOutputName {
		t.Errorf("OutputName = %q, want %q", src.OutputName, DefaultOutputName)
	}
	if src.Defines["THEROCK_AMDGPU_FAMILIES"] != DefaultGPUFamilies {
		t.Errorf("Defines = %v", src.Defines)
	}
	if src.Logger == nil {
		t.Error("Logger should default to log.Default()")
	}

	t.Setenv(CommandEnv, "/opt/cmake/bin/cmake")
	if got := NewCMakeSource(nil).Command; got != "/opt/cmake/bin/cmake" {
		t.Errorf("Command with %s = %q", CommandEnv, got)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.txt")
	if err := os.WriteFile(path, []byte("core:\nlibfoo:core\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileSource(path).Extract(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Extract() returned %d declarations, want 2", len(got))
	}

	missing := NewFileSource(filepath.Join(t.TempDir(), "missing.txt"))
	got, err = missing.Extract(context.Background(), "")
	if got != nil || !rgerrors.Is(err, rgerrors.ErrCodeOutputMissing) {
		t.Errorf("Extract(missing) = %v, %v", got, err)
	}
}

func TestFileSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource("x").Extract(ctx, ""); err != context.Canceled {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}
