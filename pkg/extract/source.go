package extract

import (
	"context"
	"errors"
	"io/fs"
	"os"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// Source produces the declarations of a source tree.
//
// Implementations return either the complete declaration list or a nil slice
// with a coded error. They must not panic on missing tools or bad output.
type Source interface {
	// Name identifies the source in logs and diagnostics (e.g., "cmake").
	Name() string
	// Extract evaluates the tree rooted at sourceDir.
	Extract(ctx context.Context, sourceDir string) ([]Declaration, error)
}

// FileSource reads declarations saved by a previous run instead of
// invoking the evaluator. The sourceDir argument to Extract is ignored.
type FileSource struct {
	Path string
}

// NewFileSource returns a source backed by the declarations file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns "file".
func (s *FileSource) Name() string { return "file" }

// Extract parses the declarations file.
func (s *FileSource) Extract(ctx context.Context, _ string) ([]Declaration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readOutput(s.Path)
}

// readOutput parses an evaluator output file, mapping failures to codes.
func readOutput(path string) ([]Declaration, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, rgerrors.Wrap(rgerrors.ErrCodeOutputMissing, err, "declarations file %s was not created", path)
		}
		return nil, rgerrors.Wrap(rgerrors.ErrCodeMalformedOutput, err, "stat %s", path)
	}
	decls, err := ParseFile(path)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeMalformedOutput, err, "parse declarations file %s", path)
	}
	return decls, nil
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*CMakeSource)(nil)
)
