package io

import (
	"os"
	"path/filepath"

	rgerrors "github.com/matzehuels/rockgraph/pkg/errors"
)

// FileMode is the permission used for every output artifact.
const FileMode os.FileMode = 0o644

// WriteFileAtomic replaces the file at path with data, creating missing
// parent directories. Readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	if path == "" {
		return rgerrors.New(rgerrors.ErrCodeInvalidPath, "empty output path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeWriteFailed, err, "create directory for %s", path)
		}
	}
	if err := writeFileAtomicImpl(path, data, FileMode); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeWriteFailed, err, "write %s", path)
	}
	return nil
}
