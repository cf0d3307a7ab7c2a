package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateExternalPrefix checks the marker prefix that identifies externally
// vendored projects. An empty prefix would mark every name as external.
func ValidateExternalPrefix(prefix string) error {
	if prefix == "" {
		return New(ErrCodeInvalidInput, "external prefix cannot be empty")
	}
	for _, r := range prefix {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == ':' || r == ',' {
			return New(ErrCodeInvalidInput, "external prefix contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateOutputPath validates an optional output file path.
// An empty path is valid and means the output is skipped.
func ValidateOutputPath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "output path contains a null byte")
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path)
	}
	return nil
}
