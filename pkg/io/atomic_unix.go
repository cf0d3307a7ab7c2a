//go:build !windows

package io

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomicImpl writes through a temp file in the target directory
// followed by rename(2).
func writeFileAtomicImpl(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
