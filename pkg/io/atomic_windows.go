//go:build windows

package io

import "os"

// writeFileAtomicImpl falls back to a direct write; renameio does not
// support Windows.
func writeFileAtomicImpl(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}
