// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDirFor creates the directory that will hold path, readable only by
// the current user, and returns it. Paths in the working directory need
// nothing and return ".".
func EnsureDirFor(path string) (string, error) {
	dir := filepath.Dir(path)
	if dir == "." {
		return dir, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
