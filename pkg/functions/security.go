package functions

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrOutsideDataDir is returned for a location that would resolve outside
// the dataset directory.
var ErrOutsideDataDir = errors.New("path outside data directory")

// confinePath resolves path and ensures it stays within root.
func confinePath(path, root string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid root: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || hasParentTraversal(rel) {
		return "", fmt.Errorf("%w: %s (allowed: %s)", ErrOutsideDataDir, absPath, absRoot)
	}
	return absPath, nil
}

// hasParentTraversal reports whether a path contains a parent directory segment.
func hasParentTraversal(cleanPath string) bool {
	if cleanPath == ".." {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(cleanPath), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
