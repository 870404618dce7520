// Package pathutil provides shared path helpers for sources, destinations and
// script files.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateFilePath rejects empty paths, paths containing NUL bytes and paths
// with a ".." segment. Segments are checked before cleaning, so
// "scripts/../etc/passwd" is rejected even though it cleans to "etc/passwd".
func ValidateFilePath(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("file path cannot be empty")
	}
	if strings.Contains(filePath, "\x00") {
		return fmt.Errorf("file path contains invalid characters")
	}
	for _, segment := range strings.Split(ToUnixPath(filePath), "/") {
		if segment == ".." {
			return fmt.Errorf("file path contains path traversal: %q", filePath)
		}
	}
	return nil
}

// ToUnixPath converts separators to forward slashes.
func ToUnixPath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}

// IsDirectory reports whether p names a directory by its trailing separator.
func IsDirectory(p string) bool {
	return strings.HasSuffix(ToUnixPath(p), "/")
}

// IsFile reports whether p can name a file: non-empty, no trailing separator.
func IsFile(p string) bool {
	return strings.TrimSpace(p) != "" && !IsDirectory(p)
}

// IsGlob reports whether p contains doublestar pattern metacharacters.
func IsGlob(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}
