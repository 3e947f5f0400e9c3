// Package security validates names and paths that end up in file paths
// or command lines.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateName checks that name can be used as a single file name
// component: a scheme name, a rules mode or a plugin name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty name")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid name %q: must not contain path separators", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid name %q: contains a NUL byte", name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("invalid name %q: must not start with '-'", name)
	}
	return nil
}

// ValidateFilePath validates a relative path to prevent directory traversal
// out of baseDir.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute paths are not allowed: %s", filePath)
	}

	return ValidateWithin(filepath.Join(baseDir, filePath), baseDir)
}

// ValidateWithin checks that path resolves inside baseDir.
func ValidateWithin(path, baseDir string) error {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	absBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path %s escapes %s", path, baseDir)
	}
	return nil
}

// SafeUint8 converts an integer to uint8, clamping to 0-255.
func SafeUint8(val int) uint8 {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}
