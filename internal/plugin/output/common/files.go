package common

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyFile copies src to dst, keeping the source's permissions and
// modification time. Parent directories of dst are created.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 - caller-provided path
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// Backup copies path to backup when path exists. It reports whether a copy
// was made.
func Backup(path, backup string) (bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := CopyFile(path, backup); err != nil {
		return false, fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return true, nil
}

// BackupOnce is Backup, except an existing backup is never replaced.
func BackupOnce(path, backup string) (bool, error) {
	if FileExists(backup) {
		return false, nil
	}
	return Backup(path, backup)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 - user config files
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
