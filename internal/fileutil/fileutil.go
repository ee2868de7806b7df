package fileutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var filenameReplacer = strings.NewReplacer(
	":", " -",
	"/", "-",
	"\\", "-",
	"?", "",
	"*", "",
	"\"", "'",
	"<", "",
	">", "",
	"|", "-",
)

// SanitizeFilename replaces characters that are not portable across filesystems.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(filenameReplacer.Replace(name))
}

// GetMarkdownFilePath returns the note path for a build title inside directory.
func GetMarkdownFilePath(name string, directory string) string {
	return filepath.Join(directory, SanitizeFilename(name)+".md")
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// WriteFileWithOverwrite writes data unless path already exists and
// overwrite is false. The bool result tells whether anything was written.
func WriteFileWithOverwrite(path string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if !overwrite && FileExists(path) {
		return false, nil
	}
	if err := WriteFileAtomic(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, so readers never see a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// WriteMarkdownFile writes a note, keeping an existing one unless overwrite is set.
func WriteMarkdownFile(path string, content []byte, overwrite bool) (bool, error) {
	written, err := WriteFileWithOverwrite(path, content, 0o644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write markdown file: %w", err)
	}
	if !written {
		slog.Info("Markdown file already exists, skipping", "filename", path)
	}
	return written, nil
}

// WriteJSONFile writes data as indented JSON, keeping an existing file
// unless overwrite is set.
func WriteJSONFile(data any, path string, overwrite bool) (bool, error) {
	if !overwrite && FileExists(path) {
		slog.Info("JSON file already exists, skipping", "filename", path)
		return false, nil
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	slog.Debug("Writing JSON file", "filename", path)
	written, err := WriteFileWithOverwrite(path, encoded, 0o644, true)
	if err != nil {
		return false, fmt.Errorf("failed to write JSON file: %w", err)
	}
	return written, nil
}
