// Package testutil provides sandboxed filesystem, config and HTTP helpers for nyanko tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv is a per-test working tree. Every path it hands out is checked to
// stay under the temporary root, so a bad relative path fails the test instead
// of touching the real save file or vault.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates an empty sandbox removed when the test completes.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

// RootDir returns the sandbox root.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem onto the sandbox root and fails the test if the result
// leaves it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	p := filepath.Clean(filepath.Join(append([]string{e.rootDir}, elem...)...))
	if !e.isWithinSandbox(p) {
		e.t.Fatalf("path %q escapes test sandbox %q", p, e.rootDir)
	}
	return p
}

func (e *TestEnv) isWithinSandbox(path string) bool {
	rel, err := filepath.Rel(e.rootDir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// WriteFile writes content to path, creating parent directories.
func (e *TestEnv) WriteFile(path string, content []byte) {
	e.t.Helper()

	p := e.Path(path)
	e.mkdir(filepath.Dir(p))
	if err := os.WriteFile(p, content, 0o644); err != nil {
		e.t.Fatalf("write %q: %v", p, err)
	}
}

// ReadFile returns the content of path.
func (e *TestEnv) ReadFile(path string) []byte {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(path))
	if err != nil {
		e.t.Fatalf("read %q: %v", path, err)
	}
	return content
}

// MkdirAll creates path and its parents.
func (e *TestEnv) MkdirAll(path string) {
	e.t.Helper()
	e.mkdir(e.Path(path))
}

func (e *TestEnv) mkdir(abs string) {
	e.t.Helper()
	if err := os.MkdirAll(abs, 0o755); err != nil {
		e.t.Fatalf("mkdir %q: %v", abs, err)
	}
}

// FileExists reports whether path exists. Directories count.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()
	_, err := os.Stat(e.Path(path))
	return err == nil
}

// RequireFileExists stops the test when path is missing.
func (e *TestEnv) RequireFileExists(path string) {
	e.t.Helper()
	if !e.FileExists(path) {
		e.t.Fatalf("expected file %q to exist", e.Path(path))
	}
}

// AssertFileContains marks the test failed unless path contains expected.
func (e *TestEnv) AssertFileContains(path, expected string) {
	e.t.Helper()
	if content := string(e.ReadFile(path)); !strings.Contains(content, expected) {
		e.t.Errorf("file %q does not contain %q\n%s", path, expected, content)
	}
}
