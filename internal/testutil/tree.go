// Package testutil holds helpers for building asset trees in tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// BaseTime is a fixed mtime well in the past, so files written during a test
// are always newer than it.
var BaseTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// WriteTree creates files under root from a map of slash separated relative
// paths to contents. Every file gets BaseTime as its mtime.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(rel)), content, BaseTime)
	}
}

// WriteFile writes content to path, creating parents, and sets its mtime
func WriteFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	Touch(t, path, mtime)
}

// Touch sets the mtime of path
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()

	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// ModTime returns the mtime of path
func ModTime(t *testing.T, path string) time.Time {
	t.Helper()

	info, err := os.Stat(path)
	require.NoError(t, err)

	return info.ModTime()
}

// ListFiles returns the slash separated relative paths of all regular files
// under root
func ListFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			files = append(files, filepath.ToSlash(rel))
		}

		return nil
	})
	require.NoError(t, err)

	return files
}
