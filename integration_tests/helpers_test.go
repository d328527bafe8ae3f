//go:build integration
// +build integration

package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/lesstask/internal/config"
	"github.com/conneroisu/lesstask/internal/renderer"
)

// passthroughRenderer stands in for lessc so the suite runs without node.
type passthroughRenderer struct{}

func (passthroughRenderer) Render(_ context.Context, source []byte, _ renderer.Options) (renderer.Result, error) {
	return renderer.Result{CSS: source}, nil
}

func ptr[T any](v T) *T {
	return &v
}

// writeProject lays out files relative to a fresh temp directory.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func resolveConfig(t *testing.T, root string) config.Config {
	t.Helper()

	cfg, err := config.Resolve(config.Overrides{
		Input:  ptr(filepath.Join(root, "src", "*", "less") + "/"),
		Output: ptr("../css"),
	})
	require.NoError(t, err)
	return cfg
}
