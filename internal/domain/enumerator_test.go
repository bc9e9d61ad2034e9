package domain_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glide.dev/pkg/glide/internal/adapter"
	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

func collectPaths(t *testing.T, e *domain.Enumerator, root string) []string {
	t.Helper()

	var paths []string

	for path, err := range e.Paths(context.Background(), m.Path(root)) {
		require.NoError(t, err)

		rel, err := filepath.Rel(root, string(path))
		require.NoError(t, err)

		paths = append(paths, rel)
	}

	return paths
}

func TestEnumerator_Paths(t *testing.T) {
	cfg := m.Config{}.Normalized()
	root := t.TempDir()
	work := filepath.Join(root, cfg.WorkDir)

	writeFile(t, filepath.Join(root, "b.csv"), "x")
	writeFile(t, filepath.Join(root, "a", "z.txt"), "x")
	writeFile(t, filepath.Join(root, "a", "notes.yaml"), "x")
	writeFile(t, filepath.Join(root, "info.manifest"), "x")
	writeFile(t, filepath.Join(root, "shot.PNG"), "x")
	writeFile(t, filepath.Join(root, "shot.png"), "x")
	writeFile(t, filepath.Join(work, domain.UploadDir, "csv", "0 - b.csv"), "x")
	writeFile(t, filepath.Join(work, domain.SheetsDir, "1 - 0 - S.csv"), "x")
	writeFile(t, filepath.Join(work, domain.TablesDir, "2", "users"), "x")
	require.NoError(t, os.Symlink("b.csv", filepath.Join(root, "c-link")))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling")))
	require.NoError(t, os.Symlink("a", filepath.Join(root, "dir-link")))

	enumerator := domain.NewEnumerator(adapter.NewLocalSourceFSAdapter(), cfg)

	expected := []string{
		filepath.Join("a", "z.txt"),
		"b.csv",
		"c-link",
		"shot.png",
		filepath.Join(cfg.WorkDir, domain.TablesDir, "2", "users"),
	}

	assert.Equal(t, expected, collectPaths(t, enumerator, root))
	assert.Equal(t, expected, collectPaths(t, enumerator, root), "sequence is restartable")
}

func TestEnumerator_PathsEarlyStop(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		writeFile(t, filepath.Join(root, name), "x")
	}

	enumerator := domain.NewEnumerator(adapter.NewLocalSourceFSAdapter(), m.Config{})

	var seen []m.Path

	for path, err := range enumerator.Paths(context.Background(), m.Path(root)) {
		require.NoError(t, err)

		seen = append(seen, path)
		if len(seen) == 2 {
			break
		}
	}

	assert.Len(t, seen, 2)
}

func TestEnumerator_PathsErrors(t *testing.T) {
	enumerator := domain.NewEnumerator(adapter.NewLocalSourceFSAdapter(), m.Config{})

	t.Run("missing root", func(t *testing.T) {
		var errs []error

		for _, err := range enumerator.Paths(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing"))) {
			errs = append(errs, err)
		}

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], os.ErrNotExist)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a"), "x")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var errs []error

		for _, err := range enumerator.Paths(ctx, m.Path(root)) {
			errs = append(errs, err)
		}

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], context.Canceled)
	})
}
