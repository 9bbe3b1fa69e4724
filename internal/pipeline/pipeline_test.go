package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/search"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestRunIndexesFilesUnderRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n")
	writeFile(t, root, "lib.rs", "fn helper() -> i32 {\n\t1\n}\n")

	indexDir := filepath.Join(t.TempDir(), "idx")
	stats, err := Run(context.Background(), root, indexDir, Options{})
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.FilesIndexed.Load())
	require.Greater(t, stats.ChunksWritten.Load(), int64(0))

	idx, err := index.Open(indexDir)
	require.NoError(t, err)
	defer idx.Close()

	engine := search.NewEngine(index.NewReader(idx))
	resp, err := engine.Search(context.Background(), "helper", search.Options{Limit: 5})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		require.False(t, filepath.IsAbs(r.Path), "stored path %q must be repo-relative, not absolute", r.Path)
	}
}

func TestRunForceRebuildsCleanIndex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package main\n\nfunc A() {}\n")

	indexDir := filepath.Join(t.TempDir(), "idx")
	_, err := Run(context.Background(), root, indexDir, Options{})
	require.NoError(t, err)

	stats, err := Run(context.Background(), root, indexDir, Options{Force: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.FilesIndexed.Load())
}

func TestRunSkipsUnreadableFileWithoutAborting(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.go", "package main\n\nfunc Good() {}\n")
	// a dangling symlink is walked as a candidate file but cannot be read
	require.NoError(t, os.Symlink(filepath.Join(root, "missing-target"), filepath.Join(root, "broken.go")))

	indexDir := filepath.Join(t.TempDir(), "idx")
	stats, err := Run(context.Background(), root, indexDir, Options{})
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.FilesSkipped.Load())
	require.EqualValues(t, 1, stats.FilesIndexed.Load())
}
