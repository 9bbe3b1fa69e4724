package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWatchesRootDirectory(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(ctx, root, Options{})
	require.NoError(t, err)
	defer w.Close()
}

func TestWriteTriggersReindexRequest(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(ctx, root, Options{Debounce: 20 * time.Millisecond, EventThreshold: 100})
	require.NoError(t, err)
	defer w.Close()

	file := filepath.Join(root, "main.go")
	require.NoError(t, os.WriteFile(file, []byte("package main\n"), 0o644))

	select {
	case req := <-w.Requests():
		require.Equal(t, root, req.Root)
		require.Contains(t, req.Changed, "main.go")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reindex request")
	}
}

func TestIgnoresNonSourceExtensions(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := New(ctx, root, Options{Debounce: 20 * time.Millisecond})
	require.NoError(t, err)
	defer w.Close()

	file := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	select {
	case req := <-w.Requests():
		t.Fatalf("unexpected reindex request for ignored extension: %+v", req)
	case <-time.After(200 * time.Millisecond):
	}
}
