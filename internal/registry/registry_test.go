package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/model"
)

func TestLoadMissingFileReturnsEmptyRegistry(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, r.List())
}

func TestUpsertThenListAndGet(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo", Name: "repo", FilesIndexed: 10}))

	entries := r.List()
	require.Len(t, entries, 1)
	require.Equal(t, "/repo", entries[0].Path)

	got, ok := r.Get("/repo")
	require.True(t, ok)
	require.Equal(t, 10, got.FilesIndexed)
}

func TestUpsertReplacesExistingEntry(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo", FilesIndexed: 1}))
	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo", FilesIndexed: 2}))

	require.Len(t, r.List(), 1)
	got, _ := r.Get("/repo")
	require.Equal(t, 2, got.FilesIndexed)
}

func TestRemoveDeletesEntry(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo"}))
	require.NoError(t, r.Remove("/repo"))
	require.Empty(t, r.List())
}

func TestSetWatchingFlipsFlag(t *testing.T) {
	r, err := Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo", Watching: false}))
	require.NoError(t, r.SetWatching("/repo", true))

	got, _ := r.Get("/repo")
	require.True(t, got.Watching)
}

func TestPersistsAcrossReload(t *testing.T) {
	home := t.TempDir()
	r, err := Load(home)
	require.NoError(t, err)
	require.NoError(t, r.Upsert(model.RegistryEntry{Path: "/repo", Name: "repo"}))

	reloaded, err := Load(home)
	require.NoError(t, err)
	entries := reloaded.List()
	require.Len(t, entries, 1)
	require.Equal(t, "repo", entries[0].Name)

	require.FileExists(t, filepath.Join(home, fileName))
}
