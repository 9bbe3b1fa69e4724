package index

import (
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/model"
)

func TestOpenOrCreateThenOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")

	idx, err := OpenOrCreate(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}

func TestOpenMissingIndexFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestWriterAddCommitAndSearchByID(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	idx, err := OpenOrCreate(dir)
	require.NoError(t, err)
	defer idx.Close()

	w := NewWriter(idx)
	chunk := model.Chunk{
		ID:         "lib.rs:1:3",
		Path:       "lib.rs",
		Content:    "pub fn authenticate() -> bool { true }",
		StartLine:  1,
		EndLine:    3,
		Language:   "rust",
		SymbolName: "authenticate",
		SymbolType: "function",
		FileHash:   "abc123",
	}
	require.NoError(t, w.AddChunk(chunk))
	require.NoError(t, w.Commit())

	r := NewReader(idx)
	got, ok, err := r.ReadRange(chunk.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, chunk.Path, got.Path)
	require.Equal(t, chunk.SymbolName, got.SymbolName)
}

func TestDeleteByPathRemovesDocuments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	idx, err := OpenOrCreate(dir)
	require.NoError(t, err)
	defer idx.Close()

	w := NewWriter(idx)
	require.NoError(t, w.AddChunk(model.Chunk{ID: "a.go:1:2", Path: "a.go", Content: "func A() {}", StartLine: 1, EndLine: 2, Language: "go"}))
	require.NoError(t, w.Commit())

	require.NoError(t, w.DeleteByPath("a.go"))
	require.NoError(t, w.Commit())

	q := bleve.NewTermQuery("a.go")
	q.SetField("path")
	r := NewReader(idx)
	results, err := r.Search(q, 10)
	require.NoError(t, err)
	require.Empty(t, results)
}
