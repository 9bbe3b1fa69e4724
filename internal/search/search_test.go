package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/model"
)

func newTestEngine(t *testing.T) (*Engine, func()) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "proj")
	idx, err := index.OpenOrCreate(dir)
	require.NoError(t, err)

	w := index.NewWriter(idx)
	chunks := []model.Chunk{
		{ID: "auth.rs:1:10", Path: "auth.rs", Content: "fn helper() { check(token) }", StartLine: 1, EndLine: 10, Language: "rust", SymbolName: "helper", SymbolType: "function"},
		{ID: "auth.rs:11:20", Path: "auth.rs", Content: "fn login(token) { validate(token) }", StartLine: 11, EndLine: 20, Language: "rust", SymbolName: "login", SymbolType: "function"},
	}
	for _, c := range chunks {
		require.NoError(t, w.AddChunk(c))
	}
	require.NoError(t, w.Commit())

	reader := index.NewReader(idx)
	return NewEngine(reader), func() { idx.Close() }
}

func TestSearchEmptyQueryReturnsNoResultsNoError(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	resp, err := e.Search(context.Background(), "   ", DefaultOptions())
	require.NoError(t, err)
	require.Empty(t, resp.Results)
}

func TestSearchBoostsSymbolNameMatch(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	resp, err := e.Search(context.Background(), "login", Options{Limit: 20, SymbolBoost: 3.0, NoExpand: true})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	require.Equal(t, "login", resp.Results[0].SymbolName)
}

func TestSearchIsDeterministicAcrossRepeatedCalls(t *testing.T) {
	e, cleanup := newTestEngine(t)
	defer cleanup()

	first, err := e.Search(context.Background(), "token", DefaultOptions())
	require.NoError(t, err)
	second, err := e.Search(context.Background(), "token", DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		require.Equal(t, first.Results[i].Path, second.Results[i].Path)
		require.Equal(t, first.Results[i].StartLine, second.Results[i].StartLine)
	}
}

func TestExpandAppliesKnownTrigger(t *testing.T) {
	expanded, tag := expand("auth flow")
	require.Equal(t, "auth", tag)
	require.Contains(t, expanded, "authenticate")
}

func TestExpandLeavesUnknownQueryUnchanged(t *testing.T) {
	expanded, tag := expand("frobnicate widget")
	require.Empty(t, tag)
	require.Equal(t, "frobnicate widget", expanded)
}

type reverseReranker struct{}

func (reverseReranker) Transform(ctx context.Context, query string, candidates []model.SearchResult) ([]model.SearchResult, error) {
	out := make([]model.SearchResult, len(candidates))
	for i, c := range candidates {
		out[len(candidates)-1-i] = c
	}
	return out, nil
}

func TestSearchAppliesConfiguredReranker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	idx, err := index.OpenOrCreate(dir)
	require.NoError(t, err)
	defer idx.Close()

	w := index.NewWriter(idx)
	chunks := []model.Chunk{
		{ID: "auth.rs:1:10", Path: "auth.rs", Content: "fn helper() { check(token) }", StartLine: 1, EndLine: 10, Language: "rust", SymbolName: "helper", SymbolType: "function"},
		{ID: "auth.rs:11:20", Path: "auth.rs", Content: "fn login(token) { validate(token) }", StartLine: 11, EndLine: 20, Language: "rust", SymbolName: "login", SymbolType: "function"},
	}
	for _, c := range chunks {
		require.NoError(t, w.AddChunk(c))
	}
	require.NoError(t, w.Commit())

	plain := NewEngine(index.NewReader(idx))
	want, err := plain.Search(context.Background(), "token", Options{Limit: 20, NoExpand: true})
	require.NoError(t, err)
	require.Len(t, want.Results, 2)

	reranked := NewEngine(index.NewReader(idx), WithReranker(reverseReranker{}))
	got, err := reranked.Search(context.Background(), "token", Options{Limit: 20, NoExpand: true})
	require.NoError(t, err)
	require.Len(t, got.Results, 2)
	require.Equal(t, want.Results[0].SymbolName, got.Results[1].SymbolName)
	require.Equal(t, want.Results[1].SymbolName, got.Results[0].SymbolName)
}

func TestApplyFiltersByPath(t *testing.T) {
	results := []model.SearchResult{
		{Path: "a/auth.rs"},
		{Path: "b/other.rs"},
	}
	filtered := ApplyFilters(results, "auth")
	require.Len(t, filtered, 1)
	require.Equal(t, "a/auth.rs", filtered[0].Path)
}
