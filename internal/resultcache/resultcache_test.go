package resultcache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/model"
)

func TestAddThenGetHits(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	resp := model.SearchResponse{ElapsedMS: 2}
	c.Add("/repo", "auth", 20, resp)

	got, ok := c.Get("/repo", "auth", 20)
	require.True(t, ok)
	require.Equal(t, resp.ElapsedMS, got.ElapsedMS)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	_, ok := c.Get("/repo", "nope", 20)
	require.False(t, ok)
}

func TestInvalidateProjectRemovesOnlyThatProjectsKeys(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	c.Add("/repo-a", "auth", 20, model.SearchResponse{})
	c.Add("/repo-b", "auth", 20, model.SearchResponse{})

	c.InvalidateProject("/repo-a")

	_, ok := c.Get("/repo-a", "auth", 20)
	require.False(t, ok)
	_, ok = c.Get("/repo-b", "auth", 20)
	require.True(t, ok)
}

func TestKeyFormat(t *testing.T) {
	require.Equal(t, "/repo:auth:20", Key("/repo", "auth", 20))
}
