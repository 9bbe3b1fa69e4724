// Package rerank defines the optional post-search boundaries: a result
// transformer (e.g. a cross-encoder reranker) and a query expander
// (e.g. an LLM-backed query rewrite). search.Engine accepts both via
// WithReranker/WithExpander and the daemon wires them in via
// SetReranker/SetExpander; neither has a concrete implementation in
// this tree, so a nil value (the default) leaves search.Engine's
// built-in synonym-based expansion and bleve ranking untouched.
package rerank

import (
	"context"

	"github.com/greppy/greppy/internal/model"
)

// Transformer reorders or filters search results for a given query
// after scoring, e.g. a learned reranker. Implementations must return
// candidates unchanged (not an error) when the call is not applicable.
type Transformer interface {
	Transform(ctx context.Context, query string, candidates []model.SearchResult) ([]model.SearchResult, error)
}

// Expander rewrites a query into an equivalent or broader one before
// tokenisation, complementing internal/search's built-in trigger-word
// expansion with an external (e.g. model-backed) one.
type Expander interface {
	Expand(ctx context.Context, query string) (string, error)
}
