// Package search builds and executes the boosted boolean query over an
// index reader: tokenise, fan out into per-token content/symbol_name
// clauses, combine disjunctively, and rank.
package search

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/model"
	"github.com/greppy/greppy/internal/rerank"
)

// Options tunes one search call.
type Options struct {
	Limit       int
	SymbolBoost float64 // default 3.0
	NoExpand    bool
}

// DefaultOptions mirrors the specification's defaults.
func DefaultOptions() Options {
	return Options{Limit: 20, SymbolBoost: 3.0}
}

// Engine executes queries against one project's reader. Reranker and
// Expander are optional collaborators (internal/rerank); either may be
// left nil, in which case Search falls back to its built-in
// synonym-based expansion and returns the reader's ranking unchanged.
type Engine struct {
	reader   *index.Reader
	reranker rerank.Transformer
	expander rerank.Expander
}

// NewEngine wraps reader for querying, applying any Option overrides.
func NewEngine(reader *index.Reader, opts ...Option) *Engine {
	e := &Engine{reader: reader}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures an optional Engine collaborator.
type Option func(*Engine)

// WithReranker sets the Transformer Search consults after retrieval to
// reorder candidates. A nil Transformer leaves the engine's ranking
// untouched.
func WithReranker(r rerank.Transformer) Option {
	return func(e *Engine) { e.reranker = r }
}

// WithExpander sets the Expander Search consults before its own
// built-in synonym expansion. A nil Expander leaves built-in expansion
// as the only source of query rewriting.
func WithExpander(x rerank.Expander) Option {
	return func(e *Engine) { e.expander = x }
}

// Search tokenises q, builds the boosted disjunctive query, executes
// it, and returns a response. A query with zero tokens (empty or
// whitespace-only) returns an empty result with no error. When an
// Expander is configured it runs first and its output is what gets
// tokenised; when a Reranker is configured it runs last, reordering
// (or filtering) the retrieved candidates before they're returned.
func (e *Engine) Search(ctx context.Context, q string, opts Options) (model.SearchResponse, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.SymbolBoost <= 0 {
		opts.SymbolBoost = 3.0
	}

	text := q
	intent := ""
	if !opts.NoExpand {
		if e.expander != nil {
			if rewritten, err := e.expander.Expand(ctx, q); err == nil && rewritten != "" {
				text = rewritten
			}
		}
		if expanded, tag := expand(text); tag != "" {
			text = expanded
			intent = tag
		}
	}

	tokens := e.reader.Analyze(text)
	if len(tokens) == 0 {
		return model.SearchResponse{Results: nil, Intent: intent}, nil
	}

	bq := buildQuery(tokens, opts.SymbolBoost)
	results, err := e.reader.Search(bq, opts.Limit)
	if err != nil {
		return model.SearchResponse{}, err
	}

	if e.reranker != nil {
		reranked, err := e.reranker.Transform(ctx, q, results)
		if err == nil {
			results = reranked
		}
	}

	return model.SearchResponse{Results: results, Intent: intent}, nil
}

// buildQuery composes, per token, a content clause (Should) and a
// symbol_name clause boosted by symbolBoost (Should), combined into one
// disjunctive boolean query.
func buildQuery(tokens []string, symbolBoost float64) query.Query {
	var clauses []query.Query
	for _, tok := range tokens {
		content := bleve.NewMatchQuery(tok)
		content.SetField("content")
		clauses = append(clauses, content)

		symbol := bleve.NewMatchQuery(tok)
		symbol.SetField("symbol_name")
		symbol.SetBoost(symbolBoost)
		clauses = append(clauses, symbol)
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

// ApplyFilters post-filters results in place, keeping those whose path
// contains pathContains (an empty pathContains keeps all); it is never
// pushed into the index query since limit is always small. There is no
// separate test-file predicate.
func ApplyFilters(results []model.SearchResult, pathContains string) []model.SearchResult {
	if pathContains == "" {
		return results
	}
	out := results[:0]
	for _, r := range results {
		if strings.Contains(r.Path, pathContains) {
			out = append(out, r)
		}
	}
	return out
}
