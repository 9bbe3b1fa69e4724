package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/model"
)

// Reader executes queries against a committed generation of the index.
type Reader struct {
	idx bleve.Index
}

// NewReader wraps idx for querying.
func NewReader(idx bleve.Index) *Reader {
	return &Reader{idx: idx}
}

// Search executes q against the reader's generation, returning up to
// limit results ordered by descending score.
func (r *Reader) Search(q query.Query, limit int) ([]model.SearchResult, error) {
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{"*"}

	res, err := r.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("%w: executing search", errs.ErrSearchError)
	}

	out := make([]model.SearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		out = append(out, model.SearchResult{
			Path:       stringField(hit.Fields, "path"),
			Content:    stringField(hit.Fields, "content"),
			SymbolName: stringField(hit.Fields, "symbol_name"),
			SymbolType: stringField(hit.Fields, "symbol_type"),
			StartLine:  intField(hit.Fields, "start_line"),
			EndLine:    intField(hit.Fields, "end_line"),
			Language:   stringField(hit.Fields, "language"),
			Score:      hit.Score,
		})
	}
	return out, nil
}

// ReadRange fetches the stored document for id directly, used by the
// CLI's `read` subcommand (supplemented from the original system's
// equivalent operation) to print a chunk without going through search
// scoring. The `id` field is indexed with the identity analyser
// specifically so this point lookup doesn't need a full scan.
func (r *Reader) ReadRange(id string) (model.SearchResult, bool, error) {
	q := bleve.NewTermQuery(id)
	q.SetField("id")
	results, err := r.Search(q, 1)
	if err != nil {
		return model.SearchResult{}, false, fmt.Errorf("%w: reading %q", errs.ErrSearchError, id)
	}
	if len(results) == 0 {
		return model.SearchResult{}, false, nil
	}
	return results[0], true, nil
}

// Close closes the underlying index handle.
func (r *Reader) Close() error {
	return r.idx.Close()
}

// Analyze tokenises text with the same analyser the content field is
// indexed under, so query tokenisation is provably consistent with
// what was indexed.
func (r *Reader) Analyze(text string) []string {
	analyzer := r.idx.Mapping().AnalyzerNamed("standard")
	if analyzer == nil {
		return nil
	}
	tokens := analyzer.Analyze([]byte(text))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, string(tok.Term))
	}
	return out
}

func stringField(fields map[string]interface{}, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intField(fields map[string]interface{}, name string) int {
	v, ok := fields[name]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

