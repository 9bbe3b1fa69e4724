// Package index wraps bleve as greppy's persistent inverted index: one
// index directory per project, content/symbol_name tokenised and
// boosted at query time, everything else stored verbatim.
package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
)

const schemaMarkerFile = ".schema"

// buildMapping constructs the index mapping described in the
// specification's data model: content and symbol_name tokenised with
// the default word-splitting, lowercasing analyser; everything else
// stored verbatim via the keyword (identity) analyser.
func buildMapping() *mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = "standard"

	doc := bleve.NewDocumentMapping()

	content := bleve.NewTextFieldMapping()
	content.Analyzer = "standard"
	content.Store = true
	content.IncludeTermVectors = true
	doc.AddFieldMappingsAt("content", content)

	symbolName := bleve.NewTextFieldMapping()
	symbolName.Analyzer = "standard"
	symbolName.Store = true
	doc.AddFieldMappingsAt("symbol_name", symbolName)

	for _, field := range []string{"path", "symbol_type", "language", "file_hash", "id"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		kw.IncludeInAll = false
		doc.AddFieldMappingsAt(field, kw)
	}

	for _, field := range []string{"start_line", "end_line"} {
		num := bleve.NewNumericFieldMapping()
		num.Store = true
		num.IncludeInAll = false
		doc.AddFieldMappingsAt(field, num)
	}

	embedding := bleve.NewTextFieldMapping()
	embedding.Index = false
	embedding.Store = true
	embedding.IncludeInAll = false
	doc.AddFieldMappingsAt("embedding", embedding)

	im.DefaultMapping = doc
	return im
}

// document is the shape one chunk is marshaled into for bleve
// indexing; it mirrors the schema in the specification's data model
// exactly, field for field.
type document struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Content    string `json:"content"`
	SymbolName string `json:"symbol_name"`
	SymbolType string `json:"symbol_type"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Language   string `json:"language"`
	FileHash   string `json:"file_hash"`
	Embedding  string `json:"embedding,omitempty"` // base64-encoded little-endian float32s
}
