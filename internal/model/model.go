// Package model holds the plain data types shared across greppy's
// subsystems: projects, chunks, search results, and registry entries.
package model

import "fmt"

// Project is a resolved code repository root.
type Project struct {
	Root string // canonical absolute path
	Name string // filepath.Base(Root)
	Type string // marker that resolved this root: "git", "npm", "cargo", ...
}

// Chunk is one unit of source text produced by a chunker, ready to be
// indexed.
type Chunk struct {
	ID         string // "path:startLine:endLine"
	Path       string // repo-relative, forward-slash separated
	Content    string
	StartLine  int // 1-indexed, inclusive
	EndLine    int // 1-indexed, inclusive
	Language   string
	SymbolName string // "" if none could be determined
	SymbolType string // "" or one of the values in SymbolTypes
	FileHash   string // 16-hex xxh3-64 of the whole file this chunk came from
	Embedding  []float32
}

// ChunkID formats the deterministic id for a chunk's location.
func ChunkID(path string, startLine, endLine int) string {
	return fmt.Sprintf("%s:%d:%d", path, startLine, endLine)
}

// SymbolTypes is the closed set of symbol kinds the chunkers may emit.
var SymbolTypes = map[string]bool{
	"function": true,
	"method":   true,
	"class":    true,
	"struct":   true,
	"enum":     true,
	"trait":    true,
	"impl":     true,
	"interface": true,
	"module":   true,
	"constant": true,
	"variable": true,
	"type":     true,
}

// SearchResult is one ranked hit returned from a query.
type SearchResult struct {
	Path       string
	Content    string
	SymbolName string
	SymbolType string
	StartLine  int
	EndLine    int
	Language   string
	Score      float64
}

// SearchResponse wraps a ranked result set plus metadata about how it was
// produced.
type SearchResponse struct {
	Results   []SearchResult
	Cached    bool
	ElapsedMS int64
	Intent    string // non-empty if synonym/intent expansion fired
}

// RegistryEntry is one row of the project registry document.
type RegistryEntry struct {
	Path            string `json:"path"`
	Name            string `json:"name"`
	FilesIndexed    int    `json:"files_indexed"`
	LastIndexedUnix int64  `json:"last_indexed_unix"`
	Watching        bool   `json:"watching"`
}
