// Package chunker turns one file's text into an ordered sequence of
// indexable chunks, using an AST-aware splitter where a tree-sitter
// grammar is wired in and a heuristic line-based splitter everywhere
// else, per the per-file tagged dispatch design.
package chunker

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/greppy/greppy/internal/model"
)

// Chunk splits content (the full text of the file at path) into
// chunks. Each splitter gives its chunks the deterministic
// "path:start:end" id; the file's content hash is computed once here
// and stamped onto every returned chunk.
func Chunk(path string, content []byte) ([]model.Chunk, error) {
	language := LanguageForPath(path)
	fileHash := FileHash(content)

	chunks, ok := astChunk(path, language, content)
	if !ok {
		chunks = heuristicChunk(path, language, string(content))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("chunking %q: produced no chunks", path)
	}

	for i := range chunks {
		chunks[i].FileHash = fileHash
	}
	return chunks, nil
}

// FileHash computes the 16-hex xxh3-64 digest of content, used as the
// chunk.file_hash field: identical for every chunk drawn from the same
// file revision, and changes iff the file's bytes change.
func FileHash(content []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(content))
}
