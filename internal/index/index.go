package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"

	"github.com/greppy/greppy/internal/errs"
)

// OpenOrCreate opens the bleve index rooted at dir, creating the
// directory and a schema marker file if no index exists there yet.
func OpenOrCreate(dir string) (bleve.Index, error) {
	if _, err := os.Stat(filepath.Join(dir, schemaMarkerFile)); err == nil {
		return openExisting(dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory %q: %w", dir, errDecorate(err))
	}
	idx, err := bleve.New(dir, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index at %q: %w", dir, errDecorate(err))
	}
	if err := os.WriteFile(filepath.Join(dir, schemaMarkerFile), []byte("1\n"), 0o644); err != nil {
		idx.Close()
		return nil, fmt.Errorf("writing schema marker at %q: %w", dir, errDecorate(err))
	}
	return idx, nil
}

// Open opens an existing index at dir, failing with index-not-found if
// no schema marker is present.
func Open(dir string) (bleve.Index, error) {
	if _, err := os.Stat(filepath.Join(dir, schemaMarkerFile)); err != nil {
		return nil, errs.Wrap(errs.ErrIndexNotFound, dir)
	}
	return openExisting(dir)
}

func openExisting(dir string) (bleve.Index, error) {
	idx, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening index at %q: %w", dir, errDecorate(err))
	}
	return idx, nil
}

// Delete removes dir recursively. Deleting a directory that doesn't
// exist is a no-op.
func Delete(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("deleting index at %q: %w", dir, errDecorate(err))
	}
	return nil
}

func errDecorate(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrIndexError, err)
}
