// Package embed defines the boundary greppy's indexing pipeline calls
// through to turn chunk text into vectors, grounded on the teacher's
// embeddings.Client/Batcher shape but reduced to the one method the
// pipeline actually needs. No concrete inference backend ships in this
// tree; NoopBatcher is the zero-config default.
package embed

import "context"

// Batcher turns a batch of chunk texts into embeddings, one vector per
// input text in the same order. A nil vector at position i means "no
// embedding for this text" rather than an error for that one text.
type Batcher interface {
	Batch(ctx context.Context, texts []string) ([][]float32, error)
}

// NoopBatcher implements Batcher by returning no embeddings for every
// call. It never errors, so pipeline workers never treat the absence of
// an embedding backend as a reason to skip a file.
type NoopBatcher struct{}

// Batch returns nil for every input text.
func (NoopBatcher) Batch(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}
