package index

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/blevesearch/bleve/v2"

	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/model"
)

// Writer batches chunk additions and deletions, publishing them as one
// new generation on Commit. It never blocks callers on commit: AddChunk
// only appends to an in-memory batch.
type Writer struct {
	idx   bleve.Index
	batch *bleve.Batch
}

// NewWriter wraps idx with an empty batch.
func NewWriter(idx bleve.Index) *Writer {
	return &Writer{idx: idx, batch: idx.NewBatch()}
}

// AddChunk appends one document to the writer's batch. A failing
// AddChunk surfaces to the caller but does not poison the writer: the
// batch is left as it was before the call.
func (w *Writer) AddChunk(c model.Chunk) error {
	doc := document{
		ID:         c.ID,
		Path:       c.Path,
		Content:    c.Content,
		SymbolName: c.SymbolName,
		SymbolType: c.SymbolType,
		StartLine:  c.StartLine,
		EndLine:    c.EndLine,
		Language:   c.Language,
		FileHash:   c.FileHash,
	}
	if len(c.Embedding) > 0 {
		doc.Embedding = encodeEmbedding(c.Embedding)
	}
	if err := w.batch.Index(c.ID, doc); err != nil {
		return fmt.Errorf("%w: adding chunk %q", errs.ErrIndexError, c.ID)
	}
	return nil
}

// DeleteByPath queues deletion of every document whose path field
// equals path. A path with zero matching documents is a no-op.
func (w *Writer) DeleteByPath(path string) error {
	q := bleve.NewTermQuery(path)
	q.SetField("path")
	req := bleve.NewSearchRequest(q)
	req.Size = 1 << 20
	req.Fields = []string{"id"}

	result, err := w.idx.Search(req)
	if err != nil {
		return fmt.Errorf("%w: finding documents for path %q", errs.ErrIndexError, path)
	}
	for _, hit := range result.Hits {
		w.batch.Delete(hit.ID)
	}
	return nil
}

// Commit publishes the batch as a new generation. After it returns,
// readers that reopen observe the new generation; existing open
// readers keep their own. A failing commit leaves the last committed
// generation intact.
func (w *Writer) Commit() error {
	if w.batch.Size() == 0 {
		return nil
	}
	if err := w.idx.Batch(w.batch); err != nil {
		return fmt.Errorf("%w: committing batch", errs.ErrIndexError)
	}
	w.batch = w.idx.NewBatch()
	return nil
}

func encodeEmbedding(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeEmbedding(s string) []float32 {
	if s == "" {
		return nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(buf)%4 != 0 {
		return nil
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
