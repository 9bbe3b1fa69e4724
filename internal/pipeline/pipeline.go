// Package pipeline drives a full index (or re-index) of one project
// through three bounded-channel stages: walk, chunk (+ optional embed),
// write. Generalized from the teacher's channel-fed worker pool
// (internal/indexer.processFilesInParallel) into the specification's
// three explicit stages with backpressure between each.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/greppy/greppy/internal/chunker"
	"github.com/greppy/greppy/internal/embed"
	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/model"
	"github.com/greppy/greppy/internal/walker"
)

const (
	defaultChannelCapacity = 1000
	defaultEmbedBatchSize  = 64
	progressInterval       = 2 * time.Second
)

// Options tunes one Run call.
type Options struct {
	Force           bool // delete and rebuild the index from scratch
	Workers         int  // 0 uses runtime.NumCPU()
	ChannelCapacity int  // 0 uses defaultChannelCapacity
	EmbedBatchSize  int  // 0 uses defaultEmbedBatchSize
	Embedder        embed.Batcher
	WalkerOptions   walker.Options
}

// Stats accumulates counters across a run, safe for concurrent updates
// from worker goroutines.
type Stats struct {
	FilesTotal    atomicInt
	FilesIndexed  atomicInt
	FilesSkipped  atomicInt
	ChunksWritten atomicInt
	EmbedFailures atomicInt
}

// Run walks root, chunks every candidate file, optionally embeds each
// chunk's text, and commits the result to the project's index. When
// opts.Force is set the existing index at dir is deleted first so the
// run produces a clean generation. Cancelling ctx stops new files from
// being queued but lets in-flight chunking and the final commit finish,
// so a cancelled run never leaves a half-written generation on disk.
func Run(ctx context.Context, root, indexDir string, opts Options) (*Stats, error) {
	stats := &Stats{}

	if opts.Force {
		if err := index.Delete(indexDir); err != nil {
			return stats, err
		}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
		if opts.Workers <= 0 {
			opts.Workers = 4
		}
	}
	if opts.ChannelCapacity <= 0 {
		opts.ChannelCapacity = defaultChannelCapacity
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = defaultEmbedBatchSize
	}
	if opts.Embedder == nil {
		opts.Embedder = embed.NoopBatcher{}
	}
	if opts.WalkerOptions.MaxFileSizeBytes <= 0 {
		opts.WalkerOptions = walker.DefaultOptions()
	}

	idx, err := index.OpenOrCreate(indexDir)
	if err != nil {
		return stats, err
	}
	defer idx.Close()

	paths := make(chan string, opts.ChannelCapacity)
	chunks := make(chan model.Chunk, opts.ChannelCapacity)

	var walkErr error
	go func() {
		defer close(paths)
		walkErr = walker.Walk(root, opts.WalkerOptions, func(path string) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case paths <- path:
				stats.FilesTotal.Add(1)
				return nil
			}
		})
	}()

	var workersWG sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			runWorker(ctx, root, paths, chunks, opts, stats)
		}()
	}

	go func() {
		workersWG.Wait()
		close(chunks)
	}()

	writer := index.NewWriter(idx)
	if err := runWriter(writer, chunks, stats); err != nil {
		return stats, err
	}

	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		return stats, errs.Wrap(errs.ErrIOError, walkErr.Error())
	}
	return stats, nil
}

// runWorker reads candidate repo-relative paths, chunks each file,
// batches chunk text for embedding, and forwards every chunk (embedded
// or not) downstream. A read or parse failure on one file is logged and
// skipped; it never aborts the worker or the run.
func runWorker(ctx context.Context, root string, paths <-chan string, out chan<- model.Chunk, opts Options, stats *Stats) {
	for relPath := range paths {
		fileChunks, err := readAndChunk(root, relPath)
		if err != nil {
			slog.Warn("skipping file", "path", relPath, "error", err)
			stats.FilesSkipped.Add(1)
			continue
		}

		embedChunks(ctx, fileChunks, opts, stats)

		for _, c := range fileChunks {
			out <- c
		}
		stats.FilesIndexed.Add(1)
	}
}

// readAndChunk reads the file at relPath (resolved against root for the
// actual disk read) and chunks it under its repo-relative path, so
// every stored chunk.Path and derived chunk id stay independent of
// where root happens to live on disk.
func readAndChunk(root, relPath string) ([]model.Chunk, error) {
	content, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, errs.Wrap(errs.ErrIOError, relPath)
	}
	return chunker.Chunk(relPath, content)
}

func embedChunks(ctx context.Context, fileChunks []model.Chunk, opts Options, stats *Stats) {
	for start := 0; start < len(fileChunks); start += opts.EmbedBatchSize {
		end := start + opts.EmbedBatchSize
		if end > len(fileChunks) {
			end = len(fileChunks)
		}
		batch := fileChunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := opts.Embedder.Batch(ctx, texts)
		if err != nil {
			stats.EmbedFailures.Add(1)
			continue
		}
		for i := range batch {
			if i < len(vectors) {
				batch[i].Embedding = vectors[i]
			}
		}
	}
}

// runWriter drains chunks, adding each to the writer's batch, and
// commits once the channel closes. Progress is logged every two
// seconds while chunks are still arriving.
func runWriter(writer *index.Writer, chunks <-chan model.Chunk, stats *Stats) error {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	started := time.Now()

	done := make(chan error, 1)
	go func() {
		for {
			select {
			case c, ok := <-chunks:
				if !ok {
					done <- writer.Commit()
					return
				}
				if err := writer.AddChunk(c); err != nil {
					done <- err
					return
				}
				stats.ChunksWritten.Add(1)
			}
		}
	}()

	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			written := stats.ChunksWritten.Load()
			slog.Info("indexing progress", "chunks_written", written,
				"chunks_per_sec", float64(written)/time.Since(started).Seconds())
		}
	}
}
