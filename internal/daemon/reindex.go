package daemon

import (
	"os"
	"path/filepath"
	"time"

	"github.com/greppy/greppy/internal/chunker"
	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/project"
	"github.com/greppy/greppy/internal/watcher"
)

// applyReindexRequest handles one flushed watcher batch: every deleted
// path is removed from the index, every changed path is deleted then
// re-chunked and re-added, and the whole batch commits as one
// generation, exactly the incremental update spec.md's watcher section
// describes (as opposed to pipeline.Run's full walk-and-rebuild).
func (d *Daemon) applyReindexRequest(req watcher.ReindexRequest) error {
	lock := d.writerLock(req.Root)
	lock.Lock()
	defer lock.Unlock()

	indexDir := project.IndexDir(d.home, req.Root)
	idx, err := index.OpenOrCreate(indexDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	writer := index.NewWriter(idx)

	for _, path := range req.Deleted {
		if err := writer.DeleteByPath(path); err != nil {
			return errs.Wrap(errs.ErrIndexError, path)
		}
	}

	for _, path := range req.Changed {
		if err := writer.DeleteByPath(path); err != nil {
			return errs.Wrap(errs.ErrIndexError, path)
		}
		content, err := os.ReadFile(filepath.Join(req.Root, path))
		if err != nil {
			continue // per-file read failures are recovered, not fatal
		}
		chunks, err := chunker.Chunk(path, content)
		if err != nil {
			continue
		}
		for _, c := range chunks {
			if err := writer.AddChunk(c); err != nil {
				return errs.Wrap(errs.ErrIndexError, c.ID)
			}
		}
	}

	if err := writer.Commit(); err != nil {
		return errs.Wrap(errs.ErrIndexError, req.Root)
	}

	d.invalidateReader(req.Root)
	d.cache.InvalidateProject(req.Root)

	if entry, ok := d.reg.Get(req.Root); ok {
		entry.LastIndexedUnix = time.Now().Unix()
		_ = d.reg.Upsert(entry)
	}

	return nil
}
