// Package watcher recursively watches one project's tree for changes
// and folds raw filesystem events into debounced, batched re-index
// requests, grounded on the fsnotify event-loop/debounce shape used by
// imicola-notebit's watcher service (a single fsnotify.Watcher, an
// event loop goroutine, timer-based debouncing) generalized from
// per-path timers to the specification's single shared pending-set
// debounce window.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/greppy/greppy/internal/chunker"
)

const (
	defaultDebounce       = 500 * time.Millisecond
	defaultEventThreshold = 100
	requestChannelCap     = 64
	pollInterval          = 50 * time.Millisecond
)

var ignoredDirNames = map[string]struct{}{
	".git": {}, ".svn": {}, ".hg": {}, "node_modules": {}, "vendor": {},
	"target": {}, "build": {}, "dist": {}, "out": {}, ".idea": {}, ".vscode": {},
}

// ReindexRequest names the files that changed or were deleted since the
// last flush for one project. Changed and Deleted are repo-relative,
// forward-slash separated paths, matching the index's stored path
// field and every other source of chunk.Path.
type ReindexRequest struct {
	Root    string
	Changed []string
	Deleted []string
}

// Watcher watches one project root recursively, folding fsnotify events
// into changed/deleted sets and flushing them as ReindexRequest values
// on Requests() once the debounce window or event threshold is hit.
type Watcher struct {
	root           string
	debounce       time.Duration
	eventThreshold int

	fsw      *fsnotify.Watcher
	requests chan ReindexRequest
	done     chan struct{}
	closeOne sync.Once

	mu        sync.Mutex
	changed   map[string]struct{}
	deleted   map[string]struct{}
	lastEvent time.Time
}

// Options tunes a Watcher's debounce behaviour.
type Options struct {
	Debounce       time.Duration // 0 uses defaultDebounce
	EventThreshold int           // 0 uses defaultEventThreshold
}

// New creates a watcher over root, adding a recursive fsnotify watch for
// every directory under it (skipping the usual ignored directory
// names), and starts its event loop. Callers must call Close when done.
func New(ctx context.Context, root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.EventThreshold <= 0 {
		opts.EventThreshold = defaultEventThreshold
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:           root,
		debounce:       opts.Debounce,
		eventThreshold: opts.EventThreshold,
		fsw:            fsw,
		requests:       make(chan ReindexRequest, requestChannelCap),
		done:           make(chan struct{}),
		changed:        make(map[string]struct{}),
		deleted:        make(map[string]struct{}),
	}

	if err := w.addTreeRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop(ctx)
	return w, nil
}

// Requests returns the channel of flushed re-index batches.
func (w *Watcher) Requests() <-chan ReindexRequest {
	return w.requests
}

// Close stops the watcher's event loop and releases its fsnotify
// handle. Safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOne.Do(func() { close(w.done) })
	return w.fsw.Close()
}

func (w *Watcher) addTreeRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if _, skip := ignoredDirNames[d.Name()]; skip && path != root {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "root", w.root, "error", err)
		case <-ticker.C:
			w.maybeFlush()
		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if _, skip := ignoredDirNames[filepath.Base(ev.Name)]; !skip {
				if err := w.addTreeRecursive(ev.Name); err != nil {
					slog.Warn("failed to watch new directory", "path", ev.Name, "error", err)
				}
			}
			return
		}
	}

	if !chunker.HasRecognisedExtension(ev.Name) {
		return
	}

	relPath, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		slog.Warn("event outside watched root", "root", w.root, "path", ev.Name)
		return
	}
	relPath = filepath.ToSlash(relPath)

	w.mu.Lock()
	switch {
	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		delete(w.changed, relPath)
		w.deleted[relPath] = struct{}{}
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		delete(w.deleted, relPath)
		w.changed[relPath] = struct{}{}
	}
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) maybeFlush() {
	w.mu.Lock()
	total := len(w.changed) + len(w.deleted)
	if total == 0 {
		w.mu.Unlock()
		return
	}
	if time.Since(w.lastEvent) < w.debounce && total < w.eventThreshold {
		w.mu.Unlock()
		return
	}

	req := ReindexRequest{
		Root:    w.root,
		Changed: keys(w.changed),
		Deleted: keys(w.deleted),
	}
	w.changed = make(map[string]struct{})
	w.deleted = make(map[string]struct{})
	w.mu.Unlock()

	select {
	case w.requests <- req:
	default:
		slog.Warn("dropping reindex batch, request channel full", "root", w.root, "changed", len(req.Changed), "deleted", len(req.Deleted))
	}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
