package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/pipeline"
	"github.com/greppy/greppy/internal/project"
	"github.com/greppy/greppy/internal/search"
	"github.com/greppy/greppy/internal/watcher"
)

// dispatch routes one request to its handler and always returns a
// Response: an unparseable frame never reaches here (ReadFrame already
// failed and closed the connection), but an unknown method or a handler
// error yields an `error` response on the same connection rather than
// closing it, per the protocol error policy.
func (d *Daemon) dispatch(ctx context.Context, req protocol.Request) protocol.Response {
	var (
		data interface{}
		err  error
	)

	switch req.Method {
	case protocol.MethodPing:
		data, err = protocol.Ack{Message: "pong"}, nil
	case protocol.MethodSearch:
		data, err = d.handleSearch(ctx, req.Params)
	case protocol.MethodIndex:
		data, err = d.handleIndex(ctx, req.Params)
	case protocol.MethodIndexWatch:
		data, err = d.handleIndexWatch(ctx, req.Params)
	case protocol.MethodStatus:
		data, err = d.handleStatus(), error(nil)
	case protocol.MethodList:
		data, err = protocol.ListResult{Projects: d.reg.List()}, nil
	case protocol.MethodForget:
		data, err = d.handleForget(req.Params)
	case protocol.MethodStop:
		d.Stop()
		data, err = protocol.Ack{Message: "stopping"}, nil
	default:
		return protocol.NewErrorResponse(req.ID, string(errs.KindProtocolError), fmt.Sprintf("unknown method %q", req.Method))
	}

	if err != nil {
		kind, ok := errs.KindOf(err)
		if !ok {
			kind = errs.KindIndexError
		}
		return protocol.NewErrorResponse(req.ID, string(kind), err.Error())
	}

	resp, marshalErr := protocol.NewOKResponse(req.ID, data)
	if marshalErr != nil {
		return protocol.NewErrorResponse(req.ID, string(errs.KindProtocolError), marshalErr.Error())
	}
	return resp
}

func (d *Daemon) handleSearch(ctx context.Context, raw json.RawMessage) (protocol.SearchResult, error) {
	var params protocol.SearchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.SearchResult{}, errs.Wrap(errs.ErrProtocolError, "search params")
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	root, err := d.resolveProject(params.Project)
	if err != nil {
		return protocol.SearchResult{}, err
	}

	start := time.Now()
	if cached, ok := d.cache.Get(root, params.Query, params.Limit); ok {
		return protocol.SearchResult{
			Query: params.Query, Project: root, Results: cached.Results,
			ElapsedMS: time.Since(start).Milliseconds(), Cached: true, Intent: cached.Intent,
		}, nil
	}

	reader, err := d.getReader(root)
	if err != nil {
		return protocol.SearchResult{}, err
	}

	engine := search.NewEngine(reader, search.WithReranker(d.reranker), search.WithExpander(d.expander))
	resp, err := engine.Search(ctx, params.Query, search.Options{Limit: params.Limit, SymbolBoost: d.cfg.Search.SymbolBoost, NoExpand: params.NoExpand})
	if err != nil {
		return protocol.SearchResult{}, errs.Wrap(errs.ErrSearchError, err.Error())
	}

	resp.ElapsedMS = time.Since(start).Milliseconds()
	d.cache.Add(root, params.Query, params.Limit, resp)

	return protocol.SearchResult{
		Query: params.Query, Project: root, Results: resp.Results,
		ElapsedMS: resp.ElapsedMS, Cached: false, Intent: resp.Intent,
	}, nil
}

func (d *Daemon) handleIndex(ctx context.Context, raw json.RawMessage) (protocol.IndexResult, error) {
	var params protocol.IndexParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.IndexResult{}, errs.Wrap(errs.ErrProtocolError, "index params")
	}

	root, err := d.resolveProject(params.Project)
	if err != nil {
		return protocol.IndexResult{}, err
	}

	start := time.Now()
	stats, err := d.runIndex(ctx, root, params.Force)
	if err != nil {
		return protocol.IndexResult{}, err
	}

	return protocol.IndexResult{
		Project:       root,
		FilesIndexed:  stats.FilesIndexed.Load(),
		ChunksIndexed: stats.ChunksWritten.Load(),
		ElapsedMS:     time.Since(start).Milliseconds(),
	}, nil
}

// runIndex serialises indexing on root behind its writer lock, runs the
// pipeline, then invalidates the cache and reader for root so the next
// search observes the new generation.
func (d *Daemon) runIndex(ctx context.Context, root string, force bool) (*pipeline.Stats, error) {
	lock := d.writerLock(root)
	lock.Lock()
	defer lock.Unlock()

	if _, ok, err := d.tokens.GetToken(ctx, "embedding"); err != nil {
		slog.Warn("embedding token lookup failed", "error", err)
	} else if !ok {
		slog.Debug("no embedding token configured, indexing without one")
	}

	indexDir := project.IndexDir(d.home, root)
	stats, err := pipeline.Run(ctx, root, indexDir, pipeline.Options{Force: force, Embedder: d.embedder})
	if err != nil {
		return stats, errs.Wrap(errs.ErrIndexError, err.Error())
	}

	d.invalidateReader(root)
	d.cache.InvalidateProject(root)

	entry, _ := d.reg.Get(root)
	entry.Path = root
	if entry.Name == "" {
		entry.Name = filepath.Base(root)
	}
	entry.FilesIndexed = int(stats.FilesIndexed.Load())
	entry.LastIndexedUnix = time.Now().Unix()
	if err := d.reg.Upsert(entry); err != nil {
		return stats, err
	}

	return stats, nil
}

func (d *Daemon) handleIndexWatch(ctx context.Context, raw json.RawMessage) (protocol.Ack, error) {
	var params protocol.IndexWatchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.Ack{}, errs.Wrap(errs.ErrProtocolError, "index_watch params")
	}

	root, err := d.resolveProject(params.Project)
	if err != nil {
		return protocol.Ack{}, err
	}

	if params.Enable {
		if err := d.startWatching(ctx, root); err != nil {
			return protocol.Ack{}, err
		}
	} else {
		d.stopWatching(root)
	}

	if err := d.reg.SetWatching(root, params.Enable); err != nil {
		return protocol.Ack{}, err
	}
	return protocol.Ack{Message: "ok"}, nil
}

func (d *Daemon) handleForget(raw json.RawMessage) (protocol.Ack, error) {
	var params protocol.ForgetParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return protocol.Ack{}, errs.Wrap(errs.ErrProtocolError, "forget params")
	}

	root, err := d.resolveProject(params.Project)
	if err != nil {
		return protocol.Ack{}, err
	}

	d.stopWatching(root)
	d.invalidateReader(root)
	d.cache.InvalidateProject(root)

	if err := index.Delete(project.IndexDir(d.home, root)); err != nil {
		return protocol.Ack{}, err
	}
	if err := d.reg.Remove(root); err != nil {
		return protocol.Ack{}, err
	}
	return protocol.Ack{Message: "forgotten"}, nil
}

func (d *Daemon) handleStatus() protocol.StatusResult {
	watching := 0
	for _, e := range d.reg.List() {
		if e.Watching {
			watching++
		}
	}
	return protocol.StatusResult{
		PID:              os.Getpid(),
		ProjectsIndexed:  len(d.reg.List()),
		ProjectsWatching: watching,
		UptimeSeconds:    int64(time.Since(d.startedAt).Seconds()),
		SocketPath:       d.socketPath(),
		Port:             d.port,
	}
}

// resolveProject resolves a possibly-empty project hint to a canonical
// root, defaulting to the current working directory the way the CLI
// does for an in-process call.
func (d *Daemon) resolveProject(hint string) (string, error) {
	if hint == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errs.Wrap(errs.ErrIOError, "getwd")
		}
		hint = cwd
	}
	p, err := project.Resolve(hint)
	if err != nil {
		return "", err
	}
	return p.Root, nil
}

// getReader returns the project's index reader, opening and caching it
// lazily on first use.
func (d *Daemon) getReader(root string) (*index.Reader, error) {
	d.readersMu.RLock()
	idx, ok := d.readers[root]
	d.readersMu.RUnlock()
	if ok {
		return index.NewReader(idx), nil
	}

	d.readersMu.Lock()
	defer d.readersMu.Unlock()
	if idx, ok := d.readers[root]; ok {
		return index.NewReader(idx), nil
	}

	opened, err := index.Open(project.IndexDir(d.home, root))
	if err != nil {
		return nil, err
	}
	d.readers[root] = opened
	return index.NewReader(opened), nil
}

// invalidateReader drops the cached reader for root, if any, without
// closing it: in-flight searches that already obtained a *index.Reader
// for the old generation keep it valid until they finish, per the
// daemon's documented shared-ownership policy. The underlying bleve
// index is only closed on daemon teardown.
func (d *Daemon) invalidateReader(root string) {
	d.readersMu.Lock()
	delete(d.readers, root)
	d.readersMu.Unlock()
}

func (d *Daemon) writerLock(root string) *sync.Mutex {
	d.writerLocksMu.Lock()
	defer d.writerLocksMu.Unlock()
	lock, ok := d.writerLocks[root]
	if !ok {
		lock = &sync.Mutex{}
		d.writerLocks[root] = lock
	}
	return lock
}

func (d *Daemon) restoreWatchers(ctx context.Context) {
	for _, e := range d.reg.List() {
		if !e.Watching {
			continue
		}
		if err := d.startWatching(ctx, e.Path); err != nil {
			slog.Warn("failed to restore watcher", "root", e.Path, "error", err)
		}
	}
}

func (d *Daemon) startWatching(ctx context.Context, root string) error {
	d.watchersMu.Lock()
	if _, ok := d.watchers[root]; ok {
		d.watchersMu.Unlock()
		return nil
	}
	d.watchersMu.Unlock()

	w, err := watcher.New(ctx, root, watcher.Options{
		Debounce:       time.Duration(d.cfg.Watcher.DebounceMS) * time.Millisecond,
		EventThreshold: d.cfg.Watcher.EventThreshold,
	})
	if err != nil {
		return errs.Wrap(errs.ErrIOError, root)
	}

	d.watchersMu.Lock()
	d.watchers[root] = w
	d.watchersMu.Unlock()

	go d.consumeReindexRequests(ctx, w)
	return nil
}

func (d *Daemon) stopWatching(root string) {
	d.watchersMu.Lock()
	w, ok := d.watchers[root]
	delete(d.watchers, root)
	d.watchersMu.Unlock()
	if ok {
		w.Close()
	}
}

func (d *Daemon) consumeReindexRequests(ctx context.Context, w *watcher.Watcher) {
	for req := range w.Requests() {
		if err := d.applyReindexRequest(req); err != nil {
			slog.Warn("incremental re-index failed", "root", req.Root, "error", err)
		}
	}
}
