// Package daemon runs greppy as a long-lived local process: one index
// reader per active project, an LRU result cache, per-project
// filesystem watchers, and a length-prefixed request/response protocol
// over a local socket. Generalized from the teacher's cmd/server/main.go
// startup/shutdown sequencing (signal.Notify, context cancellation) from
// a stdio MCP transport to a local socket transport.
package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/greppy/greppy/internal/authstore"
	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/embed"
	"github.com/greppy/greppy/internal/registry"
	"github.com/greppy/greppy/internal/rerank"
	"github.com/greppy/greppy/internal/resultcache"
	"github.com/greppy/greppy/internal/watcher"

	"github.com/blevesearch/bleve/v2"
)

const (
	pidFileName  = "daemon.pid"
	sockFileName = "daemon.sock"
	portFileName = "daemon.port"
)

// Daemon owns every piece of process-wide state: the registry, the
// result cache, per-project index readers, per-project writer
// serialisation locks, and per-project watchers.
type Daemon struct {
	cfg  *config.Config
	home string

	reg   *registry.Registry
	cache *resultcache.Cache

	embedder embed.Batcher
	tokens   authstore.TokenStore
	reranker rerank.Transformer
	expander rerank.Expander

	readersMu sync.RWMutex
	readers   map[string]bleve.Index

	writerLocksMu sync.Mutex
	writerLocks   map[string]*sync.Mutex

	watchersMu sync.Mutex
	watchers   map[string]*watcher.Watcher

	listener  net.Listener
	port      int
	startedAt time.Time
	cancel    context.CancelFunc
}

// New constructs a Daemon from cfg, loading the registry and result
// cache but not yet binding a socket.
func New(cfg *config.Config) (*Daemon, error) {
	home, err := config.HomeDir(cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("creating home directory %q: %w", home, err)
	}

	reg, err := registry.Load(home)
	if err != nil {
		return nil, err
	}
	cache, err := resultcache.New(cfg.Cache.Capacity)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:         cfg,
		home:        home,
		reg:         reg,
		cache:       cache,
		embedder:    embed.NoopBatcher{},
		tokens:      authstore.NoopStore{},
		readers:     make(map[string]bleve.Index),
		writerLocks: make(map[string]*sync.Mutex),
		watchers:    make(map[string]*watcher.Watcher),
	}, nil
}

// SetEmbedder overrides the default no-op embedding batcher used by
// indexing operations the daemon runs.
func (d *Daemon) SetEmbedder(b embed.Batcher) {
	if b != nil {
		d.embedder = b
	}
}

// SetTokenStore overrides the default no-op token store the daemon
// consults for the embedder's credentials before indexing.
func (d *Daemon) SetTokenStore(s authstore.TokenStore) {
	if s != nil {
		d.tokens = s
	}
}

// SetReranker sets the Transformer the daemon hands to every search
// engine it builds, reordering candidates after retrieval.
func (d *Daemon) SetReranker(r rerank.Transformer) {
	d.reranker = r
}

// SetExpander sets the Expander the daemon hands to every search
// engine it builds, rewriting a query before built-in expansion runs.
func (d *Daemon) SetExpander(x rerank.Expander) {
	d.expander = x
}

// Run binds the daemon's socket (or port file on Windows), writes the
// PID file, restarts watchers for every registry entry still marked
// watching, and serves connections until ctx is cancelled or a `stop`
// request arrives. Teardown removes every file Run created, so a
// second Run after a clean shutdown starts from a clean slate.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	listener, err := d.bind()
	if err != nil {
		return err
	}
	d.listener = listener
	defer d.teardown()

	if err := d.writePIDFile(); err != nil {
		return err
	}

	d.startedAt = time.Now()
	d.restoreWatchers(runCtx)

	go func() {
		<-runCtx.Done()
		listener.Close()
	}()

	slog.Info("daemon listening", "home", d.home)
	for {
		conn, err := listener.Accept()
		if err != nil {
			if runCtx.Err() != nil {
				return nil
			}
			slog.Warn("accept error", "error", err)
			continue
		}
		go d.handleConn(runCtx, conn)
	}
}

// Stop triggers the broadcast shutdown signal that ends Run. The `stop`
// request handler calls it; the CLI's `stop` subcommand reaches it by
// sending that request over the socket.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

func (d *Daemon) bind() (net.Listener, error) {
	if runtime.GOOS == "windows" {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return nil, fmt.Errorf("binding daemon port: %w", err)
		}
		d.port = l.Addr().(*net.TCPAddr).Port
		if err := os.WriteFile(d.portFilePath(), []byte(strconv.Itoa(d.port)), 0o644); err != nil {
			l.Close()
			return nil, fmt.Errorf("writing port file: %w", err)
		}
		return l, nil
	}

	sockPath := d.socketPath()
	os.Remove(sockPath) // clear a stale socket from an unclean shutdown
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("binding daemon socket %q: %w", sockPath, err)
	}
	return l, nil
}

func (d *Daemon) teardown() {
	if d.listener != nil {
		d.listener.Close()
	}
	os.Remove(d.pidFilePath())
	os.Remove(d.socketPath())
	os.Remove(d.portFilePath())

	d.watchersMu.Lock()
	for _, w := range d.watchers {
		w.Close()
	}
	d.watchersMu.Unlock()

	d.readersMu.Lock()
	for _, r := range d.readers {
		r.Close()
	}
	d.readersMu.Unlock()
}

func (d *Daemon) writePIDFile() error {
	return os.WriteFile(d.pidFilePath(), []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func (d *Daemon) pidFilePath() string {
	return filepath.Join(d.home, pidFileName)
}

func (d *Daemon) socketPath() string {
	if d.cfg.Daemon.SocketPath != "" {
		return d.cfg.Daemon.SocketPath
	}
	return filepath.Join(d.home, sockFileName)
}

func (d *Daemon) portFilePath() string {
	return filepath.Join(d.home, portFileName)
}

func (d *Daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for {
		var req protocol.Request
		if err := protocol.ReadFrame(reader, &req); err != nil {
			return
		}

		resp := d.dispatch(ctx, req)
		if err := protocol.WriteFrame(conn, resp); err != nil {
			return
		}
	}
}
