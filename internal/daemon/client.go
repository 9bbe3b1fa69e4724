package daemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/errs"
)

// Client is a thin synchronous connection to a running daemon, used by
// the CLI to delegate a single request/response round trip.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the daemon's socket (or loopback port on Windows)
// under cfg's home directory. Callers should check IsRunning first;
// Dial itself just attempts the connection.
func Dial(cfg *config.Config) (*Client, error) {
	home, err := config.HomeDir(cfg)
	if err != nil {
		return nil, err
	}

	var conn net.Conn
	if runtime.GOOS == "windows" {
		portBytes, err := os.ReadFile(portFilePathFor(home))
		if err != nil {
			return nil, errs.Wrap(errs.ErrDaemonNotRunning, "reading port file")
		}
		port := strings.TrimSpace(string(portBytes))
		conn, err = net.DialTimeout("tcp", "127.0.0.1:"+port, 2*time.Second)
		if err != nil {
			return nil, errs.Wrap(errs.ErrDaemonNotRunning, "dialing daemon port")
		}
	} else {
		sock := cfg.Daemon.SocketPath
		if sock == "" {
			sock = socketPathFor(home)
		}
		conn, err = net.DialTimeout("unix", sock, 2*time.Second)
		if err != nil {
			return nil, errs.Wrap(errs.ErrDaemonNotRunning, "dialing daemon socket")
		}
	}

	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Call sends method with params marshalled as the request payload and
// waits for the matching response, decoding its data payload into out.
func (c *Client) Call(method protocol.Method, params interface{}, out interface{}) error {
	req, err := protocol.NewRequest(method, params)
	if err != nil {
		return err
	}
	if err := protocol.WriteFrame(c.conn, req); err != nil {
		return errs.Wrap(errs.ErrDaemonError, "writing request")
	}

	var resp protocol.Response
	if err := protocol.ReadFrame(c.r, &resp); err != nil {
		return errs.Wrap(errs.ErrDaemonError, "reading response")
	}
	if !resp.OK {
		msg := "daemon error"
		if resp.Error != nil {
			msg = fmt.Sprintf("%s: %s", resp.Error.Kind, resp.Error.Message)
		}
		return fmt.Errorf("%s", msg)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	return json.Unmarshal(resp.Data, out)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// IsRunning reports whether a daemon appears to be alive for cfg's home
// directory: its PID file exists and that process can still be signalled.
func IsRunning(cfg *config.Config) bool {
	home, err := config.HomeDir(cfg)
	if err != nil {
		return false
	}
	data, err := os.ReadFile(pidFilePathFor(home))
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false
	}
	return processAlive(pid)
}

func pidFilePathFor(home string) string  { return filepath.Join(home, pidFileName) }
func socketPathFor(home string) string   { return filepath.Join(home, sockFileName) }
func portFilePathFor(home string) string { return filepath.Join(home, portFileName) }
