package daemon

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon/protocol"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Home.Dir = t.TempDir()
	cfg.Cache.Capacity = 16
	return cfg
}

func TestIsRunningFalseWhenNoPIDFile(t *testing.T) {
	cfg := testConfig(t)
	require.False(t, IsRunning(cfg))
}

func TestDialFailsWhenDaemonNotRunning(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix socket path assumed")
	}
	cfg := testConfig(t)
	_, err := Dial(cfg)
	require.Error(t, err)
}

func TestRunServesPingAndStopsOnRequest(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix socket path assumed")
	}
	cfg := testConfig(t)

	d, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return IsRunning(cfg) }, 2*time.Second, 20*time.Millisecond)

	client, err := Dial(cfg)
	require.NoError(t, err)

	var ack protocol.Ack
	require.NoError(t, client.Call(protocol.MethodPing, nil, &ack))
	require.Equal(t, "pong", ack.Message)

	require.NoError(t, client.Call(protocol.MethodStop, nil, nil))
	client.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop in time")
	}
}
