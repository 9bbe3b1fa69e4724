package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/embed"
)

func newStartCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the greppy daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if daemon.IsRunning(cfg) {
				return fmt.Errorf("daemon already running")
			}

			d, err := daemon.New(cfg)
			if err != nil {
				return err
			}
			d.SetEmbedder(embed.NoopBatcher{})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				slog.Info("shutting down")
				cancel()
			}()

			return d.Run(ctx)
		},
	}
}

func newStopCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if !daemon.IsRunning(cfg) {
				fmt.Println("daemon not running")
				return nil
			}
			client, err := daemon.Dial(cfg)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Call(protocol.MethodStop, nil, nil); err != nil {
				return err
			}
			fmt.Println("stopping")
			return nil
		},
	}
}

func newStatusCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if !daemon.IsRunning(cfg) {
				fmt.Println("daemon not running")
				return nil
			}
			client, err := daemon.Dial(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			var status protocol.StatusResult
			if err := client.Call(protocol.MethodStatus, nil, &status); err != nil {
				return err
			}
			fmt.Printf("pid=%d projects=%d watching=%d uptime=%ds\n",
				status.PID, status.ProjectsIndexed, status.ProjectsWatching, status.UptimeSeconds)
			return nil
		},
	}
}

func newPingCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the daemon is responsive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			if !daemon.IsRunning(cfg) {
				return fmt.Errorf("daemon not running")
			}
			client, err := daemon.Dial(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			var ack protocol.Ack
			if err := client.Call(protocol.MethodPing, nil, &ack); err != nil {
				return err
			}
			fmt.Println(ack.Message)
			return nil
		},
	}
}
