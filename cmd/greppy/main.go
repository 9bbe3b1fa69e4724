// Command greppy is the local CLI front-end for the code search engine:
// it indexes a project, answers one-off queries, and manages a
// background daemon that keeps results cached and indices fresh.
// Generalized from the teacher's cmd/index/main.go and
// cmd/search-test/main.go (parse flags, wire a logger, call into an
// internal package) onto a github.com/spf13/cobra subcommand tree.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "greppy",
		Short:         "Local, sub-millisecond code search",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			configureLogging(loaded)
			return nil
		},
	}

	getConfig := func() *config.Config { return cfg }

	root.AddCommand(
		newIndexCommand(getConfig),
		newSearchCommand(getConfig),
		newReadCommand(getConfig),
		newListCommand(getConfig),
		newForgetCommand(getConfig),
		newStartCommand(getConfig),
		newStopCommand(getConfig),
		newStatusCommand(getConfig),
		newPingCommand(getConfig),
	)
	return root
}

func configureLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
