package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/pipeline"
	"github.com/greppy/greppy/internal/project"
)

func newIndexCommand(getConfig func() *config.Config) *cobra.Command {
	var (
		projectFlag string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh a project's search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			proj, err := resolveProject(projectFlag)
			if err != nil {
				return err
			}

			if daemon.IsRunning(cfg) {
				return indexViaDaemon(cfg, proj.Root, force)
			}
			return indexInProcess(cmd.Context(), cfg, proj.Root, force)
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project root (default: resolved from cwd)")
	cmd.Flags().BoolVar(&force, "force", false, "delete and rebuild the index from scratch")
	return cmd
}

func indexViaDaemon(cfg *config.Config, root string, force bool) error {
	client, err := daemon.Dial(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	var result protocol.IndexResult
	if err := client.Call(protocol.MethodIndex, protocol.IndexParams{Project: root, Force: force}, &result); err != nil {
		return err
	}
	fmt.Printf("indexed %s: %d files, %d chunks (%dms)\n", result.Project, result.FilesIndexed, result.ChunksIndexed, result.ElapsedMS)
	return nil
}

func indexInProcess(ctx context.Context, cfg *config.Config, root string, force bool) error {
	home, err := config.HomeDir(cfg)
	if err != nil {
		return err
	}
	indexDir := project.IndexDir(home, root)

	slog.Info("indexing", "root", root, "force", force)
	stats, err := pipeline.Run(ctx, root, indexDir, pipeline.Options{
		Force:           force,
		Workers:         cfg.Indexing.ParallelWorkers,
		ChannelCapacity: cfg.Indexing.ChannelCapacity,
		EmbedBatchSize:  cfg.Indexing.EmbedBatchSize,
	})
	if err != nil {
		return err
	}
	fmt.Printf("indexed %s: %d files, %d chunks\n", root, stats.FilesIndexed.Load(), stats.ChunksWritten.Load())
	return nil
}
