package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/model"
	"github.com/greppy/greppy/internal/project"
	"github.com/greppy/greppy/internal/search"
)

func newSearchCommand(getConfig func() *config.Config) *cobra.Command {
	var (
		projectFlag string
		limit       int
		asJSON      bool
		noExpand    bool
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search a project's index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			query := args[0]
			proj, err := resolveProject(projectFlag)
			if err != nil {
				return err
			}

			var resp model.SearchResponse
			if daemon.IsRunning(cfg) {
				resp, err = searchViaDaemon(cfg, proj.Root, query, limit, noExpand)
			} else {
				resp, err = searchInProcess(cmd.Context(), cfg, proj.Root, query, limit, noExpand)
			}
			if err != nil {
				return err
			}

			return printResults(resp, asJSON)
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project root (default: resolved from cwd)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "disable synonym/intent query expansion")
	return cmd
}

func searchViaDaemon(cfg *config.Config, root, query string, limit int, noExpand bool) (model.SearchResponse, error) {
	client, err := daemon.Dial(cfg)
	if err != nil {
		return model.SearchResponse{}, err
	}
	defer client.Close()

	var result protocol.SearchResult
	params := protocol.SearchParams{Query: query, Project: root, Limit: limit, NoExpand: noExpand}
	if err := client.Call(protocol.MethodSearch, params, &result); err != nil {
		return model.SearchResponse{}, err
	}
	return model.SearchResponse{
		Results:   result.Results,
		Cached:    result.Cached,
		ElapsedMS: result.ElapsedMS,
		Intent:    result.Intent,
	}, nil
}

func searchInProcess(ctx context.Context, cfg *config.Config, root, query string, limit int, noExpand bool) (model.SearchResponse, error) {
	home, err := config.HomeDir(cfg)
	if err != nil {
		return model.SearchResponse{}, err
	}
	idx, err := index.Open(project.IndexDir(home, root))
	if err != nil {
		return model.SearchResponse{}, err
	}
	defer idx.Close()

	reader := index.NewReader(idx)
	engine := search.NewEngine(reader)
	return engine.Search(ctx, query, search.Options{Limit: limit, SymbolBoost: cfg.Search.SymbolBoost, NoExpand: noExpand})
}

func printResults(resp model.SearchResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if resp.Intent != "" {
		fmt.Printf("intent: %s\n", resp.Intent)
	}
	for _, r := range resp.Results {
		fmt.Printf("%s:%d-%d", r.Path, r.StartLine, r.EndLine)
		if r.SymbolName != "" {
			fmt.Printf(" (%s %s)", r.SymbolType, r.SymbolName)
		}
		fmt.Printf("  score=%.3f\n", r.Score)
	}
	if len(resp.Results) == 0 {
		fmt.Println("no results")
	}
	return nil
}
