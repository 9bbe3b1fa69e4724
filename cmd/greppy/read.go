package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/project"
)

func newReadCommand(getConfig func() *config.Config) *cobra.Command {
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "read CHUNK_ID",
		Short: "Print one indexed chunk by its id without scoring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			id := args[0]
			proj, err := resolveProject(projectFlag)
			if err != nil {
				return err
			}

			home, err := config.HomeDir(cfg)
			if err != nil {
				return err
			}
			idx, err := index.Open(project.IndexDir(home, proj.Root))
			if err != nil {
				return err
			}
			defer idx.Close()

			reader := index.NewReader(idx)
			result, found, err := reader.ReadRange(id)
			if err != nil {
				return err
			}
			if !found {
				return errs.Wrap(errs.ErrIndexNotFound, id)
			}

			fmt.Printf("%s:%d-%d\n", result.Path, result.StartLine, result.EndLine)
			fmt.Println(result.Content)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project root (default: resolved from cwd)")
	return cmd
}
