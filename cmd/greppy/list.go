package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/model"
	"github.com/greppy/greppy/internal/registry"
)

func newListCommand(getConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			var entries []model.RegistryEntry
			if daemon.IsRunning(cfg) {
				client, err := daemon.Dial(cfg)
				if err != nil {
					return err
				}
				defer client.Close()

				var result protocol.ListResult
				if err := client.Call(protocol.MethodList, nil, &result); err != nil {
					return err
				}
				entries = result.Projects
			} else {
				home, err := config.HomeDir(cfg)
				if err != nil {
					return err
				}
				reg, err := registry.Load(home)
				if err != nil {
					return err
				}
				entries = reg.List()
			}

			if len(entries) == 0 {
				fmt.Println("no registered projects")
				return nil
			}
			for _, e := range entries {
				watching := ""
				if e.Watching {
					watching = " [watching]"
				}
				fmt.Printf("%s  (%d files)%s\n", e.Path, e.FilesIndexed, watching)
			}
			return nil
		},
	}
}
