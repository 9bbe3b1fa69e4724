package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greppy/greppy/internal/config"
	"github.com/greppy/greppy/internal/daemon"
	"github.com/greppy/greppy/internal/daemon/protocol"
	"github.com/greppy/greppy/internal/index"
	"github.com/greppy/greppy/internal/project"
	"github.com/greppy/greppy/internal/registry"
)

func newForgetCommand(getConfig func() *config.Config) *cobra.Command {
	var projectFlag string

	cmd := &cobra.Command{
		Use:   "forget [PATH]",
		Short: "Drop a project's index and registry entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			hint := projectFlag
			if hint == "" && len(args) == 1 {
				hint = args[0]
			}
			proj, err := resolveProject(hint)
			if err != nil {
				return err
			}

			if daemon.IsRunning(cfg) {
				client, err := daemon.Dial(cfg)
				if err != nil {
					return err
				}
				defer client.Close()
				if err := client.Call(protocol.MethodForget, protocol.ForgetParams{Project: proj.Root}, nil); err != nil {
					return err
				}
			} else {
				home, err := config.HomeDir(cfg)
				if err != nil {
					return err
				}
				if err := index.Delete(project.IndexDir(home, proj.Root)); err != nil {
					return err
				}
				reg, err := registry.Load(home)
				if err != nil {
					return err
				}
				if err := reg.Remove(proj.Root); err != nil {
					return err
				}
			}

			fmt.Printf("forgot %s\n", proj.Root)
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectFlag, "project", "p", "", "project root (default: resolved from cwd or PATH argument)")
	return cmd
}
