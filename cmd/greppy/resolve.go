package main

import (
	"os"

	"github.com/greppy/greppy/internal/model"
	"github.com/greppy/greppy/internal/project"
)

// resolveProject resolves the --project flag (or the current working
// directory when empty) to a project root the way the daemon's own
// resolveProject does for an in-process call.
func resolveProject(hint string) (model.Project, error) {
	if hint == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return model.Project{}, err
		}
		hint = cwd
	}
	return project.Resolve(hint)
}
