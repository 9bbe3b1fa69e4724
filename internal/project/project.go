// Package project resolves a starting path to its project root by
// walking ancestor directories for a recognised marker file, the way
// the teacher's scanner locates a repository to index.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/model"
)

// markers lists the fixed set of files whose presence identifies a
// directory as a project root, tried in this order.
var markers = []struct {
	name string
	typ  string
}{
	{".greppy", "greppy"},
	{".git", "git"},
	{"package.json", "npm"},
	{"Cargo.toml", "cargo"},
	{"pyproject.toml", "python"},
	{"setup.py", "python"},
	{"go.mod", "go"},
	{"pom.xml", "maven"},
	{"build.gradle", "gradle"},
	{"Gemfile", "ruby"},
	{"composer.json", "php"},
	{"mix.exs", "elixir"},
	{"deno.json", "deno"},
	{"bun.lockb", "bun"},
}

// Resolve canonicalises startPath and walks its ancestors until a
// marker is found or the filesystem root is reached.
func Resolve(startPath string) (model.Project, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return model.Project{}, fmt.Errorf("resolving %q: %w", startPath, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		canonical = abs
	}

	info, err := os.Stat(canonical)
	dir := canonical
	if err == nil && !info.IsDir() {
		dir = filepath.Dir(canonical)
	}

	for {
		for _, m := range markers {
			if _, err := os.Stat(filepath.Join(dir, m.name)); err == nil {
				return model.Project{
					Root: dir,
					Name: filepath.Base(dir),
					Type: m.typ,
				}, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return model.Project{}, errs.Wrap(errs.ErrNoProjectRoot, startPath)
		}
		dir = parent
	}
}

// IndexDir returns the deterministic per-project index directory for
// root, rooted under home. It is a pure function of its inputs.
func IndexDir(home, root string) string {
	return filepath.Join(home, "indexes", RootHash(root))
}

// RootHash is the 16-hex xxh3-64 digest of the canonical project root,
// used both for the index directory name and anywhere else a stable,
// filesystem-safe project id is needed.
func RootHash(root string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(root))
}
