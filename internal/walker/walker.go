// Package walker traverses a project tree yielding candidate source
// files, honouring hidden-file, gitignore, global-ignore, and exclude
// rules cumulatively, and a per-file size cap.
package walker

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/greppy/greppy/internal/chunker"
)

// Options configures a walk.
type Options struct {
	MaxFileSizeBytes int64 // 0 disables the cap
}

// DefaultOptions mirrors the spec's default 1 MiB cap.
func DefaultOptions() Options {
	return Options{MaxFileSizeBytes: 1 << 20}
}

// Walk emits every candidate source path under root on fn, skipping
// ignored directories entirely and filtering files by hidden-ness,
// extension, and size. The path passed to fn is repository-relative and
// forward-slash separated, per the data model's path field. fn errors
// abort the walk.
func Walk(root string, opts Options, fn func(path string) error) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root %q: %w", root, err)
	}

	global := loadGlobalPatterns()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("relativising %q: %w", path, relErr)
		}
		relPath = filepath.ToSlash(relPath)
		segments := strings.Split(relPath, "/")

		if isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		matcher := buildMatcher(root, path, global)
		if matcher.Match(segments, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if !chunker.HasRecognisedExtension(path) {
			return nil
		}

		if opts.MaxFileSizeBytes > 0 {
			info, infoErr := d.Info()
			if infoErr != nil {
				return fmt.Errorf("stat %q: %w", path, infoErr)
			}
			if info.Size() > opts.MaxFileSizeBytes {
				return nil
			}
		}

		return fn(relPath)
	})
}

// isHidden reports whether name (a single path segment) should be
// treated as a hidden file/directory.
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// buildMatcher accumulates gitignore patterns cumulatively from every
// ancestor directory between root and the directory containing path,
// plus the repo's .git/info/exclude and the supplied global patterns.
// go-git's own gitignore package provides real .gitignore pattern
// semantics (negation, anchoring, directory-only rules) instead of a
// hand-rolled glob matcher.
func buildMatcher(root, path string, global []gitignore.Pattern) gitignore.Matcher {
	patterns := append([]gitignore.Pattern{}, global...)
	patterns = append(patterns, builtinPatterns()...)

	dir := filepath.Dir(path)
	var dirs []string
	for {
		dirs = append([]string{dir}, dirs...)
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	for _, d := range dirs {
		rel, err := filepath.Rel(root, d)
		if err != nil {
			continue
		}
		var domain []string
		if rel != "." {
			domain = strings.Split(filepath.ToSlash(rel), "/")
		}
		patterns = append(patterns, readIgnoreFile(filepath.Join(d, ".gitignore"), domain)...)
	}
	patterns = append(patterns, readIgnoreFile(filepath.Join(root, ".git", "info", "exclude"), nil)...)

	return gitignore.NewMatcher(patterns)
}

func readIgnoreFile(path string, domain []string) []gitignore.Pattern {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, domain))
	}
	return patterns
}

// loadGlobalPatterns reads the VCS-global ignore file, mirroring
// git's own $XDG_CONFIG_HOME/git/ignore convention.
func loadGlobalPatterns() []gitignore.Pattern {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		configHome = filepath.Join(home, ".config")
	}
	return readIgnoreFile(filepath.Join(configHome, "git", "ignore"), nil)
}

// builtinPatterns are always-ignored paths, independent of any
// .gitignore file, matching the directories the teacher's own default
// ignore list names.
func builtinPatterns() []gitignore.Pattern {
	raw := []string{
		".git/", ".svn/", ".hg/",
		"node_modules/", "vendor/", "target/", "build/", "dist/", "out/",
		".idea/", ".vscode/",
	}
	patterns := make([]gitignore.Pattern, 0, len(raw))
	for _, p := range raw {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	return patterns
}
