// Package registry persists the set of known projects as a single JSON
// document, generalized from the teacher's internal/cache/file_hashes.go
// (JSON load/save behind a sync.RWMutex, os.MkdirAll on construction)
// from one hash-cache file per repo to one shared document describing
// every indexed project.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/greppy/greppy/internal/errs"
	"github.com/greppy/greppy/internal/model"
)

const fileName = "registry.json"

// document is the on-disk shape of registry.json.
type document struct {
	Entries []model.RegistryEntry `json:"entries"`
}

// Registry holds the known-projects document in memory, guarded by a
// read-write lock since reads (list, for CLI/daemon status queries) are
// far more frequent than writes (upsert/remove/set_watching).
type Registry struct {
	mu   sync.RWMutex
	path string
	doc  document
}

// Load reads registry.json from homeDir, returning an empty registry if
// the file doesn't exist yet (a fresh install has never indexed
// anything).
func Load(homeDir string) (*Registry, error) {
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrIOError, homeDir)
	}

	r := &Registry{path: filepath.Join(homeDir, fileName)}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrIOError, r.path)
	}
	if len(data) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(data, &r.doc); err != nil {
		return nil, errs.Wrap(errs.ErrParseError, r.path)
	}
	return r, nil
}

// Upsert inserts entry, or replaces the existing entry with the same
// Path, then persists the document.
func (r *Registry) Upsert(entry model.RegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.doc.Entries {
		if e.Path == entry.Path {
			r.doc.Entries[i] = entry
			return r.saveLocked()
		}
	}
	r.doc.Entries = append(r.doc.Entries, entry)
	return r.saveLocked()
}

// Remove deletes the entry for root, if present, and persists the
// document. Removing an unknown root is a no-op.
func (r *Registry) Remove(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.doc.Entries[:0]
	for _, e := range r.doc.Entries {
		if e.Path != root {
			out = append(out, e)
		}
	}
	r.doc.Entries = out
	return r.saveLocked()
}

// List returns a snapshot of every registered project.
func (r *Registry) List() []model.RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.RegistryEntry, len(r.doc.Entries))
	copy(out, r.doc.Entries)
	return out
}

// SetWatching flips the watching flag for root, if registered, and
// persists the document. Setting it for an unknown root is a no-op.
func (r *Registry) SetWatching(root string, watching bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.doc.Entries {
		if e.Path == root {
			r.doc.Entries[i].Watching = watching
			return r.saveLocked()
		}
	}
	return nil
}

// Get returns the entry for root, if registered.
func (r *Registry) Get(root string) (model.RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.doc.Entries {
		if e.Path == root {
			return e, true
		}
	}
	return model.RegistryEntry{}, false
}

// saveLocked writes the document to a temp file and renames it over
// registry.json, so a crash mid-write never leaves a truncated or
// half-written document behind. Callers must hold r.mu.
func (r *Registry) saveLocked() error {
	data, err := json.MarshalIndent(r.doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrIOError, "encoding "+r.path)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrap(errs.ErrIOError, tmp)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errs.Wrap(errs.ErrIOError, r.path)
	}
	return nil
}
