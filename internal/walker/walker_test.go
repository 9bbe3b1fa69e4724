package walker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWalkEmitsRepoRelativePaths(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "src")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "lib.rs"), []byte("fn f() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got []string
	err := Walk(root, Options{}, func(path string) error {
		got = append(got, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d paths, want 1: %v", len(got), got)
	}
	if got[0] != "src/lib.rs" {
		t.Fatalf("got path %q, want %q", got[0], "src/lib.rs")
	}
	if filepath.IsAbs(got[0]) {
		t.Fatalf("path %q must not be absolute", got[0])
	}
}
