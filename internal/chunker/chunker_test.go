package chunker

import "testing"

func TestChunkRustFunctionViaAST(t *testing.T) {
	src := []byte("pub fn authenticate(username: &str, password: &str) -> bool {\n    true\n}\n")
	chunks, err := Chunk("lib.rs", src)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.SymbolName != "authenticate" {
		t.Fatalf("got symbol name %q, want authenticate", c.SymbolName)
	}
	if c.SymbolType != "function" && c.SymbolType != "method" {
		t.Fatalf("got symbol type %q", c.SymbolType)
	}
	if c.StartLine != 1 {
		t.Fatalf("got start line %d, want 1", c.StartLine)
	}
	if c.Language != "rust" {
		t.Fatalf("got language %q, want rust", c.Language)
	}
	if c.FileHash == "" {
		t.Fatal("expected a non-empty file hash")
	}
}

func TestChunkFallsBackToHeuristicForUnknownLanguage(t *testing.T) {
	src := []byte("line one\nline two\nline three\n")
	chunks, err := Chunk("notes.txt", src)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	for _, c := range chunks {
		if c.Language != "unknown" {
			t.Fatalf("got language %q, want unknown", c.Language)
		}
	}
}

func TestChunkStampsSameFileHashAcrossChunks(t *testing.T) {
	src := []byte("fn a() {}\nfn b() {}\n")
	chunks, err := Chunk("x.unknown", src)
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	want := chunks[0].FileHash
	for _, c := range chunks {
		if c.FileHash != want {
			t.Fatalf("file hash differs across chunks of the same file: %q vs %q", c.FileHash, want)
		}
	}
}

func TestFileHashChangesWithContent(t *testing.T) {
	h1 := FileHash([]byte("a"))
	h2 := FileHash([]byte("b"))
	if h1 == h2 {
		t.Fatal("FileHash collided for distinct inputs")
	}
	if FileHash([]byte("a")) != h1 {
		t.Fatal("FileHash not deterministic")
	}
}

func TestLanguageForPath(t *testing.T) {
	cases := map[string]string{
		"a.rs": "rust", "a.go": "go", "a.py": "python", "a.ts": "typescript",
		"a.tsx": "tsx", "a.unknown": "unknown",
	}
	for path, want := range cases {
		if got := LanguageForPath(path); got != want {
			t.Errorf("LanguageForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
