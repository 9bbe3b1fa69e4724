package chunker

import (
	"strings"
	"testing"
)

func TestHeuristicChunkCoversAllLines(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("x = 1\n")
	}
	chunks := heuristicChunk("f.unknown", "unknown", b.String())
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	covered := make(map[int]bool)
	for _, c := range chunks {
		if c.StartLine > c.EndLine {
			t.Fatalf("chunk %+v has start > end", c)
		}
		for l := c.StartLine; l <= c.EndLine; l++ {
			covered[l] = true
		}
	}
	for l := 1; l <= 200; l++ {
		if !covered[l] {
			t.Fatalf("line %d not covered by any chunk", l)
		}
	}
}

func TestHeuristicChunkDeterministicIDs(t *testing.T) {
	content := "pub fn authenticate(username: &str) -> bool {\n    true\n}\n"
	c1 := heuristicChunk("lib.rs", "rust", content)
	c2 := heuristicChunk("lib.rs", "rust", content)
	if len(c1) != len(c2) {
		t.Fatalf("chunk counts differ across identical runs: %d vs %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i].ID != c2[i].ID {
			t.Fatalf("chunk id not deterministic: %q vs %q", c1[i].ID, c2[i].ID)
		}
	}
}

func TestScanSymbolExtractsFunctionName(t *testing.T) {
	name, typ := scanSymbol([]string{"fn authenticate(username: &str) -> bool {", "    true", "}"})
	if name != "authenticate" {
		t.Fatalf("got name %q, want authenticate", name)
	}
	if typ != "function" {
		t.Fatalf("got type %q, want function", typ)
	}
}

func TestScanSymbolEmptyOnUnrecognised(t *testing.T) {
	name, typ := scanSymbol([]string{"x := 1", "y := 2"})
	if name != "" || typ != "" {
		t.Fatalf("expected empty symbol, got (%q, %q)", name, typ)
	}
}

func TestChooseBreakEndsBeforeTopLevelDeclaration(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "    x = 1"
	}
	lines[30] = "fn nextThing() {"

	end := chooseBreak(lines, 0)
	if end != 29 {
		t.Fatalf("got break index %d, want 29 (line before the fn at 30)", end)
	}
}

func TestChooseBreakRespectsHardLimit(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "a = 1"
	}
	end := chooseBreak(lines, 0)
	if end >= heuristicMaxLines {
		t.Fatalf("chooseBreak exceeded MAX_LINES: %d", end)
	}
}
