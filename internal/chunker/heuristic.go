package chunker

import (
	"strings"

	"github.com/greppy/greppy/internal/model"
)

const (
	heuristicMaxLines = 50
	heuristicOverlap  = 5
)

// heuristicChunk splits content into line-based chunks using the
// scored-breakpoint algorithm: scan up to MAX_LINES ahead, score every
// candidate line in the second half of the window, and break at the
// best one (or the hard limit if none scored).
func heuristicChunk(path, language string, content string) []model.Chunk {
	lines := strings.Split(content, "\n")
	// strings.Split on a trailing newline yields a final empty element;
	// drop it so line counts match the file's actual line count.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	var chunks []model.Chunk
	start := 0 // 0-indexed
	for start < len(lines) {
		end := chooseBreak(lines, start)
		chunkLines := lines[start : end+1]
		startLine := start + 1
		endLine := end + 1

		text := strings.Join(chunkLines, "\n")
		if strings.TrimSpace(text) != "" {
			name, symType := scanSymbol(chunkLines)
			chunks = append(chunks, model.Chunk{
				ID:         model.ChunkID(path, startLine, endLine),
				Path:       path,
				Content:    text,
				StartLine:  startLine,
				EndLine:    endLine,
				Language:   language,
				SymbolName: name,
				SymbolType: symType,
			})
		}

		next := end - heuristicOverlap + 1
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// chooseBreak scores every candidate line in the second half of the
// window [start, start+MAX_LINES) and returns the index (0-indexed,
// inclusive) of the best break point.
func chooseBreak(lines []string, start int) int {
	limit := start + heuristicMaxLines - 1
	if limit >= len(lines) {
		limit = len(lines) - 1
	}
	if limit <= start {
		return limit
	}

	halfStart := start + (limit-start)/2
	bestIdx := limit
	bestScore := 0

	for i := halfStart; i <= limit; i++ {
		score, breakAt := scoreBreakCandidate(lines, i, start)
		if score > bestScore {
			bestScore = score
			bestIdx = breakAt
		}
	}
	return bestIdx
}

// scoreBreakCandidate scores line i as a break point and returns the
// chunk-ending index that score applies to. Most candidates break
// after themselves (index i); a top-level declaration line instead
// scores breaking before it (index i-1), so the declaration heads the
// next chunk rather than closing this one.
func scoreBreakCandidate(lines []string, i, start int) (score, breakAt int) {
	trimmed := strings.TrimSpace(lines[i])
	breakAt = i

	if trimmed == "" {
		score += 10
	}

	switch trimmed {
	case "}", "};", "];", ")":
		score += 8
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
			score += 5
		}
	}

	if indentLevel(lines[i]) == 0 {
		for _, prefix := range []string{"fn ", "pub ", "class ", "def "} {
			if strings.HasPrefix(trimmed, prefix) {
				score += 5
				if i > start {
					breakAt = i - 1
				}
				break
			}
		}
	}

	return score, breakAt
}

func indentLevel(line string) int {
	n := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			n++
			continue
		}
		break
	}
	return n
}

// symbolPrefixes maps a leading token sequence to the symbol_type it
// implies, checked against the first non-empty trimmed line of a
// chunk.
var symbolPrefixes = []struct {
	prefix string
	typ    string
}{
	{"export function", "function"},
	{"export default function", "function"},
	{"export class", "class"},
	{"async function", "function"},
	{"function", "function"},
	{"func ", "function"},
	{"fn ", "function"},
	{"def ", "function"},
	{"class ", "class"},
	{"struct ", "struct"},
	{"impl ", "impl"},
	{"trait ", "trait"},
	{"interface ", "interface"},
	{"enum ", "enum"},
	{"pub fn ", "function"},
	{"public ", "method"},
	{"private ", "method"},
	{"protected ", "method"},
}

// scanSymbol runs a one-pass first-line scan over chunkLines looking
// for a recognisable declaration prefix, extracting a best-effort
// symbol name and type. Both may be empty.
func scanSymbol(chunkLines []string) (name, symType string) {
	for _, raw := range chunkLines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		for _, sp := range symbolPrefixes {
			if strings.HasPrefix(trimmed, sp.prefix) {
				return extractIdentifier(trimmed[len(sp.prefix):]), sp.typ
			}
		}
		// first non-empty line didn't match any known declaration
		// shape; give up rather than guess from a deeper line.
		return "", ""
	}
	return "", ""
}

// extractIdentifier pulls the leading identifier-looking token out of
// the remainder of a declaration line (after its keyword prefix has
// been stripped).
func extractIdentifier(rest string) string {
	rest = strings.TrimSpace(rest)
	// skip a leading receiver/type like "(r *Receiver) Name" in Go methods
	if strings.HasPrefix(rest, "(") {
		if i := strings.Index(rest, ")"); i >= 0 {
			rest = strings.TrimSpace(rest[i+1:])
		}
	}
	i := 0
	for i < len(rest) {
		c := rest[i]
		isIdentChar := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '_'
		if !isIdentChar {
			break
		}
		i++
	}
	return rest[:i]
}
