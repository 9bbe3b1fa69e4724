package chunker

import "path/filepath"

// extToLanguage maps a recognised source extension to greppy's lowercase
// language tag. This is the walker's single source of truth for which
// extensions are source code, and the chunker's source of truth for
// which language tag a file gets and whether an AST grammar exists.
var extToLanguage = map[string]string{
	".ts":   "typescript",
	".tsx":  "tsx",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".py":   "python",
	".pyi":  "python",
	".rs":   "rust",
	".go":   "go",
	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",
	".scala": "scala",
	".rb":   "ruby",
	".php":  "php",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".cs":   "csharp",
	".swift": "swift",
	".ex":   "elixir",
	".exs":  "elixir",
	".erl":  "erlang",
	".hrl":  "erlang",
	".hs":   "haskell",
	".ml":   "ocaml",
	".mli":  "ocaml",
	".lua":  "lua",
	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",
	".sql":  "sql",
	".vue":  "vue",
	".svelte": "svelte",
	".md":   "markdown",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".json": "json",
}

// astLanguages is the subset of language tags with a tree-sitter
// grammar wired in (see ast.go); everything else falls through to the
// heuristic splitter.
var astLanguages = map[string]bool{
	"rust": true, "typescript": true, "tsx": true, "javascript": true,
	"python": true, "go": true, "java": true, "c": true, "cpp": true,
}

// LanguageForPath returns the lowercase language tag for path, or
// "unknown" if its extension is not recognised.
func LanguageForPath(path string) string {
	ext := filepath.Ext(path)
	if lang, ok := extToLanguage[ext]; ok {
		return lang
	}
	return "unknown"
}

// HasRecognisedExtension reports whether path's extension is in the
// recognised source-code set the walker should surface.
func HasRecognisedExtension(path string) bool {
	_, ok := extToLanguage[filepath.Ext(path)]
	return ok
}
