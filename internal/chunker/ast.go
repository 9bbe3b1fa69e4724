package chunker

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/greppy/greppy/internal/model"
)

// astParsers holds one tree-sitter parser per AST-capable language.
// Parsers are not safe for concurrent use, so every call goes through
// mu the way the teacher's ASTChunker protects its parser map.
type astParsers struct {
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
}

var globalParsers = newASTParsers()

func newASTParsers() *astParsers {
	p := &astParsers{parsers: make(map[string]*sitter.Parser)}
	languages := map[string]sitter.Language{
		"rust":       rust.GetLanguage(),
		"typescript": typescript.GetLanguage(),
		"tsx":        tsx.GetLanguage(),
		"javascript": javascript.GetLanguage(),
		"python":     python.GetLanguage(),
		"go":         golang.GetLanguage(),
		"java":       java.GetLanguage(),
		"c":          c.GetLanguage(),
		"cpp":        cpp.GetLanguage(),
	}
	for lang, grammar := range languages {
		parser := sitter.NewParser()
		parser.SetLanguage(grammar)
		p.parsers[lang] = parser
	}
	return p
}

func (p *astParsers) parse(ctx context.Context, language string, content []byte) (*sitter.Tree, bool) {
	p.mu.Lock()
	parser, ok := p.parsers[language]
	if !ok {
		p.mu.Unlock()
		return nil, false
	}
	tree, err := parser.ParseCtx(ctx, nil, content)
	p.mu.Unlock()
	if err != nil {
		return nil, false
	}
	return tree, true
}

// astChunk attempts to split content using the tree-sitter grammar for
// language, returning ok=false when no grammar is wired in or parsing
// fails, so the caller can fall back to the heuristic splitter.
func astChunk(path, language string, content []byte) ([]model.Chunk, bool) {
	if !astLanguages[language] {
		return nil, false
	}
	tree, ok := globalParsers.parse(context.Background(), language, content)
	if !ok || tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, false
	}

	walker := &astWalker{
		language: language,
		content:  content,
		path:     path,
	}
	walker.walk(root, nil)
	return walker.chunks, len(walker.chunks) > 0
}

// astWalker performs a recursive descent over the tree, maintaining a
// small stack of enclosing container names. A function-like node with
// a non-empty stack is tagged as a method; the container's name itself
// is not recorded on the emitted chunk.
type astWalker struct {
	language string
	content  []byte
	path     string
	chunks   []model.Chunk
	stack    []string // enclosing container names, innermost last
}

var containerKinds = map[string]bool{
	"impl_item": true, "class_declaration": true, "class_specifier": true,
	"class_definition": true, "struct_specifier": true, "trait_item": true,
}

func (w *astWalker) walk(node *sitter.Node, parent *sitter.Node) {
	kinds := chunkableNodeTypes[w.language]
	nodeType := node.Type()

	if contains(kinds, nodeType) {
		// descend through thin wrappers (export_statement, decorated_definition)
		// to the real declaration, per spec's "export_statement wrapping
		// any of the above".
		if nodeType == "export_statement" || nodeType == "decorated_definition" {
			for i := 0; i < int(node.ChildCount()); i++ {
				child := node.Child(i)
				if contains(kinds, child.Type()) {
					w.walk(child, parent)
					return
				}
			}
		}
		w.emitChunk(node)
		if containerKinds[nodeType] {
			w.stack = append(w.stack, w.symbolName(node))
			defer func() { w.stack = w.stack[:len(w.stack)-1] }()
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i), node)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (w *astWalker) emitChunk(node *sitter.Node) {
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	content := string(w.content[node.StartByte():node.EndByte()])

	isMethod := len(w.stack) > 0
	symType := symbolTypeForNode(w.language, node.Type(), isMethod)
	if symType == "" {
		return
	}

	w.chunks = append(w.chunks, model.Chunk{
		ID:         model.ChunkID(w.path, startLine, endLine),
		Path:       w.path,
		Content:    content,
		StartLine:  startLine,
		EndLine:    endLine,
		Language:   w.language,
		SymbolName: w.symbolName(node),
		SymbolType: symType,
	})
}

// symbolName extracts the declared identifier for node, looking for a
// "name" field first (most grammars expose one), falling back to the
// first identifier-ish child, and recursing one level into
// variable_declarator for const/let function expressions.
func (w *astWalker) symbolName(node *sitter.Node) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return string(w.content[name.StartByte():name.EndByte()])
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		return string(w.content[typ.StartByte():typ.EndByte()])
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier", "type_identifier",
			"property_identifier":
			return string(w.content[child.StartByte():child.EndByte()])
		case "variable_declarator":
			if name := child.ChildByFieldName("name"); name != nil {
				return string(w.content[name.StartByte():name.EndByte()])
			}
		}
	}
	return strings.TrimSpace(firstLine(string(w.content[node.StartByte():node.EndByte()])))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
