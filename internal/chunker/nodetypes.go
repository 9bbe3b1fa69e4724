package chunker

// chunkableNodeTypes lists, per language, the tree-sitter node kinds
// that become their own chunk, taken directly from the per-language
// tables the specification enumerates.
var chunkableNodeTypes = map[string][]string{
	"rust": {
		"function_item", "impl_item", "struct_item", "enum_item",
		"mod_item", "trait_item", "const_item", "static_item", "type_item",
	},
	"python": {
		"function_definition", "class_definition", "decorated_definition",
	},
	"typescript": {
		"function_declaration", "class_declaration", "interface_declaration",
		"enum_declaration", "method_definition", "type_alias_declaration",
		"lexical_declaration", "variable_declaration", "export_statement",
	},
	"tsx": {
		"function_declaration", "class_declaration", "interface_declaration",
		"enum_declaration", "method_definition", "type_alias_declaration",
		"lexical_declaration", "variable_declaration", "export_statement",
	},
	"javascript": {
		"function_declaration", "class_declaration", "method_definition",
		"lexical_declaration", "variable_declaration", "export_statement",
	},
	"go": {
		"function_declaration", "method_declaration", "type_declaration",
	},
	"java": {
		"class_declaration", "interface_declaration", "enum_declaration",
		"method_declaration", "constructor_declaration",
	},
	"c": {
		"function_definition", "struct_specifier", "enum_specifier",
	},
	"cpp": {
		"function_definition", "struct_specifier", "enum_specifier",
		"class_specifier",
	},
}

// symbolTypeForNode maps a tree-sitter node kind to one of the closed
// symbol_type values. isMethod overrides function/method-like kinds
// when a container ancestor (class/impl/struct) is on the context
// stack.
func symbolTypeForNode(language, nodeType string, isMethod bool) string {
	switch nodeType {
	case "function_item", "function_definition", "function_declaration":
		if isMethod {
			return "method"
		}
		return "function"
	case "method_definition", "method_declaration", "constructor_declaration":
		return "method"
	case "class_declaration", "class_specifier", "class_definition":
		return "class"
	case "struct_item", "struct_specifier":
		return "struct"
	case "enum_item", "enum_declaration", "enum_specifier":
		return "enum"
	case "trait_item":
		return "trait"
	case "impl_item":
		return "impl"
	case "interface_declaration":
		return "interface"
	case "mod_item":
		return "module"
	case "const_item", "static_item":
		return "constant"
	case "type_item", "type_alias_declaration", "type_declaration":
		return "type"
	case "lexical_declaration", "variable_declaration":
		return "variable"
	case "decorated_definition", "export_statement":
		// caller should have already recursed into the wrapped node;
		// this default only applies if it couldn't.
		return "function"
	default:
		return ""
	}
}
