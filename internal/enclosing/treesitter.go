//go:build cgo

// Package enclosing locates the function that encloses a source line, using
// tree-sitter. It enriches source windows with the name and span of the
// function containing the error line. When CGO is not available a stub takes
// over and windows simply carry no enclosing function.
package enclosing

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Function describes the function enclosing a line of source.
type Function struct {
	Name      string `json:"name,omitempty"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// IsAvailable reports whether enclosing-function lookup is compiled in.
func IsAvailable() bool {
	return true
}

// Find returns the innermost function containing line (1-indexed) in source,
// or nil when the language is unsupported, parsing fails, or no function
// contains the line.
func Find(ctx context.Context, source []byte, path string, line int) *Function {
	lang, fnTypes := languageForPath(path)
	if lang == nil || line < 1 {
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil
	}
	defer tree.Close()

	row := uint32(line - 1)
	var best *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.StartPoint().Row > row || n.EndPoint().Row < row {
			return
		}
		if fnTypes[n.Type()] {
			// Children are visited after, so the innermost match wins.
			best = n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	if best == nil {
		return nil
	}

	fn := &Function{
		StartLine: int(best.StartPoint().Row) + 1,
		EndLine:   int(best.EndPoint().Row) + 1,
	}
	if nameNode := best.ChildByFieldName("name"); nameNode != nil {
		fn.Name = nameNode.Content(source)
	}
	return fn
}

// languageForPath maps a file extension to a grammar and its function node
// types. The table mirrors the languages the fetcher is likely to serve.
func languageForPath(path string) (*sitter.Language, map[string]bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage(), setOf("function_declaration", "method_declaration", "func_literal")
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage(), setOf("function_declaration", "function_expression", "arrow_function", "method_definition", "generator_function_declaration")
	case ".ts":
		return typescript.GetLanguage(), setOf("function_declaration", "function_expression", "arrow_function", "method_definition", "generator_function_declaration")
	case ".tsx":
		return tsx.GetLanguage(), setOf("function_declaration", "function_expression", "arrow_function", "method_definition", "generator_function_declaration")
	case ".py":
		return python.GetLanguage(), setOf("function_definition")
	case ".rs":
		return rust.GetLanguage(), setOf("function_item", "closure_expression")
	case ".java":
		return java.GetLanguage(), setOf("method_declaration", "constructor_declaration")
	case ".kt":
		return kotlin.GetLanguage(), setOf("function_declaration", "anonymous_function")
	default:
		return nil, nil
	}
}

func setOf(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}
