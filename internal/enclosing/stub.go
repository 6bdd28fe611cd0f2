//go:build !cgo

// Package enclosing locates the function that encloses a source line, using
// tree-sitter. This stub is used when CGO is not available.
package enclosing

import "context"

// Function describes the function enclosing a line of source.
type Function struct {
	Name      string `json:"name,omitempty"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// IsAvailable reports whether enclosing-function lookup is compiled in.
func IsAvailable() bool {
	return false
}

// Find always returns nil when CGO is not available.
func Find(ctx context.Context, source []byte, path string, line int) *Function {
	return nil
}
