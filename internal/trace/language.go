package trace

import (
	"path"
	"strings"
)

// extensionLanguages maps filename extensions to language hints.
var extensionLanguages = map[string]string{
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".py":    "python",
	".go":    "go",
	".rb":    "ruby",
	".java":  "java",
	".kt":    "kotlin",
	".rs":    "rust",
	".php":   "php",
	".cs":    "csharp",
	".cpp":   "cpp",
	".cc":    "cpp",
	".c":     "c",
	".swift": "swift",
	".scala": "scala",
	".ex":    "elixir",
	".exs":   "elixir",
}

// LanguageForPath returns a language hint for a file path based on its
// extension, or "" when the extension is unknown.
func LanguageForPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	return extensionLanguages[ext]
}

// DominantLanguage detects the dominant source language among frames by the
// most frequent filename extension. Ties break toward the extension seen
// first; files without an extension contribute nothing.
func DominantLanguage(frames []Frame) string {
	counts := make(map[string]int)
	var order []string

	for _, f := range frames {
		ext := strings.ToLower(path.Ext(f.Filename))
		if ext == "" {
			continue
		}
		if counts[ext] == 0 {
			order = append(order, ext)
		}
		counts[ext]++
	}

	best := ""
	bestCount := 0
	for _, ext := range order {
		if counts[ext] > bestCount {
			best = ext
			bestCount = counts[ext]
		}
	}
	if best == "" {
		return ""
	}
	if lang, ok := extensionLanguages[best]; ok {
		return lang
	}
	return strings.TrimPrefix(best, ".")
}
