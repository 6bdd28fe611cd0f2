package trace

import (
	"net/url"
	"strings"
)

// stripPrefixes are the literal prefix tokens removed from the front of a
// filename, in fixed priority order. The scan restarts after each removal so
// compound prefixes fully collapse ("webpack:///src/app/x.js" -> "x.js").
var stripPrefixes = []string{
	"webpack:///",
	"webpack://",
	"app/",
	"src/",
	"dist/",
	"build/",
}

// excludeTokens mark vendored, bundled, or runtime-internal code. Matching is
// substring-based anywhere in the normalized path, not at segment boundaries.
var excludeTokens = []string{
	"node_modules", // vendor directory
	"webpack",      // bundler runtime
	"babel",        // transpiler runtime
	"polyfill",     // polyfill libraries
	"core-js",
	".min.",         // minifier output
	".bundle.",      // bundle output
	"node:internal", // interpreter internals
	"internal/modules",
}

// NormalizeFilename converts a raw frame filename into a repository-relative
// canonical path. The steps are exact and ordered: URL paths are unwrapped,
// leading slashes dropped, backslashes flattened, then known prefixes are
// stripped until a full pass removes nothing. Normalization is idempotent.
func NormalizeFilename(name string, extraPrefixes []string) string {
	s := name

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		if u, err := url.Parse(s); err == nil {
			s = u.Path
		}
	}

	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.TrimLeft(s, "/")

	prefixes := stripPrefixes
	if len(extraPrefixes) > 0 {
		prefixes = append(append([]string{}, stripPrefixes...), extraPrefixes...)
	}

	for changed := true; changed; {
		changed = false
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(s, p) {
				s = s[len(p):]
				changed = true
				break
			}
		}
	}

	return s
}

// IsApplicationPath reports whether a normalized path is believed to be
// application code. A path containing any exclusion token anywhere is
// classified as vendor/runtime code.
func IsApplicationPath(path string, extraTokens []string) bool {
	if path == "" {
		return false
	}
	lower := strings.ToLower(path)
	for _, tok := range excludeTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	for _, tok := range extraTokens {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}
