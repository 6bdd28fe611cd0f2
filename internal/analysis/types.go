package analysis

import (
	"time"

	"stacklens/internal/enclosing"
	"stacklens/internal/trace"
)

// LineEntry is one line of a source window.
type LineEntry struct {
	Number      int    `json:"number"`
	Text        string `json:"text"`
	IsErrorLine bool   `json:"isErrorLine,omitempty"`
}

// SourceWindow is a bounded run of consecutive source lines surrounding a
// point of interest in one file.
type SourceWindow struct {
	FilePath          string              `json:"filePath"`
	ErrorLocation     *trace.Location     `json:"errorLocation,omitempty"`
	Lines             []LineEntry         `json:"lines"`
	LanguageHint      string              `json:"languageHint,omitempty"`
	Revision          string              `json:"revision"`
	EnclosingFunction *enclosing.Function `json:"enclosingFunction,omitempty"`
}

// AnalysisContext is the assembled source context for one error report.
type AnalysisContext struct {
	ID           string          `json:"id"`
	RepositoryID string          `json:"repositoryId"`
	Revision     string          `json:"revision"`
	Primary      *SourceWindow   `json:"primary"`
	Related      []*SourceWindow `json:"related"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// Diagnostics describes the outcome of one Build call.
type Diagnostics struct {
	RequestedFiles int     `json:"requestedFiles"`
	RetrievedFiles int     `json:"retrievedFiles"`
	CacheHits      int     `json:"cacheHits"`
	CacheMisses    int     `json:"cacheMisses"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	DurationMs     int64   `json:"durationMs"`
	FailureCode    string  `json:"failureCode,omitempty"`
}
