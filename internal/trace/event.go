// Package trace turns raw, loosely-structured error reports into canonical
// parsed traces. All input fields are optional and untrusted; parsing never
// fails, it degrades to nil or empty collections.
package trace

// RawEvent is the subset of an error report that stacklens interprets.
// The report shape is treated as opaque beyond these fields.
type RawEvent struct {
	EventID   string          `json:"event_id,omitempty"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	Release   string          `json:"release,omitempty"`
	Tags      []Tag           `json:"tags,omitempty"`
	Exception *ExceptionChain `json:"exception,omitempty"`
}

// Tag is a key/value pair attached to an error report.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ExceptionChain holds the exception entries of a report, outermost first.
type ExceptionChain struct {
	Values []ExceptionValue `json:"values,omitempty"`
}

// ExceptionValue is one exception entry, possibly carrying a stack trace.
type ExceptionValue struct {
	Type       string      `json:"type,omitempty"`
	Value      string      `json:"value,omitempty"`
	Module     string      `json:"module,omitempty"`
	Stacktrace *Stacktrace `json:"stacktrace,omitempty"`
}

// Stacktrace is a list of raw frames. A nil Frames slice means the report
// carried no frame list at all; an empty non-nil slice means a frame list
// was present but empty. The distinction is load-bearing for Parse.
type Stacktrace struct {
	Frames []RawFrame `json:"frames"`
}

// RawFrame is one externally-supplied stack entry. Every field is optional.
type RawFrame struct {
	Filename string `json:"filename,omitempty"`
	AbsPath  string `json:"abs_path,omitempty"`
	Function string `json:"function,omitempty"`
	Module   string `json:"module,omitempty"`
	Package  string `json:"package,omitempty"`
	Lineno   int    `json:"lineno,omitempty"`
	Colno    int    `json:"colno,omitempty"`
	InApp    *bool  `json:"in_app,omitempty"`
}

// Frame is a canonical frame with a normalized filename.
type Frame struct {
	Filename string `json:"filename"`
	Function string `json:"function,omitempty"`
	Lineno   int    `json:"lineno"`
	Colno    int    `json:"colno,omitempty"`
	InApp    bool   `json:"inApp"`
	Module   string `json:"module,omitempty"`
	Package  string `json:"package,omitempty"`
	AbsPath  string `json:"absPath,omitempty"`
}

// Location identifies the point of failure within a file.
type Location struct {
	Filename string `json:"filename"`
	Lineno   int    `json:"lineno"`
	Colno    int    `json:"colno,omitempty"`
	Function string `json:"function,omitempty"`
}

// ParsedTrace is the canonical result of interpreting a raw error report.
type ParsedTrace struct {
	Frames          []Frame   `json:"frames"`
	RepositoryPaths []string  `json:"repositoryPaths"`
	ErrorLocation   *Location `json:"errorLocation,omitempty"`
}
