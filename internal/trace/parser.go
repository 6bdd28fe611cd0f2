package trace

// Options configures an Interpreter. Zero value uses the built-in prefix and
// exclusion tables only.
type Options struct {
	// ExtraStripPrefixes are project-specific prefix tokens stripped after
	// the built-in set, typically loaded from a repository declaration.
	ExtraStripPrefixes []string

	// ExtraExcludeTokens are project-specific vendor/runtime markers.
	ExtraExcludeTokens []string
}

// Interpreter turns raw error reports into parsed traces.
type Interpreter struct {
	opts Options
}

// NewInterpreter creates an interpreter with the given options.
func NewInterpreter(opts Options) *Interpreter {
	return &Interpreter{opts: opts}
}

// defaultInterpreter backs the package-level Parse helper.
var defaultInterpreter = NewInterpreter(Options{})

// Parse interprets an error report using the default options.
func Parse(event *RawEvent) *ParsedTrace {
	return defaultInterpreter.Parse(event)
}

// Parse turns a raw error report into a canonical parsed trace.
//
// It returns nil when the report carries no exception entry with a frame
// list at all; a report whose frame list is present but empty parses to a
// ParsedTrace with empty collections. Frames without a filename are dropped.
func (in *Interpreter) Parse(event *RawEvent) *ParsedTrace {
	if event == nil || event.Exception == nil {
		return nil
	}

	var raw []RawFrame
	found := false
	for _, val := range event.Exception.Values {
		if val.Stacktrace != nil && val.Stacktrace.Frames != nil {
			raw = val.Stacktrace.Frames
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	parsed := &ParsedTrace{
		Frames:          []Frame{},
		RepositoryPaths: []string{},
	}

	seen := make(map[string]bool)
	for _, rf := range raw {
		if rf.Filename == "" {
			continue
		}

		normalized := NormalizeFilename(rf.Filename, in.opts.ExtraStripPrefixes)
		if normalized == "" {
			continue
		}

		frame := Frame{
			Filename: normalized,
			Function: rf.Function,
			Lineno:   rf.Lineno,
			Colno:    rf.Colno,
			InApp:    rf.InApp != nil && *rf.InApp,
			Module:   rf.Module,
			Package:  rf.Package,
			AbsPath:  rf.AbsPath,
		}
		parsed.Frames = append(parsed.Frames, frame)

		isApp := IsApplicationPath(normalized, in.opts.ExtraExcludeTokens)

		if isApp && !seen[normalized] {
			seen[normalized] = true
			parsed.RepositoryPaths = append(parsed.RepositoryPaths, normalized)
		}

		if parsed.ErrorLocation == nil && frame.InApp && isApp {
			parsed.ErrorLocation = &Location{
				Filename: normalized,
				Lineno:   frame.Lineno,
				Colno:    frame.Colno,
				Function: frame.Function,
			}
		}
	}

	return parsed
}
