// Package analysis orchestrates trace interpretation, cached remote fetching,
// and window assembly into an AnalysisContext for one error report.
package analysis

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stacklens/internal/enclosing"
	"stacklens/internal/errors"
	"stacklens/internal/fetch"
	"stacklens/internal/filecache"
	"stacklens/internal/logging"
	"stacklens/internal/trace"
)

const (
	// DefaultMaxCandidateFiles caps remote fan-out per build.
	DefaultMaxCandidateFiles = 10
	// DefaultContextHalfWidth is the number of lines shown on each side of
	// the line of interest.
	DefaultContextHalfWidth = 10
)

// revisionPattern matches a revision identifier carried on a report: a hex
// string of 6 to 40 characters, case-insensitive.
var revisionPattern = regexp.MustCompile(`^[0-9a-fA-F]{6,40}$`)

// Options configures a Builder.
type Options struct {
	RepositoryID string
	Fetcher      fetch.FileFetcher
	Cache        *filecache.Cache
	Interpreter  *trace.Interpreter
	Logger       *logging.Logger

	MaxCandidateFiles int
	ContextHalfWidth  int
}

// Builder produces analysis contexts from raw error reports. One Builder may
// serve concurrent Build calls; they share the file cache.
type Builder struct {
	repoID       string
	fetcher      fetch.FileFetcher
	cache        *filecache.Cache
	interp       *trace.Interpreter
	logger       *logging.Logger
	maxFiles     int
	halfWidth    int

	mu       sync.Mutex
	lastDiag Diagnostics
}

// NewBuilder creates a builder. Fetcher is required; everything else has
// working defaults.
func NewBuilder(opts Options) *Builder {
	if opts.Cache == nil {
		opts.Cache = filecache.New(filecache.Options{})
	}
	if opts.Interpreter == nil {
		opts.Interpreter = trace.NewInterpreter(trace.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
	}
	if opts.MaxCandidateFiles <= 0 {
		opts.MaxCandidateFiles = DefaultMaxCandidateFiles
	}
	if opts.ContextHalfWidth <= 0 {
		opts.ContextHalfWidth = DefaultContextHalfWidth
	}
	return &Builder{
		repoID:    opts.RepositoryID,
		fetcher:   opts.Fetcher,
		cache:     opts.Cache,
		interp:    opts.Interpreter,
		logger:    opts.Logger,
		maxFiles:  opts.MaxCandidateFiles,
		halfWidth: opts.ContextHalfWidth,
	}
}

// Cache exposes the underlying file cache for stats and maintenance hooks.
func (b *Builder) Cache() *filecache.Cache {
	return b.cache
}

// Diagnostics returns the outcome of the most recent Build call.
func (b *Builder) Diagnostics() Diagnostics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastDiag
}

// Build produces an AnalysisContext for one raw error report, or a typed
// failure (NO_STACK_TRACE, NO_APPLICATION_FILES, NO_FILES_RETRIEVED,
// TRANSPORT_ERROR). Per-file fetch failures are absorbed, never propagated.
func (b *Builder) Build(ctx context.Context, event *trace.RawEvent) (*AnalysisContext, error) {
	start := time.Now()
	diag := Diagnostics{}
	defer func() {
		diag.DurationMs = time.Since(start).Milliseconds()
		b.mu.Lock()
		b.lastDiag = diag
		b.mu.Unlock()
	}()

	parsed := b.interp.Parse(event)
	if parsed == nil {
		diag.FailureCode = string(errors.NoStackTrace)
		return nil, errors.New(errors.NoStackTrace, "no parseable stack trace in report", nil)
	}

	candidates := parsed.RepositoryPaths
	if len(candidates) == 0 {
		diag.FailureCode = string(errors.NoApplicationFiles)
		return nil, errors.New(errors.NoApplicationFiles, "every frame is vendor or runtime code", nil)
	}
	if len(candidates) > b.maxFiles {
		candidates = candidates[:b.maxFiles]
	}
	diag.RequestedFiles = len(candidates)

	revision, err := b.resolveRevision(ctx, event)
	if err != nil {
		diag.FailureCode = string(errors.TransportError)
		return nil, errors.New(errors.TransportError, "could not resolve revision", err)
	}

	retrieved := b.fetchAll(ctx, candidates, revision, &diag)
	if len(retrieved) == 0 {
		diag.FailureCode = string(errors.NoFilesRetrieved)
		return nil, errors.New(errors.NoFilesRetrieved, "no candidate file could be fetched", nil).
			WithDetails(map[string]interface{}{"requested": len(candidates), "revision": revision})
	}

	primary, related := b.assembleWindows(ctx, parsed, candidates, retrieved, revision)

	b.logger.Info("Built analysis context", map[string]interface{}{
		"repository": b.repoID,
		"revision":   revision,
		"requested":  diag.RequestedFiles,
		"retrieved":  diag.RetrievedFiles,
		"primary":    primary.FilePath,
	})

	return &AnalysisContext{
		ID:           uuid.New().String(),
		RepositoryID: b.repoID,
		Revision:     revision,
		Primary:      primary,
		Related:      related,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// resolveRevision prefers a revision-shaped value carried on the report
// (tags first, then the release field), falling back to the latest revision
// of the fetcher's default branch.
func (b *Builder) resolveRevision(ctx context.Context, event *trace.RawEvent) (string, error) {
	if event != nil {
		for _, tag := range event.Tags {
			if revisionPattern.MatchString(tag.Value) {
				return tag.Value, nil
			}
		}
		if revisionPattern.MatchString(event.Release) {
			return event.Release, nil
		}
	}
	return b.fetcher.LatestRevision(ctx, "")
}

type fetchResult struct {
	path    string
	content string
	ok      bool
	hit     bool
}

// fetchAll fetches every candidate concurrently, cache-first. Each task has
// an independent failure domain: not-found and transport failures are logged
// and omitted, and the join waits for every task to settle.
func (b *Builder) fetchAll(ctx context.Context, paths []string, revision string, diag *Diagnostics) map[string]string {
	results := make(chan fetchResult, len(paths))

	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			results <- b.fetchOne(ctx, path, revision)
		}(p)
	}
	wg.Wait()
	close(results)

	retrieved := make(map[string]string)
	for res := range results {
		if res.hit {
			diag.CacheHits++
		} else {
			diag.CacheMisses++
		}
		if res.ok {
			retrieved[res.path] = res.content
		}
	}
	diag.RetrievedFiles = len(retrieved)
	if total := diag.CacheHits + diag.CacheMisses; total > 0 {
		diag.CacheHitRate = float64(diag.CacheHits) / float64(total)
	}
	return retrieved
}

func (b *Builder) fetchOne(ctx context.Context, path, revision string) fetchResult {
	if content, ok := b.cache.Get(b.repoID, path, revision); ok {
		return fetchResult{path: path, content: content, ok: true, hit: true}
	}

	content, err := b.fetcher.FetchFile(ctx, path, revision)
	if err != nil {
		if fetch.IsNotFound(err) {
			b.logger.Debug("File absent at revision", map[string]interface{}{
				"path":     path,
				"revision": revision,
			})
		} else {
			b.logger.Warn("File fetch failed", map[string]interface{}{
				"path":     path,
				"revision": revision,
				"error":    err.Error(),
			})
		}
		return fetchResult{path: path}
	}

	b.cache.Set(b.repoID, path, revision, content)
	return fetchResult{path: path, content: content, ok: true}
}

// assembleWindows picks the primary file and builds one window per retrieved
// file. The primary is the error location's file when it was retrieved,
// otherwise the first retrieved candidate with no highlighted line.
func (b *Builder) assembleWindows(ctx context.Context, parsed *trace.ParsedTrace, candidates []string, retrieved map[string]string, revision string) (*SourceWindow, []*SourceWindow) {
	var primaryPath string
	var loc *trace.Location

	if parsed.ErrorLocation != nil {
		if _, ok := retrieved[parsed.ErrorLocation.Filename]; ok {
			primaryPath = parsed.ErrorLocation.Filename
			loc = parsed.ErrorLocation
		}
	}
	if primaryPath == "" {
		for _, p := range candidates {
			if _, ok := retrieved[p]; ok {
				primaryPath = p
				break
			}
		}
	}

	primary := b.buildWindow(ctx, primaryPath, retrieved[primaryPath], revision, loc)

	var related []*SourceWindow
	for _, p := range candidates {
		if p == primaryPath {
			continue
		}
		content, ok := retrieved[p]
		if !ok {
			continue
		}
		related = append(related, b.buildWindow(ctx, p, content, revision, nil))
	}

	return primary, related
}

// buildWindow assembles a symmetric window around the error line, or around
// the file's vertical midpoint when no line is known.
func (b *Builder) buildWindow(ctx context.Context, path, content, revision string, loc *trace.Location) *SourceWindow {
	lines := splitLines(content)

	center := (len(lines) + 1) / 2
	if loc != nil {
		center = loc.Lineno
	}

	r := trace.RangeAround(center, b.halfWidth)
	end := r.EndLine
	if end > len(lines) {
		end = len(lines)
	}

	window := &SourceWindow{
		FilePath:      path,
		ErrorLocation: loc,
		Lines:         []LineEntry{},
		LanguageHint:  trace.LanguageForPath(path),
		Revision:      revision,
	}

	for n := r.StartLine; n <= end; n++ {
		window.Lines = append(window.Lines, LineEntry{
			Number:      n,
			Text:        lines[n-1],
			IsErrorLine: loc != nil && n == loc.Lineno,
		})
	}

	if loc != nil {
		window.EnclosingFunction = enclosing.Find(ctx, []byte(content), path, loc.Lineno)
	}

	return window
}

// splitLines splits file content into lines, tolerating CRLF endings and a
// trailing newline.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
