package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"stacklens/internal/analysis"
	"stacklens/internal/storage"
	"stacklens/internal/trace"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *analysis.AnalysisContext:
		return formatContextHuman(v), nil
	case *trace.ParsedTrace:
		return formatTraceHuman(v), nil
	case *storage.Aggregates:
		return formatAggregatesHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatContextHuman(ctx *analysis.AnalysisContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Context %s\n", ctx.ID)
	fmt.Fprintf(&sb, "Repository: %s @ %s\n\n", ctx.RepositoryID, ctx.Revision)

	writeWindow(&sb, ctx.Primary, "Primary")
	for _, w := range ctx.Related {
		sb.WriteString("\n")
		writeWindow(&sb, w, "Related")
	}

	return sb.String()
}

func writeWindow(sb *strings.Builder, w *analysis.SourceWindow, label string) {
	fmt.Fprintf(sb, "%s: %s", label, w.FilePath)
	if w.LanguageHint != "" {
		fmt.Fprintf(sb, " (%s)", w.LanguageHint)
	}
	sb.WriteString("\n")

	if w.EnclosingFunction != nil && w.EnclosingFunction.Name != "" {
		fmt.Fprintf(sb, "In %s (lines %d-%d)\n",
			w.EnclosingFunction.Name, w.EnclosingFunction.StartLine, w.EnclosingFunction.EndLine)
	}

	for _, line := range w.Lines {
		marker := "   "
		if line.IsErrorLine {
			marker = " > "
		}
		fmt.Fprintf(sb, "%s%5d | %s\n", marker, line.Number, line.Text)
	}
}

func formatTraceHuman(t *trace.ParsedTrace) string {
	var sb strings.Builder

	if t.ErrorLocation != nil {
		fmt.Fprintf(&sb, "Error at %s:%d", t.ErrorLocation.Filename, t.ErrorLocation.Lineno)
		if t.ErrorLocation.Colno > 0 {
			fmt.Fprintf(&sb, ":%d", t.ErrorLocation.Colno)
		}
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "Frames (%d):\n", len(t.Frames))
	for _, f := range t.Frames {
		kind := "vendor"
		if trace.IsApplicationPath(f.Filename, nil) {
			kind = "app"
		}
		fmt.Fprintf(&sb, "  [%s] %s:%d", kind, f.Filename, f.Lineno)
		if f.Function != "" {
			fmt.Fprintf(&sb, " in %s", f.Function)
		}
		sb.WriteString("\n")
	}

	if len(t.RepositoryPaths) > 0 {
		fmt.Fprintf(&sb, "\nCandidate files (%d):\n", len(t.RepositoryPaths))
		for _, p := range t.RepositoryPaths {
			fmt.Fprintf(&sb, "  %s\n", p)
		}
	}

	return sb.String()
}

func formatAggregatesHuman(agg *storage.Aggregates) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Builds:          %d\n", agg.Builds)
	fmt.Fprintf(&sb, "Failures:        %d\n", agg.Failures)
	fmt.Fprintf(&sb, "Cache hit rate:  %.1f%%\n", agg.CacheHitRate*100)
	fmt.Fprintf(&sb, "Avg duration:    %.0f ms\n", agg.AvgDurationMs)
	fmt.Fprintf(&sb, "Avg files:       %.1f\n", agg.AvgRetrieved)
	return sb.String()
}
