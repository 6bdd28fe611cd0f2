package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stacklens/internal/analysis"
	"stacklens/internal/config"
	"stacklens/internal/export"
	"stacklens/internal/filecache"
	"stacklens/internal/logging"
	"stacklens/internal/storage"
	"stacklens/internal/trace"
)

var (
	analyzeOutFlag     string
	analyzeNoJournal   bool
	analyzeTimeoutFlag int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <event.json>",
	Short: "Build source context for an error report",
	Long: `Analyze reads a raw error report (a JSON file, or stdin for "-"),
interprets its stack trace, fetches the referenced application files at the
failing revision, and prints annotated source windows around the error.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutFlag, "out", "o", "",
		"Write the context as a compressed bundle to this path")
	analyzeCmd.Flags().BoolVar(&analyzeNoJournal, "no-journal", false,
		"Skip recording build diagnostics in the journal")
	analyzeCmd.Flags().IntVar(&analyzeTimeoutFlag, "timeout", 30,
		"Overall fetch timeout in seconds")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	data, err := readInput(args[0])
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	var event trace.RawEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return fmt.Errorf("failed to parse event JSON: %w", err)
	}

	decl, err := resolveRepository(cfg)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, decl, logger)
	if err != nil {
		return err
	}

	builder := analysis.NewBuilder(analysis.Options{
		RepositoryID: decl.Slug(),
		Fetcher:      fetcher,
		Cache: filecache.New(filecache.Options{
			MaxBytes:   cfg.Cache.MaxBytes,
			MaxEntries: cfg.Cache.MaxEntries,
			TTL:        time.Duration(cfg.Cache.TtlSeconds) * time.Second,
		}),
		Interpreter: trace.NewInterpreter(trace.Options{
			ExtraStripPrefixes: append(append([]string{}, cfg.Analysis.StripPrefixes...), decl.StripPrefixes...),
			ExtraExcludeTokens: append(append([]string{}, cfg.Analysis.ExcludeTokens...), decl.ExcludeTokens...),
		}),
		Logger:            logger,
		MaxCandidateFiles: cfg.Analysis.MaxCandidateFiles,
		ContextHalfWidth:  cfg.Analysis.ContextHalfWidth,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(analyzeTimeoutFlag)*time.Second)
	defer cancel()

	result, buildErr := builder.Build(ctx, &event)
	diag := builder.Diagnostics()

	if !analyzeNoJournal {
		journalBuild(cfg, logger, decl.Slug(), result, diag)
	}

	if buildErr != nil {
		return buildErr
	}

	if analyzeOutFlag != "" {
		bundle := &export.Bundle{Context: result, Diagnostics: diag}
		if err := export.WriteFile(analyzeOutFlag, bundle); err != nil {
			return err
		}
		logger.Info("Wrote context bundle", map[string]interface{}{
			"path": analyzeOutFlag,
		})
	}

	out, err := FormatResponse(result, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// journalBuild records diagnostics; journal failures are logged, never fatal.
func journalBuild(cfg *config.Config, logger *logging.Logger, repoID string, result *analysis.AnalysisContext, diag analysis.Diagnostics) {
	journal, err := storage.OpenJournal(storageDir(cfg), logger)
	if err != nil {
		logger.Warn("Could not open diagnostics journal", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer journal.Close()

	rec := storage.BuildRecord{
		RepositoryID:   repoID,
		RequestedFiles: diag.RequestedFiles,
		RetrievedFiles: diag.RetrievedFiles,
		CacheHits:      diag.CacheHits,
		CacheMisses:    diag.CacheMisses,
		FailureCode:    diag.FailureCode,
		DurationMs:     diag.DurationMs,
	}
	if result != nil {
		rec.ID = result.ID
		rec.Revision = result.Revision
	}

	if _, err := journal.RecordBuild(rec); err != nil {
		logger.Warn("Could not journal build", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
