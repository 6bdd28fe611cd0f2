package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stacklens/internal/storage"
)

var (
	statsRecentFlag  int
	statsCleanupFlag bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journaled build diagnostics",
	Long: `Stats summarizes the diagnostics journal: build counts, failure counts,
cache hit rate, and average duration. Use --recent to list individual builds.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecentFlag, "recent", 0,
		"List the N most recent builds instead of aggregates")
	statsCmd.Flags().BoolVar(&statsCleanupFlag, "cleanup", false,
		"Delete records older than the configured retention window")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnvironment()
	if err != nil {
		return err
	}

	journal, err := storage.OpenJournal(storageDir(cfg), logger)
	if err != nil {
		return err
	}
	defer journal.Close()

	if statsCleanupFlag {
		removed, err := journal.CleanupOld(cfg.Storage.RetentionDays)
		if err != nil {
			return err
		}
		logger.Info("Cleaned up journal", map[string]interface{}{
			"removed":       removed,
			"retentionDays": cfg.Storage.RetentionDays,
		})
	}

	// --repo filters to one repository; empty covers everything.
	if statsRecentFlag > 0 {
		records, err := journal.Recent(repoFlag, statsRecentFlag)
		if err != nil {
			return err
		}
		out, err := FormatResponse(records, OutputFormat(formatFlag))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	agg, err := journal.Aggregate(repoFlag)
	if err != nil {
		return err
	}
	out, err := FormatResponse(agg, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
