package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"stacklens/internal/errors"
	"stacklens/internal/trace"
)

var parseCmd = &cobra.Command{
	Use:   "parse <event.json>",
	Short: "Interpret an error report without fetching sources",
	Long: `Parse interprets the stack trace of a raw error report and prints the
canonical frames, candidate repository paths, and error location. No remote
calls are made.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadEnvironment()
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

	interp := trace.NewInterpreter(trace.Options{
		ExtraStripPrefixes: cfg.Analysis.StripPrefixes,
		ExtraExcludeTokens: cfg.Analysis.ExcludeTokens,
	})

	parsed := interp.Parse(&event)
	if parsed == nil {
		return errors.New(errors.NoStackTrace, "no parseable stack trace in report", nil)
	}

	out, err := FormatResponse(parsed, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
