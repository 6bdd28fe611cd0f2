package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stacklens/internal/export"
)

var showDiagFlag bool

var showCmd = &cobra.Command{
	Use:   "show <bundle.zst>",
	Short: "Display a previously exported context bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := export.ReadFile(args[0])
		if err != nil {
			return err
		}

		out, err := FormatResponse(bundle.Context, OutputFormat(formatFlag))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)

		if showDiagFlag {
			diag, err := FormatResponse(bundle.Diagnostics, OutputFormat(formatFlag))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), diag)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showDiagFlag, "diagnostics", false,
		"Also print the diagnostics recorded with the bundle")
	rootCmd.AddCommand(showCmd)
}
