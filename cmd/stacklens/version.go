package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stacklens/internal/enclosing"
	"stacklens/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "Enclosing-function analysis: %v\n", enclosing.IsAvailable())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
