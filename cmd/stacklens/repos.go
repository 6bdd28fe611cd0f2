package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stacklens/internal/project"
)

var reposBranchFlag string

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage repository declarations",
	Long:  `Repos manages the declarations in .stacklens/repositories.toml.`,
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared repositories",
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := project.Load(rootFlag)
		if err != nil {
			return err
		}
		if len(decls.Repos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No repositories declared.")
			return nil
		}
		for _, r := range decls.Repos {
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s (branch %s)\n", r.RepoID, r.Slug(), r.DefaultBranch)
		}
		return nil
	},
}

var reposAddCmd = &cobra.Command{
	Use:   "add <alias> <owner/name>",
	Short: "Declare a repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, name, ok := splitSlug(args[1])
		if !ok {
			return fmt.Errorf("expected owner/name, got %q", args[1])
		}

		decls, err := project.Load(rootFlag)
		if err != nil {
			return err
		}

		repo, err := decls.Add(args[0], owner, name, reposBranchFlag)
		if err != nil {
			return err
		}
		if err := decls.Save(rootFlag); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Declared %s as %q (uid %s)\n", repo.Slug(), repo.RepoID, repo.RepoUID)
		return nil
	},
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Remove a repository declaration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, err := project.Load(rootFlag)
		if err != nil {
			return err
		}
		if err := decls.Remove(args[0]); err != nil {
			return err
		}
		if err := decls.Save(rootFlag); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", args[0])
		return nil
	},
}

func init() {
	reposAddCmd.Flags().StringVar(&reposBranchFlag, "branch", "main",
		"Default branch for revision fallback")
	reposCmd.AddCommand(reposListCmd, reposAddCmd, reposRemoveCmd)
	rootCmd.AddCommand(reposCmd)
}
