package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stacklens/internal/config"
	"stacklens/internal/fetch"
	"stacklens/internal/logging"
	"stacklens/internal/project"
	"stacklens/internal/version"
)

var (
	// rootFlag is the workspace root holding .stacklens/
	rootFlag string
	// repoFlag selects a declared repository alias, or "owner/name" directly
	repoFlag string
	// formatFlag is the CLI --format flag value
	formatFlag string
	// logLevelFlag overrides the configured log level
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "stacklens",
	Short: "stacklens - source context for error reports",
	Long: `stacklens reconstructs source context from raw error reports. It interprets
stack traces, fetches the referenced files from the repository at the failing
revision, and assembles annotated source windows around the error location.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("stacklens version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Workspace root containing the .stacklens directory")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository to analyze: a declared alias or owner/name")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "human",
		"Output format: json, yaml, or human")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error")
}

// loadEnvironment loads the config and builds the logger every command needs.
func loadEnvironment() (*config.Config, *logging.Logger, error) {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(level),
	})

	return cfg, logger, nil
}

// resolveRepository determines the target repository from the --repo flag,
// the declaration file, and the config, in that order of specificity.
func resolveRepository(cfg *config.Config) (*project.RepoDeclaration, error) {
	decls, err := project.Load(rootFlag)
	if err != nil {
		return nil, err
	}

	if repoFlag != "" {
		if decl := decls.Find(repoFlag); decl != nil {
			return decl, nil
		}
		// Accept a literal owner/name.
		if owner, name, ok := splitSlug(repoFlag); ok {
			return &project.RepoDeclaration{
				RepoID:        repoFlag,
				Owner:         owner,
				Name:          name,
				DefaultBranch: cfg.Repository.DefaultBranch,
			}, nil
		}
		return nil, fmt.Errorf("repository %q is not declared and is not owner/name", repoFlag)
	}

	if cfg.Repository.Owner != "" && cfg.Repository.Name != "" {
		return &project.RepoDeclaration{
			RepoID:        cfg.Repository.Owner + "/" + cfg.Repository.Name,
			Owner:         cfg.Repository.Owner,
			Name:          cfg.Repository.Name,
			DefaultBranch: cfg.Repository.DefaultBranch,
		}, nil
	}

	if len(decls.Repos) == 1 {
		return &decls.Repos[0], nil
	}

	return nil, fmt.Errorf("no repository selected: use --repo or configure one in .stacklens/config.json")
}

func splitSlug(s string) (owner, name string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			owner, name = s[:i], s[i+1:]
			return owner, name, owner != "" && name != ""
		}
	}
	return "", "", false
}

// newFetcher builds the GitHub fetcher for a declared repository.
func newFetcher(cfg *config.Config, decl *project.RepoDeclaration, logger *logging.Logger) (*fetch.GitHubFetcher, error) {
	return fetch.NewGitHubFetcher(fetch.GitHubOptions{
		Owner:         decl.Owner,
		Repo:          decl.Name,
		DefaultBranch: decl.DefaultBranch,
		Token:         cfg.Token(),
		BaseURL:       cfg.Repository.BaseURL,
		Logger:        logger,
	})
}

// storageDir is where the diagnostics journal lives.
func storageDir(cfg *config.Config) string {
	return filepath.Join(rootFlag, filepath.Dir(cfg.Storage.Path))
}

// readInput reads an event payload from a file argument, or stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
