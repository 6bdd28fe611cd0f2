package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v67/github"

	"stacklens/internal/logging"
)

// GitHubOptions configures a GitHubFetcher.
type GitHubOptions struct {
	Owner         string
	Repo          string
	DefaultBranch string

	// Token authenticates API requests. Anonymous access works for public
	// repositories but is rate-limited aggressively.
	Token string

	// BaseURL points at a GitHub Enterprise API root. Empty means
	// github.com.
	BaseURL string

	// Client overrides the constructed client entirely (tests).
	Client *github.Client

	Logger *logging.Logger
}

// GitHubFetcher implements FileFetcher against the GitHub contents API.
type GitHubFetcher struct {
	client        *github.Client
	owner         string
	repo          string
	defaultBranch string
	logger        *logging.Logger
}

// NewGitHubFetcher creates a fetcher for one repository.
func NewGitHubFetcher(opts GitHubOptions) (*GitHubFetcher, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github fetcher requires owner and repo")
	}

	client := opts.Client
	if client == nil {
		client = github.NewClient(nil)
		if opts.Token != "" {
			client = client.WithAuthToken(opts.Token)
		}
		if opts.BaseURL != "" {
			base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
			if err != nil {
				return nil, fmt.Errorf("invalid base URL: %w", err)
			}
			client.BaseURL = base
		}
	}

	branch := opts.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	return &GitHubFetcher{
		client:        client,
		owner:         opts.Owner,
		repo:          opts.Repo,
		defaultBranch: branch,
		logger:        opts.Logger,
	}, nil
}

// FetchFile returns the decoded content of path at revision.
func (f *GitHubFetcher) FetchFile(ctx context.Context, path, revision string) (string, error) {
	opts := &github.RepositoryContentGetOptions{Ref: revision}

	fileContent, _, resp, err := f.client.Repositories.GetContents(ctx, f.owner, f.repo, path, opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s@%s: %w", path, revision, ErrNotFound)
		}
		return "", fmt.Errorf("fetch %s@%s: %w", path, revision, err)
	}
	if fileContent == nil {
		// The path resolved to a directory listing.
		return "", fmt.Errorf("%s@%s is not a file: %w", path, revision, ErrNotFound)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s@%s: %w", path, revision, err)
	}

	if f.logger != nil {
		f.logger.Debug("Fetched file from GitHub", map[string]interface{}{
			"path":     path,
			"revision": revision,
			"bytes":    len(content),
		})
	}

	return content, nil
}

// LatestRevision resolves the newest commit SHA of branch, defaulting to the
// configured default branch.
func (f *GitHubFetcher) LatestRevision(ctx context.Context, branch string) (string, error) {
	if branch == "" {
		branch = f.defaultBranch
	}

	sha, resp, err := f.client.Repositories.GetCommitSHA1(ctx, f.owner, f.repo, branch, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("branch %s: %w", branch, ErrNotFound)
		}
		return "", fmt.Errorf("resolve %s: %w", branch, err)
	}
	return sha, nil
}

// Repository returns the owner/name identifier of the configured repository.
func (f *GitHubFetcher) Repository() string {
	return f.owner + "/" + f.repo
}
