// Package fetch defines the remote file-fetching collaborator contract and
// its GitHub implementation. The engine only ever sees two outcomes from a
// fetcher: content, or one of the errors below.
package fetch

import (
	"context"
	"errors"
)

// ErrNotFound reports that a file does not exist at the requested revision.
// It is an ordinary outcome, not a transport failure; callers omit the file
// and move on.
var ErrNotFound = errors.New("file not found at revision")

// FileFetcher retrieves file content and revision information from a remote
// repository-hosting service. Implementations own their timeout policy; a
// timeout surfaces to the caller as an ordinary error.
type FileFetcher interface {
	// FetchFile returns the content of path at revision. It returns
	// ErrNotFound (possibly wrapped) when the file is absent at that
	// revision, and any other error only on genuine transport failure.
	FetchFile(ctx context.Context, path, revision string) (string, error)

	// LatestRevision resolves the newest revision of branch. An empty
	// branch means the fetcher's configured default branch.
	LatestRevision(ctx context.Context, branch string) (string, error)
}

// IsNotFound reports whether err is the not-found outcome.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
