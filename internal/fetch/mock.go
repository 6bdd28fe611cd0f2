package fetch

import (
	"context"
	"fmt"
	"sync"
)

// MockFetcher implements FileFetcher for testing. Files are registered per
// (path, revision); unregistered lookups report not-found unless a forced
// error is configured for the path.
type MockFetcher struct {
	mu        sync.Mutex
	files     map[string]string // key: path + "@" + revision
	errs      map[string]error  // per-path forced transport errors
	latest    string
	latestErr error
	calls     []string
}

// NewMockFetcher creates an empty mock with a default latest revision.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{
		files:  make(map[string]string),
		errs:   make(map[string]error),
		latest: "deadbeefcafe",
	}
}

func mockKey(path, revision string) string {
	return path + "@" + revision
}

// SetFile registers content for path at revision.
func (m *MockFetcher) SetFile(path, revision, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[mockKey(path, revision)] = content
}

// SetError forces a transport error for every fetch of path.
func (m *MockFetcher) SetError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[path] = err
}

// SetLatestRevision configures the LatestRevision result.
func (m *MockFetcher) SetLatestRevision(rev string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = rev
	m.latestErr = err
}

// Calls returns the fetches performed, as "path@revision" strings.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// FetchFile implements FileFetcher.
func (m *MockFetcher) FetchFile(ctx context.Context, path, revision string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, mockKey(path, revision))

	if err, ok := m.errs[path]; ok {
		return "", err
	}
	if content, ok := m.files[mockKey(path, revision)]; ok {
		return content, nil
	}
	return "", fmt.Errorf("%s@%s: %w", path, revision, ErrNotFound)
}

// LatestRevision implements FileFetcher.
func (m *MockFetcher) LatestRevision(ctx context.Context, branch string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latestErr != nil {
		return "", m.latestErr
	}
	return m.latest, nil
}
