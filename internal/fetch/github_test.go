package fetch

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v67/github"
)

// newTestFetcher wires a GitHubFetcher against an httptest server.
func newTestFetcher(t *testing.T, handler http.Handler) *GitHubFetcher {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	client.BaseURL = base

	f, err := NewGitHubFetcher(GitHubOptions{
		Owner:         "acme",
		Repo:          "webapp",
		DefaultBranch: "main",
		Client:        client,
	})
	if err != nil {
		t.Fatalf("NewGitHubFetcher: %v", err)
	}
	return f
}

func TestFetchFile(t *testing.T) {
	content := "export function helper() {\n  return 1;\n}\n"

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/webapp/contents/utils/helper.js", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "abc123" {
			t.Errorf("ref = %q, want abc123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"type":"file","name":"helper.js","encoding":"base64","content":%q}`,
			base64.StdEncoding.EncodeToString([]byte(content)))
	})

	f := newTestFetcher(t, mux)

	got, err := f.FetchFile(context.Background(), "utils/helper.js", "abc123")
	if err != nil {
		t.Fatalf("FetchFile: %v", err)
	}
	if got != content {
		t.Errorf("content = %q, want %q", got, content)
	}
}

func TestFetchFileNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})

	f := newTestFetcher(t, mux)

	_, err := f.FetchFile(context.Background(), "missing.js", "abc123")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not-found outcome, got %v", err)
	}
}

func TestFetchFileTransportError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	f := newTestFetcher(t, mux)

	_, err := f.FetchFile(context.Background(), "utils/helper.js", "abc123")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsNotFound(err) {
		t.Errorf("server error must not classify as not-found: %v", err)
	}
}

func TestLatestRevision(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/webapp/commits/main", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "f00dfeedf00dfeedf00dfeedf00dfeedf00dfeed")
	})

	f := newTestFetcher(t, mux)

	sha, err := f.LatestRevision(context.Background(), "")
	if err != nil {
		t.Fatalf("LatestRevision: %v", err)
	}
	if sha != "f00dfeedf00dfeedf00dfeedf00dfeedf00dfeed" {
		t.Errorf("sha = %q", sha)
	}
}

func TestNewGitHubFetcherValidation(t *testing.T) {
	if _, err := NewGitHubFetcher(GitHubOptions{Repo: "webapp"}); err == nil {
		t.Error("expected error for missing owner")
	}
	if _, err := NewGitHubFetcher(GitHubOptions{Owner: "acme"}); err == nil {
		t.Error("expected error for missing repo")
	}
}
