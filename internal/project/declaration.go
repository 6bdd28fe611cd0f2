// Package project manages the multi-repository declaration file
// (repositories.toml) so one stacklens workspace can analyze reports from
// several services.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// DeclarationFile is the name of the declaration file under .stacklens/.
const DeclarationFile = "repositories.toml"

// Declarations represents the repository declarations stored in
// repositories.toml
type Declarations struct {
	// CreatedAt is when the declaration file was created
	CreatedAt time.Time `toml:"created_at"`

	// UpdatedAt is when the declarations were last modified
	UpdatedAt time.Time `toml:"updated_at"`

	// Repos is the list of declared repositories
	Repos []RepoDeclaration `toml:"repos"`
}

// RepoDeclaration declares one repository that error reports may point at
type RepoDeclaration struct {
	// RepoUID is the immutable UUID for this declaration (never changes)
	RepoUID string `toml:"repo_uid"`

	// RepoID is the mutable human-friendly alias, e.g. "webapp"
	RepoID string `toml:"repo_id"`

	// Owner and Name identify the remote repository
	Owner string `toml:"owner"`
	Name  string `toml:"name"`

	// DefaultBranch is used when a report carries no revision
	DefaultBranch string `toml:"default_branch"`

	// StripPrefixes extends filename normalization for this repository's
	// build layout
	StripPrefixes []string `toml:"strip_prefixes,omitempty"`

	// ExcludeTokens extends vendor classification for this repository
	ExcludeTokens []string `toml:"exclude_tokens,omitempty"`

	// AddedAt is when the repository was declared
	AddedAt time.Time `toml:"added_at"`
}

// NewDeclarations creates an empty declaration set
func NewDeclarations() *Declarations {
	now := time.Now().UTC()
	return &Declarations{
		CreatedAt: now,
		UpdatedAt: now,
		Repos:     []RepoDeclaration{},
	}
}

// Add declares a repository. The alias and owner/name pair must be unique.
func (d *Declarations) Add(repoID, owner, name, branch string) (*RepoDeclaration, error) {
	for _, r := range d.Repos {
		if r.RepoID == repoID {
			return nil, fmt.Errorf("repository with ID %q already declared", repoID)
		}
		if r.Owner == owner && r.Name == name {
			return nil, fmt.Errorf("repository %s/%s already declared (as %q)", owner, name, r.RepoID)
		}
	}

	if branch == "" {
		branch = "main"
	}

	repo := RepoDeclaration{
		RepoUID:       uuid.New().String(),
		RepoID:        repoID,
		Owner:         owner,
		Name:          name,
		DefaultBranch: branch,
		AddedAt:       time.Now().UTC(),
	}

	d.Repos = append(d.Repos, repo)
	d.UpdatedAt = time.Now().UTC()

	return &repo, nil
}

// Remove drops a declaration by repoID
func (d *Declarations) Remove(repoID string) error {
	for i, r := range d.Repos {
		if r.RepoID == repoID {
			d.Repos = append(d.Repos[:i], d.Repos[i+1:]...)
			d.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("repository %q not declared", repoID)
}

// Find returns a declaration by repoID
func (d *Declarations) Find(repoID string) *RepoDeclaration {
	for i := range d.Repos {
		if d.Repos[i].RepoID == repoID {
			return &d.Repos[i]
		}
	}
	return nil
}

// FindByUID returns a declaration by repoUID
func (d *Declarations) FindByUID(repoUID string) *RepoDeclaration {
	for i := range d.Repos {
		if d.Repos[i].RepoUID == repoUID {
			return &d.Repos[i]
		}
	}
	return nil
}

// Slug returns the owner/name form used as the cache repository key.
func (r *RepoDeclaration) Slug() string {
	return r.Owner + "/" + r.Name
}

func declarationPath(root string) string {
	return filepath.Join(root, ".stacklens", DeclarationFile)
}

// Load reads repositories.toml from the workspace root. A missing file
// yields an empty declaration set.
func Load(root string) (*Declarations, error) {
	path := declarationPath(root)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewDeclarations(), nil
	}

	var decls Declarations
	if _, err := toml.DecodeFile(path, &decls); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DeclarationFile, err)
	}

	return &decls, nil
}

// Save writes the declarations to repositories.toml under the workspace root
func (d *Declarations) Save(root string) error {
	dir := filepath.Join(root, ".stacklens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := os.Create(declarationPath(root))
	if err != nil {
		return fmt.Errorf("failed to create declaration file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("failed to encode declarations: %w", err)
	}

	return nil
}
