package project

import (
	"testing"
)

func TestAddAndFind(t *testing.T) {
	d := NewDeclarations()

	repo, err := d.Add("webapp", "acme", "webapp", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if repo.RepoUID == "" {
		t.Error("expected a generated repo UID")
	}
	if repo.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want main default", repo.DefaultBranch)
	}
	if repo.Slug() != "acme/webapp" {
		t.Errorf("Slug = %q", repo.Slug())
	}

	if found := d.Find("webapp"); found == nil || found.RepoUID != repo.RepoUID {
		t.Error("Find did not return the declared repository")
	}
	if found := d.FindByUID(repo.RepoUID); found == nil || found.RepoID != "webapp" {
		t.Error("FindByUID did not return the declared repository")
	}
	if d.Find("unknown") != nil {
		t.Error("Find should return nil for undeclared ID")
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	d := NewDeclarations()

	if _, err := d.Add("webapp", "acme", "webapp", "main"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := d.Add("webapp", "acme", "other", "main"); err == nil {
		t.Error("duplicate alias should be rejected")
	}
	if _, err := d.Add("alias2", "acme", "webapp", "main"); err == nil {
		t.Error("duplicate owner/name should be rejected")
	}
}

func TestRemove(t *testing.T) {
	d := NewDeclarations()
	if _, err := d.Add("webapp", "acme", "webapp", "main"); err != nil {
		t.Fatal(err)
	}

	if err := d.Remove("webapp"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if d.Find("webapp") != nil {
		t.Error("declaration still present after Remove")
	}
	if err := d.Remove("webapp"); err == nil {
		t.Error("removing an undeclared repository should fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	d, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Repos) != 0 {
		t.Errorf("expected empty declarations, got %d", len(d.Repos))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	d := NewDeclarations()
	repo, err := d.Add("webapp", "acme", "webapp", "develop")
	if err != nil {
		t.Fatal(err)
	}
	repo.StripPrefixes = []string{"packages/web/"}
	repo.ExcludeTokens = []string{"generated"}
	d.Repos[0] = *repo

	if err := d.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Repos) != 1 {
		t.Fatalf("loaded %d repos, want 1", len(loaded.Repos))
	}
	got := loaded.Repos[0]
	if got.RepoUID != repo.RepoUID || got.Owner != "acme" || got.DefaultBranch != "develop" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.StripPrefixes) != 1 || got.StripPrefixes[0] != "packages/web/" {
		t.Errorf("StripPrefixes = %v", got.StripPrefixes)
	}
}
