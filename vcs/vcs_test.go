package vcs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/apognu/knox/errs"
)

func TestInitCreatesRepositoryWithInitialCommit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := Open(dir)

	if err := repo.Init(); err != nil {
		t.Fatalf("could not init: %v", err)
	}

	gitRepo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("could not open repository after init: %v", err)
	}

	head, err := gitRepo.Head()
	if err != nil {
		t.Fatalf("could not resolve HEAD: %v", err)
	}

	commit, err := gitRepo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("could not find HEAD commit: %v", err)
	}
	if commit.Message != "Initialized knox repository." {
		t.Fatalf("got commit message %q, want %q", commit.Message, "Initialized knox repository.")
	}
}

func TestCommitIsNoOpWithoutRepository(t *testing.T) {
	t.Parallel()

	repo := Open(t.TempDir())
	if err := repo.Commit("should be ignored"); err != nil {
		t.Fatalf("expected Commit on a non-repository to be a no-op, got %v", err)
	}
}

func TestCommitAddsSubsequentChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := Open(dir)

	if err := repo.Init(); err != nil {
		t.Fatalf("could not init: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "entry"), []byte("encrypted-bytes"), 0o600); err != nil {
		t.Fatalf("could not write fixture file: %v", err)
	}

	if err := repo.Commit("Added entry."); err != nil {
		t.Fatalf("could not commit: %v", err)
	}

	gitRepo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("could not open repository: %v", err)
	}

	head, err := gitRepo.Head()
	if err != nil {
		t.Fatalf("could not resolve HEAD: %v", err)
	}

	var messages []string
	iter, err := gitRepo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		t.Fatalf("could not walk log: %v", err)
	}
	if err := iter.ForEach(func(c *object.Commit) error {
		messages = append(messages, c.Message)
		return nil
	}); err != nil {
		t.Fatalf("could not walk commits: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("got %d commits, want 2", len(messages))
	}
	if messages[0] != "Added entry." {
		t.Fatalf("got latest commit message %q, want %q", messages[0], "Added entry.")
	}
}

func TestSetRemoteRequiresExistingRepository(t *testing.T) {
	t.Parallel()

	repo := Open(t.TempDir())
	if err := repo.SetRemote("git@example.com:foo/bar.git"); !errors.Is(err, errs.ErrVersionControl) {
		t.Fatalf("expected ErrVersionControl, got %v", err)
	}
}

func TestSetRemoteReplacesExistingOrigin(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := Open(dir)
	if err := repo.Init(); err != nil {
		t.Fatalf("could not init: %v", err)
	}

	if err := repo.SetRemote("git@example.com:foo/bar.git"); err != nil {
		t.Fatalf("could not set remote: %v", err)
	}
	if err := repo.SetRemote("git@example.com:foo/baz.git"); err != nil {
		t.Fatalf("could not replace remote: %v", err)
	}

	gitRepo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatalf("could not open repository: %v", err)
	}
	remote, err := gitRepo.Remote("origin")
	if err != nil {
		t.Fatalf("could not find origin remote: %v", err)
	}
	if got := remote.Config().URLs[0]; got != "git@example.com:foo/baz.git" {
		t.Fatalf("got remote URL %q, want replacement URL", got)
	}
}

func TestPushRequiresExistingRepository(t *testing.T) {
	t.Parallel()

	repo := Open(t.TempDir())
	if err := repo.Push(); !errors.Is(err, errs.ErrVersionControl) {
		t.Fatalf("expected ErrVersionControl, got %v", err)
	}
}

func TestRejectedUsername(t *testing.T) {
	t.Parallel()

	if !rejectedUsername(errors.New(`ssh: handshake failed: unable to authenticate, attempted methods [none publickey], no supported methods remain (Username mismatch)`)) {
		t.Fatalf("expected username-shaped error to be detected")
	}
	if rejectedUsername(errors.New("connection refused")) {
		t.Fatalf("did not expect a non-username error to be detected")
	}
}

func TestCurrentUsernameNeverEmpty(t *testing.T) {
	t.Parallel()

	if currentUsername() == "" {
		t.Fatalf("currentUsername should never return an empty string")
	}
}
