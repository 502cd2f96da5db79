// Package vcs wraps a vault's optional git integration, built on
// github.com/go-git/go-git/v5 rather than shelling out to git. A vault
// directory that is not (yet) a repository is not an error for Init/Commit
// -- it just means version control is disabled for that vault -- but
// SetRemote and Push require one to already exist.
package vcs

import (
	"errors"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/apognu/knox/errs"
)

// Repo wraps a single vault directory's optional git repository.
type Repo struct {
	path string
}

// Open returns a Repo bound to path. It does not require path to already
// be a git repository -- that is only checked by the methods that need it.
func Open(path string) *Repo {
	return &Repo{path: path}
}

// Init creates a new git repository at the vault path, then makes an
// initial commit of everything currently on disk.
func (r *Repo) Init() error {
	if _, err := git.PlainInit(r.path, false); err != nil {
		return fmt.Errorf("could not init git repository: %w", errs.ErrVersionControl)
	}
	return r.Commit("Initialized knox repository.")
}

// Commit stages every file under the vault path and commits it with
// message. If the vault directory is not a git repository, Commit is a
// silent no-op: version control is an optional enhancement, and a store
// mutation must never fail because it couldn't be committed.
func (r *Repo) Commit(message string) error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil
		}
		return fmt.Errorf("could not open git repository: %w", errs.ErrVersionControl)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not open worktree: %w", errs.ErrVersionControl)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("could not stage changes: %w", errs.ErrVersionControl)
	}

	name, email := gitIdentity(repo)

	if _, err := wt.Commit(message, &git.CommitOptions{
		Author:            &object.Signature{Name: name, Email: email, When: time.Now()},
		AllowEmptyCommits: true,
	}); err != nil {
		return fmt.Errorf("could not commit changes: %w", errs.ErrVersionControl)
	}

	return nil
}

// SetRemote points the repository's "origin" remote at url, creating it if
// necessary. Unlike Commit, this requires path to already be a repository.
func (r *Repo) SetRemote(url string) error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		return fmt.Errorf("could not open git repository: %w", errs.ErrVersionControl)
	}

	if err := repo.DeleteRemote("origin"); err != nil && !errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("could not remove existing remote: %w", errs.ErrVersionControl)
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	}); err != nil {
		return fmt.Errorf("could not set remote: %w", errs.ErrVersionControl)
	}

	return nil
}

// Push pushes HEAD to the "origin" remote over SSH, using the host's
// SSH agent for authentication. If the remote rejects the connecting
// username, the push is retried once with "git", the convention used by
// repository-hosting SSH endpoints.
func (r *Repo) Push() error {
	repo, err := git.PlainOpen(r.path)
	if err != nil {
		return fmt.Errorf("could not open git repository: %w", errs.ErrVersionControl)
	}

	username := currentUsername()

	auth, err := ssh.NewSSHAgentAuth(username)
	if err != nil {
		return fmt.Errorf("could not reach SSH agent: %w", errs.ErrVersionControl)
	}

	err = repo.Push(&git.PushOptions{RemoteName: "origin", Auth: auth})
	switch {
	case err == nil, errors.Is(err, git.NoErrAlreadyUpToDate):
		return nil
	case rejectedUsername(err):
		retryAuth, authErr := ssh.NewSSHAgentAuth("git")
		if authErr != nil {
			return fmt.Errorf("could not reach SSH agent: %w", errs.ErrVersionControl)
		}
		if err := repo.Push(&git.PushOptions{RemoteName: "origin", Auth: retryAuth}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("could not push to remote: %w", errs.ErrVersionControl)
		}
		return nil
	default:
		return fmt.Errorf("could not push to remote: %w", errs.ErrVersionControl)
	}
}

func rejectedUsername(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "username") || strings.Contains(msg, "Username")
}

func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "git"
}

func gitIdentity(repo *git.Repository) (name, email string) {
	name, email = "knox", "N/A"

	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return name, email
	}
	if cfg.User.Name != "" {
		name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		email = cfg.User.Email
	}
	return name, email
}
