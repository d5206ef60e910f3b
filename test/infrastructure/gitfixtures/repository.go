//go:build integration || unit || test

// Package gitfixtures builds real git repositories for integration tests
// without shelling out to git.
package gitfixtures //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	authorName  = "Roll Bot"
	authorEmail = "roll-bot@example.com"
)

// Repository is a non-bare repository on disk.
type Repository struct {
	t    testing.TB
	Dir  string
	repo *git.Repository
}

// Init creates an empty repository on master in dir.
func Init(t testing.TB, dir string) *Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	r := &Repository{t: t, Dir: dir, repo: repo}
	r.configureUser()
	return r
}

// Clone clones url into dir, so that origin/master tracks the source.
func Clone(t testing.TB, url, dir string) *Repository {
	t.Helper()
	//nolint:exhaustruct // only the URL matters for local clones
	repo, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url})
	require.NoError(t, err)
	r := &Repository{t: t, Dir: dir, repo: repo}
	r.configureUser()
	return r
}

// configureUser lets the git CLI commit in this repository.
func (r *Repository) configureUser() {
	r.t.Helper()
	cfg, err := r.repo.Config()
	require.NoError(r.t, err)
	cfg.User.Name = authorName
	cfg.User.Email = authorEmail
	require.NoError(r.t, r.repo.SetConfig(cfg))
}

// URL returns a file:// URL, which makes `git clone --depth` take effect.
func (r *Repository) URL() string {
	return "file://" + filepath.ToSlash(r.Dir)
}

// Commit writes files (relative path -> content), stages them and commits
// with message. It returns the full commit hash.
func (r *Repository) Commit(message string, files map[string]string) string {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)

	for path, content := range files {
		full := filepath.Join(r.Dir, path)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
		_, err = wt.Add(path)
		require.NoError(r.t, err)
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		AllowEmptyCommits: len(files) == 0,
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	require.NoError(r.t, err)
	return hash.String()
}

// Head returns the hash HEAD points to.
func (r *Repository) Head() string {
	r.t.Helper()
	ref, err := r.repo.Head()
	require.NoError(r.t, err)
	return ref.Hash().String()
}

// Branches returns the local branch names.
func (r *Repository) Branches() []string {
	r.t.Helper()
	iter, err := r.repo.Branches()
	require.NoError(r.t, err)
	var names []string
	for {
		ref, nextErr := iter.Next()
		if nextErr != nil {
			break
		}
		names = append(names, ref.Name().Short())
	}
	return names
}

// CurrentBranch returns the short name HEAD points to.
func (r *Repository) CurrentBranch() string {
	r.t.Helper()
	ref, err := r.repo.Head()
	require.NoError(r.t, err)
	return ref.Name().Short()
}

// ReadFile returns the working-tree content of path.
func (r *Repository) ReadFile(path string) string {
	r.t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Dir, path))
	require.NoError(r.t, err)
	return string(data)
}

// WriteFile changes path in the working tree without committing.
func (r *Repository) WriteFile(path, content string) {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.Dir, path), []byte(content), 0o644))
}

// Message returns the full message of commit hash.
func (r *Repository) Message(hash string) string {
	r.t.Helper()
	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(r.t, err)
	return commit.Message
}
