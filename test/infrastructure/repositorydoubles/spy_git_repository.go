//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"strings"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// SpyGitRepository is an in-memory working copy. It tracks the current ref,
// local branches and the stash, and records every mutating call in Calls as
// "<Method> <args...>".
//
// Errs fails a method: the key "<Method> <arg>" is checked before "<Method>".
type SpyGitRepository struct {
	WorkDir string

	Dirty    bool
	Current  string
	Branches map[string]bool
	Stash    int

	Messages map[string]string // ref -> commit message
	Hashes   map[string]string // ref -> full hash
	Files    map[string]string // "<ref>:<path>" -> content
	Recent   []entities.Commit
	Resolved map[string]string // partial -> full hash

	Errs  map[string]error
	Calls []string

	Added          []string
	CommitMessages []string
	RecentLimits   []int
}

var _ repositories.GitRepository = (*SpyGitRepository)(nil)

// NewSpyGitRepository returns a clean working copy on main.
func NewSpyGitRepository(dir, main string) *SpyGitRepository {
	return &SpyGitRepository{
		WorkDir:  dir,
		Current:  main,
		Branches: map[string]bool{main: true},
		Messages: map[string]string{},
		Hashes:   map[string]string{},
		Files:    map[string]string{},
		Resolved: map[string]string{},
		Errs:     map[string]error{},
	}
}

func (s *SpyGitRepository) fail(method, arg string) error {
	if err, ok := s.Errs[method+" "+arg]; ok {
		return err
	}
	return s.Errs[method]
}

func (s *SpyGitRepository) record(method string, args ...string) {
	s.Calls = append(s.Calls, strings.TrimSpace(method+" "+strings.Join(args, " ")))
}

// CallsOf returns the recorded calls of method.
func (s *SpyGitRepository) CallsOf(method string) []string {
	var calls []string
	for _, call := range s.Calls {
		if call == method || strings.HasPrefix(call, method+" ") {
			calls = append(calls, call)
		}
	}
	return calls
}

func (s *SpyGitRepository) Dir() string { return s.WorkDir }

func (s *SpyGitRepository) Fetch(_ context.Context, remote string) error {
	s.record("Fetch", remote)
	return s.fail("Fetch", remote)
}

func (s *SpyGitRepository) RefHash(_ context.Context, ref string) (string, error) {
	if err := s.fail("RefHash", ref); err != nil {
		return "", err
	}
	hash, ok := s.Hashes[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", entities.ErrRevisionNotFound, ref)
	}
	return hash, nil
}

func (s *SpyGitRepository) CommitMessage(_ context.Context, commit string) (string, error) {
	if err := s.fail("CommitMessage", commit); err != nil {
		return "", err
	}
	message, ok := s.Messages[commit]
	if !ok {
		return "", fmt.Errorf("unknown commit %s", commit)
	}
	return message, nil
}

func (s *SpyGitRepository) RecentCommits(_ context.Context, ref string, limit int) ([]entities.Commit, error) {
	s.RecentLimits = append(s.RecentLimits, limit)
	if err := s.fail("RecentCommits", ref); err != nil {
		return nil, err
	}
	if limit < len(s.Recent) {
		return s.Recent[:limit], nil
	}
	return s.Recent, nil
}

func (s *SpyGitRepository) ResolveCommit(_ context.Context, partial string) (string, error) {
	if err := s.fail("ResolveCommit", partial); err != nil {
		return "", err
	}
	hash, ok := s.Resolved[partial]
	if !ok {
		return "", fmt.Errorf("%w: %s", entities.ErrRevisionNotFound, partial)
	}
	return hash, nil
}

func (s *SpyGitRepository) ShowFile(_ context.Context, ref, path string) (string, error) {
	if err := s.fail("ShowFile", ref+":"+path); err != nil {
		return "", err
	}
	content, ok := s.Files[ref+":"+path]
	if !ok {
		return "", fmt.Errorf("path %s does not exist in %s", path, ref)
	}
	return content, nil
}

func (s *SpyGitRepository) HasUncommittedChanges(_ context.Context) (bool, error) {
	if err := s.fail("HasUncommittedChanges", ""); err != nil {
		return false, err
	}
	return s.Dirty, nil
}

func (s *SpyGitRepository) StashSave(_ context.Context) error {
	s.record("StashSave")
	if err := s.fail("StashSave", ""); err != nil {
		return err
	}
	s.Stash++
	s.Dirty = false
	return nil
}

func (s *SpyGitRepository) StashPop(_ context.Context) error {
	s.record("StashPop")
	if err := s.fail("StashPop", ""); err != nil {
		return err
	}
	if s.Stash == 0 {
		return fmt.Errorf("no stash entries found")
	}
	s.Stash--
	s.Dirty = true
	return nil
}

func (s *SpyGitRepository) CurrentRef(_ context.Context) (string, error) {
	if err := s.fail("CurrentRef", ""); err != nil {
		return "", err
	}
	return s.Current, nil
}

func (s *SpyGitRepository) BranchExists(_ context.Context, branch string) (bool, error) {
	if err := s.fail("BranchExists", branch); err != nil {
		return false, err
	}
	return s.Branches[branch], nil
}

func (s *SpyGitRepository) Checkout(_ context.Context, ref string) error {
	s.record("Checkout", ref)
	if err := s.fail("Checkout", ref); err != nil {
		return err
	}
	s.Current = ref
	return nil
}

func (s *SpyGitRepository) CreateBranch(_ context.Context, branch, from string) error {
	s.record("CreateBranch", branch, from)
	if err := s.fail("CreateBranch", branch); err != nil {
		return err
	}
	if s.Branches[branch] {
		return fmt.Errorf("a branch named '%s' already exists", branch)
	}
	s.Branches[branch] = true
	s.Current = branch
	return nil
}

func (s *SpyGitRepository) DeleteBranch(_ context.Context, branch string) error {
	s.record("DeleteBranch", branch)
	if err := s.fail("DeleteBranch", branch); err != nil {
		return err
	}
	if s.Current == branch {
		return fmt.Errorf("cannot delete branch '%s' checked out", branch)
	}
	delete(s.Branches, branch)
	return nil
}

func (s *SpyGitRepository) DiscardChanges(_ context.Context) error {
	s.record("DiscardChanges")
	return s.fail("DiscardChanges", "")
}

func (s *SpyGitRepository) Add(_ context.Context, path string) error {
	s.record("Add", path)
	if err := s.fail("Add", path); err != nil {
		return err
	}
	s.Added = append(s.Added, path)
	return nil
}

func (s *SpyGitRepository) Commit(_ context.Context, message string) error {
	s.record("Commit")
	if err := s.fail("Commit", ""); err != nil {
		return err
	}
	s.CommitMessages = append(s.CommitMessages, message)
	return nil
}

// StubGitProvider hands out one shared SpyGitRepository.
type StubGitProvider struct {
	Repo        *SpyGitRepository
	ValidateErr error

	OpenedDirs    []string
	ValidateCalls int
}

var _ repositories.GitProvider = (*StubGitProvider)(nil)

func (p *StubGitProvider) Open(dir string, _ entities.ToolOptions) repositories.GitRepository {
	p.OpenedDirs = append(p.OpenedDirs, dir)
	return p.Repo
}

func (p *StubGitProvider) Validate(_ context.Context, _ entities.ToolOptions) error {
	p.ValidateCalls++
	return p.ValidateErr
}
