package repositories

import (
	"context"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// GitRepository abstracts the version-control operations run against one
// working copy. Every method blocks until the underlying tool has exited.
type GitRepository interface {
	// Dir returns the working copy this repository operates on.
	Dir() string

	// Fetch refreshes the remote-tracking refs of remote.
	Fetch(ctx context.Context, remote string) error

	// RefHash returns the full hash a remote-tracking or local ref points at.
	RefHash(ctx context.Context, ref string) (string, error)

	// CommitMessage returns the full message of commit.
	CommitMessage(ctx context.Context, commit string) (string, error)

	// RecentCommits returns up to limit commits reachable from ref, newest first.
	RecentCommits(ctx context.Context, ref string, limit int) ([]entities.Commit, error)

	// ResolveCommit expands a partial identifier to a full hash using the
	// tool's own disambiguation. Unknown or ambiguous identifiers return
	// entities.ErrRevisionNotFound.
	ResolveCommit(ctx context.Context, partial string) (string, error)

	// ShowFile returns the content of path at ref.
	ShowFile(ctx context.Context, ref, path string) (string, error)

	HasUncommittedChanges(ctx context.Context) (bool, error)
	StashSave(ctx context.Context) error
	StashPop(ctx context.Context) error

	// CurrentRef returns the checked-out branch name, or the commit hash
	// when HEAD is detached.
	CurrentRef(ctx context.Context) (string, error)

	BranchExists(ctx context.Context, branch string) (bool, error)
	Checkout(ctx context.Context, ref string) error
	CreateBranch(ctx context.Context, branch, from string) error
	DeleteBranch(ctx context.Context, branch string) error
	// DiscardChanges resets the index and the working tree to HEAD.
	// Untracked files are kept.
	DiscardChanges(ctx context.Context) error
	Add(ctx context.Context, path string) error
	Commit(ctx context.Context, message string) error
}

// GitProvider opens GitRepository instances and checks the git executable.
type GitProvider interface {
	Open(dir string, tool entities.ToolOptions) GitRepository
	Validate(ctx context.Context, tool entities.ToolOptions) error
}
