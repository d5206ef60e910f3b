package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// TransactionBody edits files on the working branch and stages them.
type TransactionBody func(ctx context.Context, tx *BranchTransaction) error

// BranchTransaction is one stash/branch/commit/upload/restore cycle against
// the downstream working copy. Only one may be open on a working copy at a
// time; nothing enforces that.
type BranchTransaction struct {
	git    repositories.GitRepository
	review repositories.ReviewRepository
	out    io.Writer
	opts   entities.TransactionOptions
	state  entities.TransactionState

	switched bool
}

// RunBranchTransaction prepares a working branch from the downstream remote
// tip, runs body, then commits and uploads the staged paths. The original
// branch and stash are restored on every exit path. A restore failure is
// reported as *entities.RestoreError wrapping any earlier error.
func RunBranchTransaction(
	ctx context.Context,
	git repositories.GitRepository,
	review repositories.ReviewRepository,
	out io.Writer,
	opts entities.TransactionOptions,
	body TransactionBody,
) (result *entities.TransactionResult, err error) {
	tx := &BranchTransaction{git: git, review: review, out: out, opts: opts}

	defer func() {
		// restore even when ctx was cancelled mid-transaction
		if restoreErr := tx.restore(context.WithoutCancel(ctx), err != nil); restoreErr != nil {
			err = &entities.RestoreError{Cause: err, Err: restoreErr}
		}
	}()

	if err = tx.prepare(ctx); err != nil {
		return nil, err
	}
	if err = body(ctx, tx); err != nil {
		return nil, err
	}
	if err = tx.commitAndUpload(ctx); err != nil {
		return nil, err
	}

	return &entities.TransactionResult{
		BranchName: tx.state.BranchName,
		Issue:      tx.state.ReviewIssue,
		Kept:       !tx.state.UsesDefaultBranch(opts),
	}, nil
}

// Stage declares paths, relative to the working copy, to include in the
// commit. Nothing touches the repository until the body returns.
func (tx *BranchTransaction) Stage(paths ...string) {
	tx.state.StagedPaths = append(tx.state.StagedPaths, paths...)
}

// Dir returns the downstream working copy.
func (tx *BranchTransaction) Dir() string {
	return tx.git.Dir()
}

// Path resolves rel against the working copy.
func (tx *BranchTransaction) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(tx.git.Dir(), rel)
}

// BranchName returns the working branch.
func (tx *BranchTransaction) BranchName() string {
	return tx.state.BranchName
}

// State returns a copy of the transaction bookkeeping.
func (tx *BranchTransaction) State() entities.TransactionState {
	state := tx.state
	state.StagedPaths = append([]string(nil), tx.state.StagedPaths...)
	return state
}

func (tx *BranchTransaction) prepare(ctx context.Context) error {
	dirty, err := tx.git.HasUncommittedChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect working tree: %w", err)
	}
	if dirty {
		logger.Info("Stashing uncommitted changes")
		if err = tx.git.StashSave(ctx); err != nil {
			return fmt.Errorf("failed to stash changes: %w", err)
		}
		tx.state.Stashed = true
	}

	original, err := tx.git.CurrentRef(ctx)
	if err != nil {
		return fmt.Errorf("failed to read current branch: %w", err)
	}
	tx.state.OriginalRef = original

	tx.state.BranchName = tx.opts.BranchName
	if tx.state.BranchName == "" {
		tx.state.BranchName = tx.opts.DefaultBranchName
	}

	exists, err := tx.git.BranchExists(ctx, tx.state.BranchName)
	if err != nil {
		return err
	}
	if exists {
		// left over from an earlier run that did not finish
		logger.Warnf("Deleting stale branch %s", tx.state.BranchName)
		tx.switched = true
		if err = tx.git.Checkout(ctx, tx.opts.MainBranch); err != nil {
			return fmt.Errorf("failed to leave stale branch: %w", err)
		}
		if err = tx.git.DeleteBranch(ctx, tx.state.BranchName); err != nil {
			return fmt.Errorf("failed to delete stale branch: %w", err)
		}
	}

	logger.Infof("Creating branch %s from %s", tx.state.BranchName, tx.opts.BaseRef())
	tx.switched = true
	if err = tx.git.CreateBranch(ctx, tx.state.BranchName, tx.opts.BaseRef()); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", tx.state.BranchName, err)
	}
	tx.state.BranchCreated = true
	return nil
}

func (tx *BranchTransaction) commitAndUpload(ctx context.Context) error {
	if len(tx.state.StagedPaths) == 0 {
		return entities.ErrNothingStaged
	}

	revision := tx.baseRevision(ctx)

	for _, path := range tx.state.StagedPaths {
		if _, err := os.Stat(tx.Path(path)); err != nil {
			return fmt.Errorf("staged path %s: %w", path, err)
		}
		if err := tx.git.Add(ctx, path); err != nil {
			return fmt.Errorf("failed to add %s: %w", path, err)
		}
	}
	if err := tx.git.Commit(ctx, tx.opts.Message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if tx.opts.SkipUpload {
		tx.review.PrintInstructions(tx.out, tx.state.BranchName, revision, tx.opts.Bots)
		tx.state.ReviewIssue = ""
		return nil
	}

	logger.Infof("Uploading %s for review", tx.state.BranchName)
	if err := tx.review.Upload(ctx); err != nil {
		return fmt.Errorf("failed to upload %s: %w", tx.state.BranchName, err)
	}
	tx.state.ReviewUploaded = true

	issue, err := tx.review.Issue(ctx)
	if err != nil || issue == "" {
		if err == nil {
			err = errors.New("empty output")
		}
		return fmt.Errorf("%w (branch %s): %w", entities.ErrReviewCapture, tx.state.BranchName, err)
	}
	tx.state.ReviewIssue = issue

	if len(tx.opts.Bots) > 0 {
		logger.Infof("Triggering %d try-jobs", len(tx.opts.Bots))
		if err = tx.review.Try(ctx, revision, tx.opts.Bots); err != nil {
			return fmt.Errorf("failed to trigger try-jobs for %s: %w", issue, err)
		}
	}
	return nil
}

// baseRevision is the external revision embedded in the working branch's
// base commit, or -1 when it has none.
func (tx *BranchTransaction) baseRevision(ctx context.Context) int {
	if len(tx.opts.Bots) == 0 {
		return -1
	}
	message, err := tx.git.CommitMessage(ctx, "HEAD")
	if err != nil {
		logger.Warnf("Failed to read base commit: %v", err)
		return -1
	}
	revision, err := entities.ExtractRevision(message)
	if err != nil {
		logger.Warnf("Try-jobs will not be pinned to a revision: %v", err)
		return -1
	}
	return revision
}

// restore undoes prepare in reverse order and stops at the first failure,
// since every later step depends on the earlier one. After a failure the
// working branch may still carry uncommitted edits; they are discarded so the
// original branch can be checked out. The operator's own edits are in the
// stash at that point.
func (tx *BranchTransaction) restore(ctx context.Context, failed bool) error {
	if failed && tx.state.BranchCreated {
		logger.Infof("Discarding uncommitted changes on %s", tx.state.BranchName)
		if err := tx.git.DiscardChanges(ctx); err != nil {
			return fmt.Errorf("failed to discard changes on %s: %w", tx.state.BranchName, err)
		}
	}

	if tx.switched && tx.state.OriginalRef != "" {
		target := tx.state.OriginalRef
		if target == tx.opts.DefaultBranchName {
			target = tx.opts.MainBranch
		}
		if err := tx.git.Checkout(ctx, target); err != nil {
			return fmt.Errorf("failed to check out %s: %w", target, err)
		}
	}

	if tx.state.BranchCreated && tx.state.UsesDefaultBranch(tx.opts) {
		if err := tx.git.DeleteBranch(ctx, tx.state.BranchName); err != nil {
			return fmt.Errorf("failed to delete %s: %w", tx.state.BranchName, err)
		}
	}

	if tx.state.Stashed {
		if err := tx.git.StashPop(ctx); err != nil {
			return fmt.Errorf("failed to pop stash: %w", err)
		}
	}
	return nil
}
