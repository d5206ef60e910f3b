//go:build unit

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	doubles "github.com/rios0rios0/rolldeps/test/infrastructure/repositorydoubles"
)

func transactionOptions() entities.TransactionOptions {
	return entities.TransactionOptions{
		DefaultBranchName: entities.DefaultBranchName,
		MainBranch:        "master",
		Remote:            "origin",
		Message:           "whitespace change",
	}
}

func stageDeps(_ context.Context, tx *commands.BranchTransaction) error {
	tx.Stage("DEPS")
	return nil
}

func TestRunBranchTransaction(t *testing.T) {
	t.Parallel()

	t.Run("should commit, upload and delete the default branch", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 7 (https://codereview.example/7)"}}
		var out bytes.Buffer

		// when
		result, err := commands.RunBranchTransaction(context.Background(), git, review, &out, transactionOptions(), stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, &entities.TransactionResult{
			BranchName: entities.DefaultBranchName,
			Issue:      "Issue number: 7 (https://codereview.example/7)",
			Kept:       false,
		}, result)
		assert.Equal(t, []string{
			"CreateBranch " + entities.DefaultBranchName + " origin/master",
			"Add DEPS",
			"Commit",
			"Checkout master",
			"DeleteBranch " + entities.DefaultBranchName,
		}, git.Calls)
		assert.Equal(t, []string{"whitespace change"}, git.CommitMessages)
		assert.Equal(t, "master", git.Current)
		assert.Equal(t, 1, review.UploadCount)
		assert.Empty(t, review.TryRevisions)
	})

	t.Run("should stash local edits and pop them afterwards", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Dirty = true
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, transactionOptions(), stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, "StashSave", git.Calls[0])
		assert.Equal(t, "StashPop", git.Calls[len(git.Calls)-1])
		assert.Equal(t, 0, git.Stash)
		assert.True(t, git.Dirty)
	})

	t.Run("should restore even when the body fails", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Current = "feature"
		git.Branches["feature"] = true
		git.Dirty = true
		review := &doubles.StubReviewRepository{}
		bodyErr := errors.New("patch failed")

		// when
		result, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, transactionOptions(),
			func(_ context.Context, _ *commands.BranchTransaction) error { return bodyErr })

		// then
		require.ErrorIs(t, err, bodyErr)
		assert.NotErrorIs(t, err, entities.ErrTransactionRestore)
		assert.Nil(t, result)
		assert.Equal(t, "feature", git.Current)
		assert.False(t, git.Branches[entities.DefaultBranchName])
		assert.Equal(t, 0, git.Stash)
		assert.Empty(t, git.CommitMessages)
		assert.Equal(t, 0, review.UploadCount)
		assert.Equal(t, []string{
			"DiscardChanges",
			"Checkout feature",
			"DeleteBranch " + entities.DefaultBranchName,
			"StashPop",
		}, git.Calls[len(git.Calls)-4:])
	})

	t.Run("should discard the working branch edits after a failed commit", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Errs["Commit"] = errors.New("pre-commit hook rejected")

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), stageDeps)

		// then
		require.Error(t, err)
		assert.NotErrorIs(t, err, entities.ErrTransactionRestore)
		assert.Equal(t, []string{"DiscardChanges"}, git.CallsOf("DiscardChanges"))
		assert.Equal(t, "master", git.Current)
	})

	t.Run("should keep the stash when discarding fails", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Dirty = true
		git.Errs["DiscardChanges"] = errors.New("index.lock exists")
		bodyErr := errors.New("patch failed")

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), func(_ context.Context, _ *commands.BranchTransaction) error { return bodyErr })

		// then
		require.ErrorIs(t, err, entities.ErrTransactionRestore)
		require.ErrorIs(t, err, bodyErr)
		assert.Empty(t, git.CallsOf("Checkout"))
		assert.Empty(t, git.CallsOf("StashPop"))
		assert.Equal(t, 1, git.Stash)
	})

	t.Run("should stop restoring at the first failure and keep the body error", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Current = "feature"
		git.Branches["feature"] = true
		git.Dirty = true
		git.Errs["Checkout feature"] = errors.New("would be overwritten")
		bodyErr := errors.New("patch failed")

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), func(_ context.Context, _ *commands.BranchTransaction) error { return bodyErr })

		// then
		var restoreErr *entities.RestoreError
		require.ErrorAs(t, err, &restoreErr)
		require.ErrorIs(t, err, entities.ErrTransactionRestore)
		require.ErrorIs(t, err, bodyErr)
		assert.Empty(t, git.CallsOf("StashPop"))
		assert.Empty(t, git.CallsOf("DeleteBranch"))
		assert.Equal(t, 1, git.Stash)
	})

	t.Run("should replace a stale working branch", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Current = entities.DefaultBranchName
		git.Branches[entities.DefaultBranchName] = true
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, transactionOptions(), stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Checkout master",
			"DeleteBranch " + entities.DefaultBranchName,
			"CreateBranch " + entities.DefaultBranchName + " origin/master",
		}, git.Calls[:3])
		assert.Equal(t, "master", git.Current)
		assert.False(t, git.Branches[entities.DefaultBranchName])
	})

	t.Run("should return to a detached HEAD", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Current = downstreamHash
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, transactionOptions(), stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, downstreamHash, git.Current)
	})

	t.Run("should keep a named branch", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		opts := transactionOptions()
		opts.BranchName = "control_01234567"
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		result, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, opts, stageDeps)

		// then
		require.NoError(t, err)
		assert.True(t, result.Kept)
		assert.True(t, git.Branches["control_01234567"])
		assert.Equal(t, "master", git.Current)
	})

	t.Run("should report a lost review identifier after a successful upload", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		review := &doubles.StubReviewRepository{IssueErr: errors.New("no issue")}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, transactionOptions(), stageDeps)

		// then
		require.ErrorIs(t, err, entities.ErrReviewCapture)
		assert.Equal(t, 1, review.UploadCount)
		assert.Equal(t, "master", git.Current)
	})

	t.Run("should print instructions instead of uploading", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		opts := transactionOptions()
		opts.SkipUpload = true
		opts.Bots = []string{"linux"}
		review := &doubles.StubReviewRepository{}
		var out bytes.Buffer

		// when
		result, err := commands.RunBranchTransaction(context.Background(), git, review, &out, opts, stageDeps)

		// then
		require.NoError(t, err)
		assert.Empty(t, result.Issue)
		assert.Equal(t, 0, review.UploadCount)
		assert.Equal(t, []string{entities.DefaultBranchName}, review.InstructedBranches)
		assert.Equal(t, "upload "+entities.DefaultBranchName+" (revision 240000, 1 bots)\n", out.String())
	})

	t.Run("should trigger try-jobs at the base revision", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		opts := transactionOptions()
		opts.Bots = []string{"linux", "mac"}
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, opts, stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{240000}, review.TryRevisions)
		assert.Equal(t, [][]string{{"linux", "mac"}}, review.TryBots)
	})

	t.Run("should trigger unpinned try-jobs when the base has no revision", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Messages["HEAD"] = "Plain commit"
		opts := transactionOptions()
		opts.Bots = []string{"linux"}
		review := &doubles.StubReviewRepository{Issues: []string{"Issue number: 1"}}

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, review, &bytes.Buffer{}, opts, stageDeps)

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{-1}, review.TryRevisions)
	})

	t.Run("should refuse to commit when nothing was staged", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), func(_ context.Context, _ *commands.BranchTransaction) error { return nil })

		// then
		require.ErrorIs(t, err, entities.ErrNothingStaged)
		assert.Empty(t, git.CommitMessages)
		assert.Equal(t, "master", git.Current)
	})

	t.Run("should refuse to commit a staged path that does not exist", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), func(_ context.Context, tx *commands.BranchTransaction) error {
				tx.Stage("missing.txt")
				return nil
			})

		// then
		require.Error(t, err)
		assert.Empty(t, git.Added)
		assert.Empty(t, git.CommitMessages)
	})

	t.Run("should not touch branches when preparation fails", func(t *testing.T) {
		t.Parallel()
		// given
		git := newDownstream(t)
		git.Dirty = true
		git.Errs["CurrentRef"] = errors.New("not a git repository")

		// when
		_, err := commands.RunBranchTransaction(context.Background(), git, &doubles.StubReviewRepository{}, &bytes.Buffer{},
			transactionOptions(), stageDeps)

		// then
		require.Error(t, err)
		assert.Equal(t, []string{"StashSave", "StashPop"}, git.Calls)
	})
}
