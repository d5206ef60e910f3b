//go:build unit

package entities_test

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

func TestProcessError(t *testing.T) {
	t.Parallel()

	t.Run("should match ErrProcessFailure and unwrap the cause", func(t *testing.T) {
		t.Parallel()
		// given
		cause := exec.ErrNotFound
		err := error(&entities.ProcessError{Args: []string{"git", "status"}, Dir: "/src", ExitCode: -1, Err: cause})

		// when
		var processErr *entities.ProcessError
		ok := errors.As(err, &processErr)

		// then
		require.True(t, ok)
		require.ErrorIs(t, err, entities.ErrProcessFailure)
		require.ErrorIs(t, err, exec.ErrNotFound)
		assert.Equal(t, "git status: "+cause.Error()+" (in /src)", err.Error())
	})

	t.Run("should append the captured output", func(t *testing.T) {
		t.Parallel()
		// given
		err := &entities.ProcessError{Args: []string{"git", "push"}, Err: errors.New("exit status 1"), Output: "rejected\n"}

		// when
		msg := err.Error()

		// then
		assert.Equal(t, "git push: exit status 1\nrejected", msg)
	})
}

func TestRestoreError(t *testing.T) {
	t.Parallel()

	t.Run("should keep the body error reachable", func(t *testing.T) {
		t.Parallel()
		// given
		cause := entities.ErrReviewCapture
		err := error(&entities.RestoreError{Cause: cause, Err: errors.New("checkout failed")})

		// when
		msg := err.Error()

		// then
		require.ErrorIs(t, err, entities.ErrTransactionRestore)
		require.ErrorIs(t, err, entities.ErrReviewCapture)
		assert.Contains(t, msg, cause.Error())
		assert.Contains(t, msg, "checkout failed")
	})

	t.Run("should report only the restore failure without a cause", func(t *testing.T) {
		t.Parallel()
		// given
		err := &entities.RestoreError{Err: errors.New("no stash entries found")}

		// when
		msg := err.Error()

		// then
		assert.Equal(t, "failed to restore working tree: no stash entries found", msg)
	})
}
