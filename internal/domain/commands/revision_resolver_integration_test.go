//go:build integration

package commands_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/git"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
	"github.com/rios0rios0/rolldeps/test/domain/entitybuilders"
	"github.com/rios0rios0/rolldeps/test/infrastructure/gitfixtures"
)

func TestRevisionResolverAgainstRealCheckouts(t *testing.T) {
	t.Parallel()

	newResolver := func(t *testing.T) (*commands.RevisionResolver, string, string) {
		t.Helper()
		upstream := gitfixtures.Init(t, t.TempDir())
		for rev := 12000; rev <= 12003; rev++ {
			upstream.Commit(svnCommit("Skia", rev), map[string]string{"src/a.cpp": strconv.Itoa(rev)})
		}
		runner := process.NewRunner()
		checkouts := git.NewCheckoutRepository(runner, git.NewProvider(runner))
		checkouts.BaseDir = t.TempDir()
		return commands.NewRevisionResolver(checkouts), upstream.URL(), checkouts.BaseDir
	}

	tempClones := func(t *testing.T, base string) []string {
		t.Helper()
		matches, err := filepath.Glob(filepath.Join(base, git.TempPrefix+"*"))
		require.NoError(t, err)
		return matches
	}

	t.Run("should find a revision inside the window and remove the clone", func(t *testing.T) {
		t.Parallel()
		// given
		resolver, url, base := newResolver(t)
		settings := entitybuilders.NewSettingsBuilder().WithUpstreamURL(url).WithSearchDepth(10).BuildSettings()

		// when
		resolved, err := resolver.Resolve(context.Background(), settings, entities.RevisionRequest{Revision: 12001})

		// then
		require.NoError(t, err)
		assert.Equal(t, 12001, resolved.Revision)
		assert.Empty(t, tempClones(t, base))
	})

	t.Run("should remove the clone when the revision is missing", func(t *testing.T) {
		t.Parallel()
		// given
		resolver, url, base := newResolver(t)
		settings := entitybuilders.NewSettingsBuilder().WithUpstreamURL(url).WithSearchDepth(10).BuildSettings()

		// when
		_, err := resolver.Resolve(context.Background(), settings, entities.RevisionRequest{Revision: 99999})

		// then
		require.ErrorIs(t, err, entities.ErrRevisionNotFound)
		assert.Empty(t, tempClones(t, base))
	})

	t.Run("should remove the clone when the revision is outside the window", func(t *testing.T) {
		t.Parallel()
		// given
		resolver, url, base := newResolver(t)
		settings := entitybuilders.NewSettingsBuilder().WithUpstreamURL(url).WithSearchDepth(2).BuildSettings()

		// when
		_, err := resolver.Resolve(context.Background(), settings, entities.RevisionRequest{Revision: 12000})

		// then
		require.ErrorIs(t, err, entities.ErrRevisionNotFound)
		assert.Empty(t, tempClones(t, base))
	})

	t.Run("should remove the clone when a partial hash is unknown", func(t *testing.T) {
		t.Parallel()
		// given
		resolver, url, base := newResolver(t)
		settings := entitybuilders.NewSettingsBuilder().WithUpstreamURL(url).BuildSettings()

		// when
		_, err := resolver.Resolve(context.Background(), settings, entities.RevisionRequest{PartialHash: "deadbeef"})

		// then
		require.ErrorIs(t, err, entities.ErrRevisionNotFound)
		assert.Empty(t, tempClones(t, base))
	})
}
