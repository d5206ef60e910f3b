//go:build unit

package review_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/review"
)

func TestGitClRepositoryPrintInstructions(t *testing.T) {
	t.Parallel()

	t.Run("should print the upload and try commands", func(t *testing.T) {
		t.Parallel()
		// given
		provider := review.NewProvider(process.NewRunner())
		repo := provider.Open("/src/chromium", entities.ReviewOptions{
			Tool: entities.ToolOptions{Git: "git"},
			CC:   "skia-team@google.com",
		})
		var out bytes.Buffer

		// when
		repo.PrintInstructions(&out, "roll_12345_01234567", 240000, []string{"linux", "mac"})

		// then
		assert.Equal(t, "You should call:\n"+
			"    cd /src/chromium\n"+
			"    git checkout roll_12345_01234567\n"+
			"    git cl upload -f --cc=skia-team@google.com --bypass-hooks --bypass-watchlists\n"+
			"    git cl try --revision 240000 -b linux -b mac\n"+
			"\n", out.String())
	})

	t.Run("should omit the try command without bots and the revision when unknown", func(t *testing.T) {
		t.Parallel()
		// given
		provider := review.NewProvider(process.NewRunner())
		withoutBots := provider.Open("/src", entities.ReviewOptions{})
		var first, second bytes.Buffer

		// when
		withoutBots.PrintInstructions(&first, "control_01234567", 1, nil)
		withoutBots.PrintInstructions(&second, "control_01234567", -1, []string{"win"})

		// then
		assert.NotContains(t, first.String(), "git cl try")
		assert.Contains(t, second.String(), "    git cl try -b win\n")
	})
}
