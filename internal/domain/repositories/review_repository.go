package repositories

import (
	"context"
	"io"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// ReviewRepository delegates code-review upload and try-jobs to an existing
// review tool for the branch checked out in one working copy.
type ReviewRepository interface {
	Upload(ctx context.Context) error
	// Issue returns the identifier of the review attached to the branch.
	Issue(ctx context.Context) (string, error)
	// Try triggers try-jobs. A negative revision omits the revision pin.
	Try(ctx context.Context, revision int, bots []string) error
	// PrintInstructions writes the commands an operator would run by hand to
	// upload branch and trigger bots.
	PrintInstructions(out io.Writer, branch string, revision int, bots []string)
}

// ReviewProvider opens a ReviewRepository on a working copy.
type ReviewProvider interface {
	Open(dir string, opts entities.ReviewOptions) ReviewRepository
}
