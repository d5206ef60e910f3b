package git

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
)

// TempPrefix names temporary upstream clones.
const TempPrefix = "git_skia_tmp_"

// CheckoutRepository hands out upstream checkouts: a refreshed persistent
// working copy when one is configured, otherwise a throwaway shallow clone.
type CheckoutRepository struct {
	runner   *process.Runner
	provider *Provider

	// BaseDir is where temporary clones are created. Empty means os.TempDir().
	BaseDir string
}

// NewCheckoutRepository returns a CheckoutRepository that clones with runner.
func NewCheckoutRepository(runner *process.Runner, provider *Provider) *CheckoutRepository {
	return &CheckoutRepository{runner: runner, provider: provider}
}

var _ repositories.CheckoutRepository = (*CheckoutRepository)(nil)

// Acquire fetches into spec.Path, or clones spec.URL truncated to spec.Depth
// commits into a new temporary directory. A failed clone leaves nothing
// behind.
func (c *CheckoutRepository) Acquire(ctx context.Context, spec entities.CheckoutSpec) (repositories.ScopedCheckout, error) {
	if spec.Path != "" {
		repo := c.provider.Open(spec.Path, spec.Tool)
		logger.Debugf("Refreshing %s in %s", spec.Remote, spec.Path)
		if err := repo.Fetch(ctx, spec.Remote); err != nil {
			return nil, fmt.Errorf("failed to refresh upstream checkout %s: %w", spec.Path, err)
		}
		return &persistentCheckout{repo: repo}, nil
	}

	if spec.Depth <= 0 {
		return nil, fmt.Errorf("%w: clone depth must be positive, got %d", entities.ErrConfiguration, spec.Depth)
	}

	dir, err := os.MkdirTemp(c.BaseDir, TempPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary checkout: %w", err)
	}

	args := []string{
		gitBinary(spec.Tool.Git), "clone", "-q",
		fmt.Sprintf("--depth=%d", spec.Depth),
		"--single-branch", "--branch", spec.Branch,
		"--origin", spec.Remote,
		spec.URL, ".",
	}
	opts := process.Options{Dir: dir, Echo: spec.Tool.Verbose, Quiet: !spec.Tool.Verbose}
	logger.Debugf("Cloning %s (depth %d) into %s", spec.URL, spec.Depth, dir)
	if cloneErr := c.runner.Run(ctx, opts, args...); cloneErr != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logger.Warnf("Failed to remove %s: %v", dir, rmErr)
		}
		return nil, fmt.Errorf("failed to clone %s: %w", spec.URL, cloneErr)
	}

	return &tempCheckout{dir: dir, repo: c.provider.Open(dir, spec.Tool)}, nil
}

type persistentCheckout struct {
	repo repositories.GitRepository
}

func (p *persistentCheckout) Git() repositories.GitRepository { return p.repo }

func (p *persistentCheckout) Release() error { return nil }

type tempCheckout struct {
	dir      string
	repo     repositories.GitRepository
	released bool
}

func (t *tempCheckout) Git() repositories.GitRepository { return t.repo }

func (t *tempCheckout) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	logger.Debugf("Removing temporary checkout %s", t.dir)
	if err := os.RemoveAll(t.dir); err != nil {
		return fmt.Errorf("failed to remove temporary checkout %s: %w", t.dir, err)
	}
	return nil
}
