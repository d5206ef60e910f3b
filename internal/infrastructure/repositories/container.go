package repositories

import (
	"io"
	"os"

	"go.uber.org/dig"

	domainRepos "github.com/rios0rios0/rolldeps/internal/domain/repositories"
	gitRepo "github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/git"
	manifestRepo "github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/manifest"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
	reviewRepo "github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/review"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Everything user-facing goes to stdout
	if err := container.Provide(func() io.Writer { return os.Stdout }); err != nil {
		return err
	}

	// Register concrete constructors
	if err := container.Provide(process.NewRunner); err != nil {
		return err
	}
	if err := container.Provide(gitRepo.NewProvider); err != nil {
		return err
	}
	if err := container.Provide(gitRepo.NewCheckoutRepository); err != nil {
		return err
	}
	if err := container.Provide(reviewRepo.NewProvider); err != nil {
		return err
	}
	if err := container.Provide(manifestRepo.NewDepsRepository); err != nil {
		return err
	}

	// Bind domain interfaces to implementations
	if err := container.Provide(func(impl *gitRepo.Provider) domainRepos.GitProvider {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *gitRepo.CheckoutRepository) domainRepos.CheckoutRepository {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *reviewRepo.Provider) domainRepos.ReviewProvider {
		return impl
	}); err != nil {
		return err
	}
	if err := container.Provide(func(impl *manifestRepo.DepsRepository) domainRepos.ManifestRepository {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
