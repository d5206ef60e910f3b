//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// StubCheckoutRepository hands out Repo wrapped in a checkout that counts
// its releases.
type StubCheckoutRepository struct {
	Repo       repositories.GitRepository
	AcquireErr error
	ReleaseErr error

	Acquired []entities.CheckoutSpec
	Released int
}

var _ repositories.CheckoutRepository = (*StubCheckoutRepository)(nil)

func (s *StubCheckoutRepository) Acquire(_ context.Context, spec entities.CheckoutSpec) (repositories.ScopedCheckout, error) {
	s.Acquired = append(s.Acquired, spec)
	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}
	return &stubCheckout{owner: s}, nil
}

type stubCheckout struct {
	owner *StubCheckoutRepository
}

func (c *stubCheckout) Git() repositories.GitRepository { return c.owner.Repo }

func (c *stubCheckout) Release() error {
	c.owner.Released++
	return c.owner.ReleaseErr
}
