package repositories

import (
	"context"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// ScopedCheckout is an upstream working copy held for the duration of
// revision resolution.
type ScopedCheckout interface {
	Git() GitRepository
	// Release gives the checkout back. Temporary clones are removed; it is
	// safe to call more than once.
	Release() error
}

// CheckoutRepository acquires scoped upstream checkouts.
type CheckoutRepository interface {
	Acquire(ctx context.Context, spec entities.CheckoutSpec) (ScopedCheckout, error)
}
