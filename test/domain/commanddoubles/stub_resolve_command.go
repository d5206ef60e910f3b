//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// StubResolveCommand is a stub implementation of commands.Resolve.
type StubResolveCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Resolved         entities.ResolvedRevision
	LastSettings     *entities.Settings
	LastRequest      entities.RevisionRequest
}

var _ commands.Resolve = (*StubResolveCommand)(nil)

func (s *StubResolveCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	req entities.RevisionRequest,
) (entities.ResolvedRevision, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastRequest = req
	return s.Resolved, s.ExecuteErr
}
