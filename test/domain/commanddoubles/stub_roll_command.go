//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/rolldeps/internal/domain/commands"
	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// StubRollCommand is a stub implementation of commands.Roll.
type StubRollCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *entities.RollResult
	LastSettings     *entities.Settings
	LastRequest      entities.RevisionRequest
}

var _ commands.Roll = (*StubRollCommand)(nil)

func (s *StubRollCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	req entities.RevisionRequest,
) (*entities.RollResult, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastRequest = req
	if s.ExecuteErr != nil {
		return nil, s.ExecuteErr
	}
	if s.Result == nil {
		return &entities.RollResult{}, nil
	}
	return s.Result, nil
}
