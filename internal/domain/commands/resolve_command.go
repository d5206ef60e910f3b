package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// Resolve is the interface for the resolve command.
type Resolve interface {
	Execute(ctx context.Context, settings *entities.Settings, req entities.RevisionRequest) (entities.ResolvedRevision, error)
}

// ResolveCommand prints the revision/hash pair a roll would target without
// touching the downstream checkout.
type ResolveCommand struct {
	resolver *RevisionResolver
	gits     repositories.GitProvider
	out      io.Writer
}

// NewResolveCommand creates a new ResolveCommand.
func NewResolveCommand(resolver *RevisionResolver, gits repositories.GitProvider, out io.Writer) *ResolveCommand {
	return &ResolveCommand{resolver: resolver, gits: gits, out: out}
}

func (it *ResolveCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	req entities.RevisionRequest,
) (entities.ResolvedRevision, error) {
	if err := req.Validate(); err != nil {
		return entities.ResolvedRevision{}, err
	}
	if err := settings.ValidateUpstream(); err != nil {
		return entities.ResolvedRevision{}, err
	}
	if err := it.gits.Validate(ctx, settings.Tool()); err != nil {
		return entities.ResolvedRevision{}, err
	}

	resolved, err := it.resolver.Resolve(ctx, settings, req)
	if err != nil {
		return entities.ResolvedRevision{}, err
	}
	fmt.Fprintf(it.out, "revision=%d\nhash=%s\n", resolved.Revision, resolved.Hash)
	return resolved, nil
}
