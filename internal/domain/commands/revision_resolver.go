package commands

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

// RevisionResolver maps an external revision number, a partial commit hash,
// or nothing (the upstream tip) to a verified revision/hash pair. Every
// lookup runs inside a scoped upstream checkout that is released on return.
type RevisionResolver struct {
	checkouts repositories.CheckoutRepository
}

// NewRevisionResolver creates a resolver that acquires checkouts from checkouts.
func NewRevisionResolver(checkouts repositories.CheckoutRepository) *RevisionResolver {
	return &RevisionResolver{checkouts: checkouts}
}

type resolveFunc func(ctx context.Context, git repositories.GitRepository, spec entities.CheckoutSpec) (entities.ResolvedRevision, error)

// Resolve validates req before acquiring any checkout, so contradictory input
// never touches the network or the filesystem.
func (it *RevisionResolver) Resolve(
	ctx context.Context,
	settings *entities.Settings,
	req entities.RevisionRequest,
) (entities.ResolvedRevision, error) {
	if err := req.Validate(); err != nil {
		return entities.ResolvedRevision{}, err
	}

	var (
		depth   int
		resolve resolveFunc
	)
	switch {
	case req.PartialHash != "":
		logger.Infof("Resolving partial hash %s", req.PartialHash)
		depth = settings.SearchDepth
		resolve = func(ctx context.Context, git repositories.GitRepository, _ entities.CheckoutSpec) (entities.ResolvedRevision, error) {
			return resolveFromPartial(ctx, git, req.PartialHash)
		}
	case req.Revision > 0:
		logger.Infof("Searching the last %d commits for revision %d", settings.SearchDepth, req.Revision)
		depth = settings.SearchDepth
		resolve = func(ctx context.Context, git repositories.GitRepository, spec entities.CheckoutSpec) (entities.ResolvedRevision, error) {
			return resolveFromRevision(ctx, git, spec, settings.RevisionFormat, req.Revision)
		}
	default:
		logger.Info("Resolving the upstream tip")
		depth = 1
		resolve = resolveLatest
	}

	resolved, err := it.withCheckout(ctx, entities.CheckoutSpecFor(settings, depth), resolve)
	if err != nil {
		return entities.ResolvedRevision{}, err
	}
	if !entities.IsFullHash(resolved.Hash) {
		return entities.ResolvedRevision{}, fmt.Errorf("%w: %q is not a full commit hash", entities.ErrRevisionNotFound, resolved.Hash)
	}

	logger.Infof("Resolved %s", resolved)
	return resolved, nil
}

func (it *RevisionResolver) withCheckout(
	ctx context.Context,
	spec entities.CheckoutSpec,
	resolve resolveFunc,
) (resolved entities.ResolvedRevision, err error) {
	checkout, err := it.checkouts.Acquire(ctx, spec)
	if err != nil {
		return entities.ResolvedRevision{}, err
	}
	defer func() {
		if releaseErr := checkout.Release(); releaseErr != nil {
			if err == nil {
				err = releaseErr
				return
			}
			logger.Warnf("Failed to release upstream checkout: %v", releaseErr)
		}
	}()

	return resolve(ctx, checkout.Git(), spec)
}

func resolveLatest(
	ctx context.Context,
	git repositories.GitRepository,
	spec entities.CheckoutSpec,
) (entities.ResolvedRevision, error) {
	ref := spec.TrackingRef()
	message, err := git.CommitMessage(ctx, ref)
	if err != nil {
		return entities.ResolvedRevision{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	revision, err := entities.ExtractRevision(message)
	if err != nil {
		return entities.ResolvedRevision{}, fmt.Errorf("revision number missing from %s: %w", ref, err)
	}
	hash, err := git.RefHash(ctx, ref)
	if err != nil {
		return entities.ResolvedRevision{}, err
	}
	return entities.ResolvedRevision{Revision: revision, Hash: hash}, nil
}

func resolveFromRevision(
	ctx context.Context,
	git repositories.GitRepository,
	spec entities.CheckoutSpec,
	format string,
	revision int,
) (entities.ResolvedRevision, error) {
	commits, err := git.RecentCommits(ctx, spec.TrackingRef(), spec.Depth)
	if err != nil {
		return entities.ResolvedRevision{}, fmt.Errorf("failed to read upstream history: %w", err)
	}

	marker := entities.RevisionMarker(format, revision)
	for _, commit := range commits {
		if !strings.Contains(commit.Message, marker) {
			continue
		}
		if !entities.EmbedsRevision(commit.Message, revision) {
			logger.Debugf("Skipping %s: it mentions %q without embedding revision %d", commit.Hash, marker, revision)
			continue
		}
		return entities.ResolvedRevision{Revision: revision, Hash: commit.Hash}, nil
	}

	return entities.ResolvedRevision{}, fmt.Errorf(
		"%w: revision %d not in the last %d commits of %s",
		entities.ErrRevisionNotFound, revision, len(commits), spec.TrackingRef(),
	)
}

func resolveFromPartial(
	ctx context.Context,
	git repositories.GitRepository,
	partial string,
) (entities.ResolvedRevision, error) {
	hash, err := git.ResolveCommit(ctx, partial)
	if err != nil {
		return entities.ResolvedRevision{}, err
	}
	message, err := git.CommitMessage(ctx, hash)
	if err != nil {
		return entities.ResolvedRevision{}, fmt.Errorf("failed to read %s: %w", hash, err)
	}
	revision, err := entities.ExtractRevision(message)
	if err != nil {
		return entities.ResolvedRevision{}, fmt.Errorf("commit %s: %w", hash, err)
	}
	return entities.ResolvedRevision{Revision: revision, Hash: hash}, nil
}
