package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
)

const controlMarker = "\nCONTROL\n"

// Roll is the interface for the roll command.
type Roll interface {
	Execute(ctx context.Context, settings *entities.Settings, req entities.RevisionRequest) (*entities.RollResult, error)
}

// RollCommand orchestrates a full roll:
// resolve the target -> upload a control change -> upload the manifest roll.
type RollCommand struct {
	resolver  *RevisionResolver
	gits      repositories.GitProvider
	reviews   repositories.ReviewProvider
	manifests repositories.ManifestRepository
	out       io.Writer
}

// NewRollCommand creates a new RollCommand.
func NewRollCommand(
	resolver *RevisionResolver,
	gits repositories.GitProvider,
	reviews repositories.ReviewProvider,
	manifests repositories.ManifestRepository,
	out io.Writer,
) *RollCommand {
	return &RollCommand{
		resolver:  resolver,
		gits:      gits,
		reviews:   reviews,
		manifests: manifests,
		out:       out,
	}
}

// Execute resolves req against the upstream and, when the downstream manifest
// is behind, produces the control and roll review changes.
func (it *RollCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	req entities.RevisionRequest,
) (*entities.RollResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := it.gits.Validate(ctx, settings.Tool()); err != nil {
		return nil, err
	}

	target, err := it.resolver.Resolve(ctx, settings, req)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(it.out, "revision=%d\nhash=%s\n\n", target.Revision, target.Hash)

	result, err := it.roll(ctx, settings, target)
	if err != nil {
		return nil, err
	}
	if !result.UpToDate {
		it.printSummary(result)
	}
	return result, nil
}

func (it *RollCommand) roll(
	ctx context.Context,
	settings *entities.Settings,
	target entities.ResolvedRevision,
) (*entities.RollResult, error) {
	downstream := it.gits.Open(settings.DownstreamPath, settings.Tool())
	review := it.reviews.Open(downstream.Dir(), settings.Review())

	logger.Infof("Fetching %s in %s", settings.DownstreamRemote, downstream.Dir())
	if err := downstream.Fetch(ctx, settings.DownstreamRemote); err != nil {
		return nil, fmt.Errorf("failed to fetch downstream: %w", err)
	}

	baseRef := settings.DownstreamRemote + "/" + settings.DownstreamBranch
	content, err := downstream.ShowFile(ctx, baseRef, settings.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", settings.ManifestPath, baseRef, err)
	}
	oldRevision, err := settings.ManifestFields().CurrentRevision(content)
	if err != nil {
		return nil, err
	}

	result := &entities.RollResult{Target: target, OldRevision: oldRevision}
	if oldRevision == target.Revision {
		fmt.Fprintln(it.out, "DEPS is up to date!")
		result.UpToDate = true
		return result, nil
	}

	base, err := it.downstreamBase(ctx, downstream, "refs/remotes/"+baseRef)
	if err != nil {
		return nil, err
	}

	control, err := it.uploadControl(ctx, settings, downstream, review, base)
	if err != nil {
		return nil, fmt.Errorf("control change failed: %w", err)
	}
	result.ControlIssue = control.Issue
	if control.Kept {
		result.ControlBranch = control.BranchName
	}

	deps, err := it.uploadRoll(ctx, settings, downstream, review, base, oldRevision, target, entities.ReviewURL(control.Issue))
	if err != nil {
		return nil, fmt.Errorf("DEPS roll failed: %w", err)
	}
	result.DepsIssue = deps.Issue
	if deps.Kept {
		result.DepsBranch = deps.BranchName
	}
	return result, nil
}

func (it *RollCommand) downstreamBase(
	ctx context.Context,
	downstream repositories.GitRepository,
	ref string,
) (entities.DownstreamBase, error) {
	hash, err := downstream.RefHash(ctx, ref)
	if err != nil {
		return entities.DownstreamBase{}, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	base := entities.DownstreamBase{Hash: hash, Revision: -1}

	message, err := downstream.CommitMessage(ctx, ref)
	if err != nil {
		return entities.DownstreamBase{}, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	revision, err := entities.ExtractRevision(message)
	switch {
	case err == nil:
		base.Revision = revision
	case errors.Is(err, entities.ErrRevisionNotFound):
		logger.Warnf("Downstream tip %s embeds no revision number", entities.ShortHash(hash))
	default:
		return entities.DownstreamBase{}, err
	}
	return base, nil
}

func (it *RollCommand) uploadControl(
	ctx context.Context,
	settings *entities.Settings,
	downstream repositories.GitRepository,
	review repositories.ReviewRepository,
	base entities.DownstreamBase,
) (*entities.TransactionResult, error) {
	opts := it.transactionOptions(settings, entities.ControlMessage(base))
	if settings.SaveBranches {
		opts.BranchName = entities.ControlBranchName(base)
	}

	return RunBranchTransaction(ctx, downstream, review, it.out, opts, func(_ context.Context, tx *BranchTransaction) error {
		if err := appendToFile(tx.Path(settings.ControlFile), controlMarker); err != nil {
			return err
		}
		tx.Stage(settings.ControlFile)
		return nil
	})
}

func (it *RollCommand) uploadRoll(
	ctx context.Context,
	settings *entities.Settings,
	downstream repositories.GitRepository,
	review repositories.ReviewRepository,
	base entities.DownstreamBase,
	oldRevision int,
	target entities.ResolvedRevision,
	controlURL string,
) (*entities.TransactionResult, error) {
	opts := it.transactionOptions(settings, entities.RollMessage(base, oldRevision, target, controlURL))
	if settings.SaveBranches {
		opts.BranchName = entities.RollBranchName(base, target)
	}

	return RunBranchTransaction(ctx, downstream, review, it.out, opts, func(_ context.Context, tx *BranchTransaction) error {
		if err := it.manifests.Patch(tx.Path(settings.ManifestPath), settings.ManifestFields(), target.Revision, target.Hash); err != nil {
			return err
		}
		tx.Stage(settings.ManifestPath)
		return nil
	})
}

func (it *RollCommand) transactionOptions(settings *entities.Settings, message string) entities.TransactionOptions {
	return entities.TransactionOptions{
		DefaultBranchName: settings.DefaultBranchName,
		MainBranch:        settings.DownstreamBranch,
		Remote:            settings.DownstreamRemote,
		Message:           message,
		SkipUpload:        settings.SkipUpload,
		Bots:              settings.Bots,
	}
}

func (it *RollCommand) printSummary(result *entities.RollResult) {
	fmt.Fprintln(it.out, "DEPS roll:")
	printChange(it.out, result.DepsIssue, result.DepsBranch)
	fmt.Fprintln(it.out, "Whitespace change:")
	printChange(it.out, result.ControlIssue, result.ControlBranch)
}

func printChange(out io.Writer, issue, branch string) {
	if issue != "" {
		fmt.Fprintf(out, "    %s\n", issue)
	}
	if branch != "" {
		fmt.Fprintf(out, "    branch: %s\n", branch)
	}
	fmt.Fprintln(out)
}

func appendToFile(path, text string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644) //nolint:gosec,mnd // tracked source file
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err = file.WriteString(text); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return file.Close()
}
