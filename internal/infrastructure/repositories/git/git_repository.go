package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
)

// MinimumVersion is the oldest git that supports `clone --single-branch`.
const MinimumVersion = "v1.7.10"

const (
	recordSeparator = "\x1e"
	fieldSeparator  = "\x00"
)

var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`) //nolint:gochecknoglobals // compiled once

// Provider opens shell-backed git repositories.
type Provider struct {
	runner *process.Runner
}

// NewProvider returns a Provider that runs git through runner.
func NewProvider(runner *process.Runner) *Provider {
	return &Provider{runner: runner}
}

var _ repositories.GitProvider = (*Provider)(nil)

// Open returns a repository rooted at dir.
func (p *Provider) Open(dir string, tool entities.ToolOptions) repositories.GitRepository {
	return &Repository{runner: p.runner, git: gitBinary(tool.Git), dir: dir, verbose: tool.Verbose}
}

// Validate runs `git --version` and rejects missing or too old executables.
func (p *Provider) Validate(ctx context.Context, tool entities.ToolOptions) error {
	git := gitBinary(tool.Git)
	out, err := p.runner.TrimmedOutput(ctx, process.Options{}, git, "--version")
	if err != nil {
		return fmt.Errorf("%w: invalid git executable %q: %w", entities.ErrConfiguration, git, err)
	}

	version := ParseVersion(out)
	if version == "" {
		return fmt.Errorf("%w: cannot parse git version from %q", entities.ErrConfiguration, out)
	}
	if semver.Compare(version, MinimumVersion) < 0 {
		return fmt.Errorf("%w: git %s is older than the required %s", entities.ErrConfiguration, version, MinimumVersion)
	}
	return nil
}

// ParseVersion turns `git version 2.39.2 (Apple Git-143)` into "v2.39.2".
// It returns an empty string when no version number is present.
func ParseVersion(output string) string {
	match := versionPattern.FindStringSubmatch(output)
	if match == nil {
		return ""
	}
	patch := match[3]
	if patch == "" {
		patch = "0"
	}
	version := fmt.Sprintf("v%s.%s.%s", trimZeros(match[1]), trimZeros(match[2]), trimZeros(patch))
	if !semver.IsValid(version) {
		return ""
	}
	return version
}

// Repository runs git commands in a single working copy.
type Repository struct {
	runner  *process.Runner
	git     string
	dir     string
	verbose bool
}

var _ repositories.GitRepository = (*Repository)(nil)

func (g *Repository) Dir() string { return g.dir }

func (g *Repository) Fetch(ctx context.Context, remote string) error {
	return g.run(ctx, "fetch", "-q", remote)
}

func (g *Repository) RefHash(ctx context.Context, ref string) (string, error) {
	// show-ref matches by suffix and may list several refs
	lines, err := g.runner.Lines(ctx, g.options(false), g.git, "show-ref", "--hash", ref)
	if err != nil {
		if isExitFailure(err) {
			return "", fmt.Errorf("%w: ref %s does not exist", entities.ErrRevisionNotFound, ref)
		}
		return "", err
	}
	var hash string
	if len(lines) > 0 {
		hash = strings.TrimSpace(lines[0])
	}
	if hash == "" {
		return "", fmt.Errorf("%w: git hash of %s can not be found", entities.ErrRevisionNotFound, ref)
	}
	return hash, nil
}

func (g *Repository) CommitMessage(ctx context.Context, commit string) (string, error) {
	return g.output(ctx, "log", "-n", "1", "--format=format:%B", commit)
}

func (g *Repository) RecentCommits(ctx context.Context, ref string, limit int) ([]entities.Commit, error) {
	out, err := g.output(ctx, "log", "-n", strconv.Itoa(limit), "--format=format:%H%x00%B%x1e", ref)
	if err != nil {
		return nil, err
	}
	return parseCommitLog(out), nil
}

func (g *Repository) ResolveCommit(ctx context.Context, partial string) (string, error) {
	out, err := g.output(ctx, "rev-parse", "--verify", "--quiet", partial+"^{commit}")
	if err != nil {
		if isExitFailure(err) {
			return "", fmt.Errorf("%w: partial git hash %q can not be found", entities.ErrRevisionNotFound, partial)
		}
		return "", err
	}
	hash := strings.TrimSpace(out)
	if hash == "" {
		return "", fmt.Errorf("%w: partial git hash %q can not be found", entities.ErrRevisionNotFound, partial)
	}
	return hash, nil
}

func (g *Repository) ShowFile(ctx context.Context, ref, path string) (string, error) {
	return g.output(ctx, "show", ref+":"+path)
}

// HasUncommittedChanges compares the working tree and index against HEAD.
// Untracked files are ignored, matching what `git stash save` would take.
func (g *Repository) HasUncommittedChanges(ctx context.Context) (bool, error) {
	code, err := g.runner.Call(ctx, g.options(true), g.git, "diff", "--quiet", "HEAD")
	if err != nil {
		return false, err
	}
	switch code {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, &entities.ProcessError{
			Args:     []string{g.git, "diff", "--quiet", "HEAD"},
			Dir:      g.dir,
			ExitCode: code,
			Err:      fmt.Errorf("exit status %d", code),
		}
	}
}

func (g *Repository) StashSave(ctx context.Context) error {
	return g.run(ctx, "stash", "save")
}

func (g *Repository) StashPop(ctx context.Context) error {
	return g.run(ctx, "stash", "pop")
}

func (g *Repository) CurrentRef(ctx context.Context) (string, error) {
	branch, err := g.runner.TrimmedOutput(ctx, g.options(false), g.git, "symbolic-ref", "-q", "--short", "HEAD")
	if err == nil && branch != "" {
		return branch, nil
	}
	if err != nil && !isExitFailure(err) {
		return "", err
	}
	// detached HEAD
	return g.runner.TrimmedOutput(ctx, g.options(false), g.git, "rev-parse", "HEAD")
}

func (g *Repository) BranchExists(ctx context.Context, branch string) (bool, error) {
	code, err := g.runner.Call(ctx, g.options(true), g.git, "show-ref", "--quiet", "--verify", "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	return code == 0, nil
}

func (g *Repository) Checkout(ctx context.Context, ref string) error {
	return g.run(ctx, "checkout", "-q", ref)
}

func (g *Repository) CreateBranch(ctx context.Context, branch, from string) error {
	return g.run(ctx, "checkout", "-q", "-b", branch, from)
}

func (g *Repository) DeleteBranch(ctx context.Context, branch string) error {
	return g.run(ctx, "branch", "-q", "-D", branch)
}

func (g *Repository) DiscardChanges(ctx context.Context) error {
	return g.run(ctx, "reset", "-q", "--hard")
}

func (g *Repository) Add(ctx context.Context, path string) error {
	return g.run(ctx, "add", "--", path)
}

func (g *Repository) Commit(ctx context.Context, message string) error {
	return g.run(ctx, "commit", "-q", "-m", message)
}

// options echoes in verbose mode and silences stdout of state-changing
// commands otherwise.
func (g *Repository) options(quiet bool) process.Options {
	return process.Options{Dir: g.dir, Echo: g.verbose, Quiet: quiet && !g.verbose}
}

func (g *Repository) run(ctx context.Context, args ...string) error {
	return g.runner.Run(ctx, g.options(true), append([]string{g.git}, args...)...)
}

func (g *Repository) output(ctx context.Context, args ...string) (string, error) {
	return g.runner.Output(ctx, g.options(false), append([]string{g.git}, args...)...)
}

func parseCommitLog(out string) []entities.Commit {
	commits := []entities.Commit{}
	for _, record := range strings.Split(out, recordSeparator) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		hash, message, _ := strings.Cut(record, fieldSeparator)
		commits = append(commits, entities.Commit{Hash: strings.TrimSpace(hash), Message: message})
	}
	return commits
}

// isExitFailure reports whether err is a tool that ran and exited non-zero,
// as opposed to one that could not be started.
func isExitFailure(err error) bool {
	var procErr *entities.ProcessError
	return errors.As(err, &procErr) && procErr.ExitCode > 0
}

func gitBinary(git string) string {
	if git == "" {
		return "git"
	}
	return git
}

func trimZeros(s string) string {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
