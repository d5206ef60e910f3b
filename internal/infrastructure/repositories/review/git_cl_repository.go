package review

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
	"github.com/rios0rios0/rolldeps/internal/domain/repositories"
	"github.com/rios0rios0/rolldeps/internal/infrastructure/repositories/process"
)

const instructionIndent = "    "

// Provider opens `git cl` backed review repositories.
type Provider struct {
	runner *process.Runner
}

// NewProvider returns a Provider that runs `git cl` through runner.
func NewProvider(runner *process.Runner) *Provider {
	return &Provider{runner: runner}
}

var _ repositories.ReviewProvider = (*Provider)(nil)

// Open returns a review repository for the branch checked out in dir.
func (p *Provider) Open(dir string, opts entities.ReviewOptions) repositories.ReviewRepository {
	git := opts.Tool.Git
	if git == "" {
		git = "git"
	}
	return &GitClRepository{runner: p.runner, git: git, dir: dir, cc: opts.CC, verbose: opts.Tool.Verbose}
}

// GitClRepository uploads reviews with `git cl upload` and triggers try-jobs
// with `git cl try`.
type GitClRepository struct {
	runner  *process.Runner
	git     string
	dir     string
	cc      string
	verbose bool
}

var _ repositories.ReviewRepository = (*GitClRepository)(nil)

func (r *GitClRepository) Upload(ctx context.Context) error {
	return r.runner.Run(ctx, r.options(), r.uploadArgs()...)
}

func (r *GitClRepository) Issue(ctx context.Context) (string, error) {
	opts := r.options()
	opts.Quiet = false
	return r.runner.TrimmedOutput(ctx, opts, r.git, "cl", "issue")
}

func (r *GitClRepository) Try(ctx context.Context, revision int, bots []string) error {
	return r.runner.Run(ctx, r.options(), r.tryArgs(revision, bots)...)
}

// PrintInstructions mirrors what Upload and Try would run.
func (r *GitClRepository) PrintInstructions(out io.Writer, branch string, revision int, bots []string) {
	fmt.Fprintln(out, "You should call:")
	fmt.Fprintf(out, "%scd %s\n", instructionIndent, r.dir)
	fmt.Fprintf(out, "%s%s\n", instructionIndent, process.FormatArgs([]string{r.git, "checkout", branch}))
	fmt.Fprintf(out, "%s%s\n", instructionIndent, process.FormatArgs(r.uploadArgs()))
	if len(bots) > 0 {
		fmt.Fprintf(out, "%s%s\n", instructionIndent, process.FormatArgs(r.tryArgs(revision, bots)))
	}
	fmt.Fprintln(out)
}

func (r *GitClRepository) uploadArgs() []string {
	args := []string{r.git, "cl", "upload", "-f"}
	if r.cc != "" {
		args = append(args, "--cc="+r.cc)
	}
	return append(args, "--bypass-hooks", "--bypass-watchlists")
}

func (r *GitClRepository) tryArgs(revision int, bots []string) []string {
	args := []string{r.git, "cl", "try"}
	if revision >= 0 {
		args = append(args, "--revision", strconv.Itoa(revision))
	}
	for _, bot := range bots {
		args = append(args, "-b", bot)
	}
	return args
}

func (r *GitClRepository) options() process.Options {
	return process.Options{Dir: r.dir, Echo: r.verbose, Quiet: !r.verbose}
}
