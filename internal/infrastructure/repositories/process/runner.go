package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rolldeps/internal/domain/entities"
)

// EchoPrefix precedes every echoed command line.
const EchoPrefix = "~~$ "

// Options control a single tool invocation.
type Options struct {
	// Dir is the working directory of the child. Empty means the current one.
	Dir string
	// Echo prints the command line (and the directory change) before running.
	Echo bool
	// Quiet discards the child's stdout. stderr is always inherited.
	Quiet bool
}

// Runner executes external tools and waits for them to exit.
type Runner struct {
	// Stdout receives echoed command lines and the inherited stdout of
	// non-quiet, non-capturing calls.
	Stdout io.Writer
	// Stderr receives the child's stderr.
	Stderr io.Writer
}

// NewRunner returns a Runner bound to the process's own stdout and stderr.
func NewRunner() *Runner {
	return &Runner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes argv and fails with a *entities.ProcessError on a non-zero
// exit status.
func (r *Runner) Run(ctx context.Context, opts Options, argv ...string) error {
	_, err := r.run(ctx, opts, r.childStdout(opts), argv)
	return err
}

// Call executes argv and returns its exit status. The error is only set when
// the tool could not be started or the context was cancelled.
func (r *Runner) Call(ctx context.Context, opts Options, argv ...string) (int, error) {
	code, err := r.run(ctx, opts, r.childStdout(opts), argv)
	var procErr *entities.ProcessError
	if errors.As(err, &procErr) && procErr.ExitCode > 0 {
		return procErr.ExitCode, nil
	}
	return code, err
}

// Output executes argv and returns its stdout. The child's stdout is never
// inherited.
func (r *Runner) Output(ctx context.Context, opts Options, argv ...string) (string, error) {
	var stdout bytes.Buffer
	if _, err := r.run(ctx, opts, &stdout, argv); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// TrimmedOutput is Output without surrounding whitespace.
func (r *Runner) TrimmedOutput(ctx context.Context, opts Options, argv ...string) (string, error) {
	out, err := r.Output(ctx, opts, argv...)
	return strings.TrimSpace(out), err
}

// Lines executes argv and returns its stdout split into lines, for pattern
// searches that must not cross line boundaries.
func (r *Runner) Lines(ctx context.Context, opts Options, argv ...string) ([]string, error) {
	out, err := r.Output(ctx, opts, argv...)
	if err != nil {
		return nil, err
	}
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}

func (r *Runner) childStdout(opts Options) io.Writer {
	if opts.Quiet {
		return io.Discard
	}
	return r.stdout()
}

func (r *Runner) run(ctx context.Context, opts Options, stdout io.Writer, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("empty command")
	}

	if opts.Echo {
		r.echo(opts.Dir, argv)
		if opts.Dir != "" {
			defer fmt.Fprintf(r.stdout(), "%scd -\n", EchoPrefix)
		}
	}
	logger.Debugf("Running %s (dir=%q)", FormatArgs(argv), opts.Dir)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }

	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(r.stderr(), &stderr)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%s: %w", FormatArgs(argv), ctxErr)
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return code, &entities.ProcessError{
		Args:     argv,
		Dir:      opts.Dir,
		ExitCode: code,
		Output:   stderr.String(),
		Err:      err,
	}
}

func (r *Runner) echo(dir string, argv []string) {
	out := r.stdout()
	if dir != "" {
		fmt.Fprintf(out, "%scd %s\n", EchoPrefix, dir)
	}
	fmt.Fprintf(out, "%s%s\n", EchoPrefix, FormatArgs(argv))
}

func (r *Runner) stdout() io.Writer {
	if r.Stdout == nil {
		return os.Stdout
	}
	return r.Stdout
}

func (r *Runner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}

// FormatArgs renders argv the way a shell user would type it: arguments
// containing whitespace are double quoted and newlines are escaped.
func FormatArgs(argv []string) string {
	parts := make([]string, 0, len(argv))
	for _, arg := range argv {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if !strings.ContainsAny(arg, " \n") {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, "\n", `\n`) + `"`
}
