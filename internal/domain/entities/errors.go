package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration is returned for bad or contradictory settings. It is
	// always reported before the downstream repository is touched.
	ErrConfiguration = errors.New("configuration error")

	// ErrAmbiguousInput is returned when both a revision number and a partial
	// hash were supplied.
	ErrAmbiguousInput = fmt.Errorf("%w: pass a revision or a partial hash, not both", ErrConfiguration)

	// ErrRevisionNotFound is returned when resolution exhausted its search
	// window or no known message format matched.
	ErrRevisionNotFound = errors.New("revision not found")

	// ErrProcessFailure matches every *ProcessError.
	ErrProcessFailure = errors.New("process failure")

	// ErrTransactionRestore matches every *RestoreError. The downstream working
	// tree may be left on the wrong branch or with an unpopped stash.
	ErrTransactionRestore = errors.New("failed to restore working tree")

	// ErrReviewCapture is returned when the upload command succeeded but the
	// review identifier could not be read back, so a review may exist
	// without being reported.
	ErrReviewCapture = errors.New("review uploaded but identifier could not be captured")

	// ErrNothingStaged is returned when a transaction body staged no paths.
	ErrNothingStaged = errors.New("no paths staged for commit")
)

// ProcessError wraps failures when invoking an external tool.
type ProcessError struct {
	Args     []string
	Dir      string
	ExitCode int
	Output   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Dir != "" {
		msg = fmt.Sprintf("%s (in %s)", msg, e.Dir)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrProcessFailure so callers do not need errors.As for the
// common case.
func (e *ProcessError) Is(target error) bool {
	return target == ErrProcessFailure
}

// RestoreError is returned when the always-run restoration step of a branch
// transaction fails. Cause holds the earlier error from the transaction body,
// if any, and stays reachable through errors.Is and errors.As.
type RestoreError struct {
	Cause error
	Err   error
}

func (e *RestoreError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%v: %v", ErrTransactionRestore, e.Err)
	}
	return fmt.Sprintf("%v; additionally %v: %v", e.Cause, ErrTransactionRestore, e.Err)
}

func (e *RestoreError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Cause, e.Err}
}

func (e *RestoreError) Is(target error) bool {
	return target == ErrTransactionRestore
}
