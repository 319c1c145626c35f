package checkpoint

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRepo means no checkpoint state exists where one was expected.
	ErrNoRepo = errors.New("no checkpoint repository")

	// ErrLocked means another process holds the conversation lock.
	ErrLocked = errors.New("checkpoint state is locked by another process")

	ErrTransactionActive = errors.New("a transaction is already active")
	ErrNoTransaction     = errors.New("no active transaction")
	ErrEditActive        = errors.New("an edit snapshot is already active")
	ErrNoEdit            = errors.New("no active edit snapshot")
)

// PathError records one file that could not be processed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *PathError) Unwrap() error { return e.Err }

// ReadError aggregates every per-file failure of one checkpoint
// attempt. The attempt persisted nothing and moved no reference; the
// caller gets the complete failure list in one error, with the listing
// capped for readability.
type ReadError struct {
	Failures []*PathError
	Preview  int // max failures listed; 0 means default
}

func (e *ReadError) Error() string {
	cap := e.Preview
	if cap <= 0 {
		cap = 10
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "checkpoint aborted: %d files could not be read: ", len(e.Failures))
	n := len(e.Failures)
	if n > cap {
		n = cap
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Failures[i].Error())
	}
	if rest := len(e.Failures) - n; rest > 0 {
		fmt.Fprintf(&sb, " (+%d more)", rest)
	}
	return sb.String()
}

// RestoreError reports a restore that aborted partway: which path
// failed and which paths had already been written. Already-restored
// paths are intact; nothing after the failure was touched.
type RestoreError struct {
	Path     string
	Err      error
	Restored []string
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore aborted at %q after %d files: %v",
		e.Path, len(e.Restored), e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }
