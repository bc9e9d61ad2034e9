package domain

import (
	"context"
	"errors"
	"fmt"

	m "glide.dev/pkg/glide/internal/model"
)

// Per-file and per-stage failure conditions. Policy is decided with
// errors.Is against these values.
var (
	ErrUndetectedDelimiter = errors.New("no supported delimiter detected")
	ErrInsufficientSignal  = errors.New("insufficient signal")
	ErrUnhandleableSignal  = errors.New("signal found in a file that cannot be normalized")
	ErrArchiveKind         = errors.New("archive files cannot be processed")
	ErrSQLChunkParse       = errors.New("sql chunk parse failure")
	ErrSQLRowArity         = errors.New("sql row arity differs from table columns")
	ErrSQLColumnMismatch   = errors.New("sql statement columns differ from table columns")
	ErrFinalize            = errors.New("finalize batch")
	ErrNothingToPublish    = errors.New("no bucket holds an accepted file")
	ErrUnreadableFile      = errors.New("unreadable file")
	ErrSpreadsheet         = errors.New("spreadsheet conversion failure")
)

// HaltError marks a batch-level stop condition raised while routing a file.
// Candidate carries the decision recorded for the offending file.
type HaltError struct {
	Candidate m.Candidate
	Err       error
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("halt on file #%d %s: %v", e.Candidate.Index, e.Candidate.Path, e.Err)
}

func (e *HaltError) Unwrap() error {
	return e.Err
}

func halt(c m.Candidate, decision m.Decision, err error) (m.Candidate, error) {
	c = c.Decide(decision, err.Error())
	return c, &HaltError{Candidate: c, Err: err}
}

// isPassThrough reports errors the router hands back unchanged: unreadable
// files and cancellation.
func isPassThrough(err error) bool {
	return errors.Is(err, ErrUnreadableFile) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func isInsufficientSignal(err error) bool {
	return errors.Is(err, ErrInsufficientSignal)
}
