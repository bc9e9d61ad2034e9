// Package controller provides output adapters that report curation progress.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

// Stage names a step of a curation run.
type Stage string

// Stages reported through DisplayStage, in run order.
const (
	StageCleanup  Stage = "cleanup"
	StageSQL      Stage = "sql"
	StageRoute    Stage = "route"
	StageFinalize Stage = "finalize"
	StageMove     Stage = "move"
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	root      m.Path
	runID     string
	interrupt func()
}

// WithBatch labels the UI with the batch being curated.
func WithBatch(root m.Path, runID string) StartOption {
	return func(c *StartConfig) {
		c.root = root
		c.runID = runID
	}
}

// WithInterrupt registers fn to be called when the user aborts from the UI.
func WithInterrupt(fn func()) StartOption {
	return func(c *StartConfig) {
		c.interrupt = fn
	}
}

func newStartConfig(options []StartOption) StartConfig {
	var cfg StartConfig
	for _, option := range options {
		option(&cfg)
	}

	return cfg
}

// UI defines the interface for reporting a curation run.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayStage(ctx context.Context, stage Stage)
	DisplayCandidate(ctx context.Context, c m.Candidate)
	DisplayBatch(ctx context.Context, batch m.Batch, journal pkg.FileSpill[m.Candidate]) error
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
