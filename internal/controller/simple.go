package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd     *cobra.Command
	verbose bool
}

// NewSimpleUI creates a new SimpleUI. A verbose UI prints one line per
// routed file.
func NewSimpleUI(cmd *cobra.Command, verbose bool) *SimpleUI {
	return &SimpleUI{cmd: cmd, verbose: verbose}
}

// Start prints the batch being curated.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	if cfg.root != "" {
		s.printf("Curating %s (run %s)\n", cfg.root, cfg.runID)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayStage prints the stage header.
func (s *SimpleUI) DisplayStage(ctx context.Context, stage Stage) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("==> %s\n", stage)
}

// DisplayCandidate prints a routed file when verbose.
func (s *SimpleUI) DisplayCandidate(ctx context.Context, c m.Candidate) {
	if err := ctx.Err(); err != nil {
		return
	}

	if !s.verbose {
		return
	}

	s.printf("%s\n", candidateLine(c))
}

// DisplayBatch prints the batch outcome with bucket and decision tables.
func (s *SimpleUI) DisplayBatch(ctx context.Context, batch m.Batch, journal pkg.FileSpill[m.Candidate]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tally, err := tallyJournal(journal)
	if err != nil {
		return err
	}

	s.printf("\n%s\n", batchHeadline(batch))

	if batch.Reason != "" {
		s.printf("Reason: %s\n", batch.Reason)
	}

	if len(batch.Buckets) > 0 {
		s.printf("\n%s", renderBucketTable(batch.Buckets))
	}

	s.printf("\n%s", renderDecisionTable(tally))

	if batch.Archive != "" {
		s.printf("Archive: %s\n", batch.Archive)
	}

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func candidateLine(c m.Candidate) string {
	line := fmt.Sprintf("#%d %s [%s] %s", c.Index, c.Path, c.Kind, c.Decision)

	if !c.Delimiter.IsZero() {
		line += " bucket=" + c.Delimiter.Name
	}

	if c.Reason != "" {
		line += ": " + c.Reason
	}

	return line
}
