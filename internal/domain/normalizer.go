package domain

import (
	"context"
	"encoding/csv"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

var sheetNameReplacer = strings.NewReplacer("/", "_", "\\", "_")

// Normalizer flattens spreadsheet workbooks into one comma separated file per
// sheet under <workdir>/xlsx2csv.
type Normalizer struct {
	fs     adapter.SourceFSAdapter
	sheets adapter.SheetReader
	cfg    m.Config
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(fsAdapter adapter.SourceFSAdapter, sheets adapter.SheetReader, cfg m.Config) *Normalizer {
	return &Normalizer{fs: fsAdapter, sheets: sheets, cfg: cfg.Normalized()}
}

// SheetFileName is the derived file name for a sheet.
func SheetFileName(fileIndex, sheetIndex int, sheet string) string {
	return fmt.Sprintf("%d - %d - %s.csv", fileIndex, sheetIndex, sheetNameReplacer.Replace(sheet))
}

// Sheets converts the sheets of c lazily, in declared order. Each derived
// file is written completely before it is yielded; stopping the iteration
// leaves later sheets unconverted. Failures wrap ErrSpreadsheet.
func (n *Normalizer) Sheets(ctx context.Context, root m.Path, c m.Candidate) iter.Seq2[m.Path, error] {
	outDir := filepath.Join(string(root), n.cfg.WorkDir, SheetsDir)

	return func(yield func(m.Path, error) bool) {
		book, err := n.sheets.Open(ctx, c.Path)
		if err != nil {
			yield("", fmt.Errorf("%w: %w", ErrSpreadsheet, err))
			return
		}

		defer func() { _ = book.Close() }()

		for idx, sheet := range book.Sheets() {
			out := m.Path(filepath.Join(outDir, SheetFileName(c.Index, idx, sheet)))

			if err := n.writeSheet(ctx, book, sheet, out); err != nil {
				yield("", fmt.Errorf("%w: sheet %q of %s: %w", ErrSpreadsheet, sheet, c.Path, err))
				return
			}

			slog.Info("Converted sheet to csv", "path", c.Path, "sheet", sheet, "output", out)

			if !yield(out, nil) {
				return
			}
		}
	}
}

func (n *Normalizer) writeSheet(ctx context.Context, book adapter.Workbook, sheet string, out m.Path) error {
	f, err := n.fs.Create(ctx, out)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	width := -1

	err = book.Rows(ctx, sheet, func(row []string) error {
		if width < 0 {
			width = len(row)
		}

		for len(row) < width {
			row = append(row, "")
		}

		return w.Write(row)
	})
	if err == nil {
		w.Flush()
		err = w.Error()
	}

	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	return err
}
