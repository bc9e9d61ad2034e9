package adapter

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	m "glide.dev/pkg/glide/internal/model"
)

// SheetReader opens spreadsheet workbooks.
type SheetReader interface {
	Open(ctx context.Context, path m.Path) (Workbook, error)
}

// Workbook is an opened spreadsheet.
type Workbook interface {
	// Sheets lists sheet names in declared order.
	Sheets() []string
	// Rows streams the rows of sheet to fn, stopping at the first error.
	Rows(ctx context.Context, sheet string, fn func(row []string) error) error
	Close() error
}

// ExcelSheetReader reads OOXML workbooks with excelize.
type ExcelSheetReader struct{}

// NewExcelSheetReader constructs an ExcelSheetReader.
func NewExcelSheetReader() *ExcelSheetReader {
	return &ExcelSheetReader{}
}

// Open implements SheetReader.
func (r *ExcelSheetReader) Open(ctx context.Context, path m.Path) (Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	return &excelWorkbook{file: f}, nil
}

type excelWorkbook struct {
	file *excelize.File
}

func (w *excelWorkbook) Sheets() []string {
	return w.file.GetSheetList()
}

func (w *excelWorkbook) Rows(ctx context.Context, sheet string, fn func(row []string) error) error {
	rows, err := w.file.Rows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cols, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read row in sheet %q: %w", sheet, err)
		}

		if err := fn(cols); err != nil {
			return err
		}
	}

	return rows.Error()
}

func (w *excelWorkbook) Close() error {
	return w.file.Close()
}
