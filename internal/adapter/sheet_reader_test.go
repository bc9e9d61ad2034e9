package adapter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	m "glide.dev/pkg/glide/internal/model"
)

func TestExcelSheetReader_Open(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"id", "email"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{1, "a@x.com"}))
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Second", "A1", &[]any{"email"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	reader := NewExcelSheetReader()
	ctx := context.Background()

	book, err := reader.Open(ctx, m.Path(path))
	require.NoError(t, err)

	defer func() { _ = book.Close() }()

	assert.Equal(t, []string{"Sheet1", "Second"}, book.Sheets())

	var rows [][]string
	require.NoError(t, book.Rows(ctx, "Sheet1", func(row []string) error {
		rows = append(rows, row)
		return nil
	}))
	assert.Equal(t, [][]string{{"id", "email"}, {"1", "a@x.com"}}, rows)

	err = book.Rows(ctx, "Missing", func([]string) error { return nil })
	require.Error(t, err)
}

func TestExcelSheetReader_OpenNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeTestFile(t, path, "plain text")

	_, err := NewExcelSheetReader().Open(context.Background(), m.Path(path))
	require.Error(t, err)
}
