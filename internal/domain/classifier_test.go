package domain_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glide.dev/pkg/glide/internal/adapter"
	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

func TestClassifier_Classify(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	classifier := domain.NewClassifier(adapter.NewLocalSourceFSAdapter(), m.Config{})

	tests := []struct {
		name  string
		path  m.Path
		kind  m.FileKind
		label string
	}{
		{
			name: "delimited text",
			path: writeFile(t, filepath.Join(dir, "a.csv"), contactRows(5, ",")),
			kind: m.KindCSV,
		},
		{
			name: "sql dump",
			path: writeFile(t, filepath.Join(dir, "dump.sql"), "-- MySQL dump 10.13\n\nCREATE TABLE `users` (id int);\n"),
			kind: m.KindSQL,
		},
		{
			name: "sql markers ignore case",
			path: writeFile(t, filepath.Join(dir, "dump.txt"), "insert into users values (1);\n"),
			kind: m.KindSQL,
		},
		{
			name: "json object",
			path: writeFile(t, filepath.Join(dir, "a.json"), `{"email": "a@example.com"}`),
			kind: m.KindJSON,
		},
		{
			name:  "empty file",
			path:  writeFile(t, filepath.Join(dir, "empty"), ""),
			kind:  m.KindOther,
			label: domain.MIMEEmpty,
		},
		{
			name:  "zip archive",
			path:  writeZip(t, filepath.Join(dir, "a.zip"), map[string]string{"a.csv": "x,y\n"}),
			kind:  m.KindArchive,
			label: "application/zip",
		},
		{
			name: "workbook",
			path: writeWorkbook(t, filepath.Join(dir, "book.xlsx"), []string{"Sheet1"}, map[string][][]any{
				"Sheet1": contactSheet(1),
			}),
			kind: m.KindSpreadsheet,
		},
		{
			name: "pdf",
			path: writeFile(t, filepath.Join(dir, "doc.pdf"), "%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"),
			kind: m.KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, kind, err := classifier.Classify(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, kind, "label %s", label)

			if tt.label != "" {
				assert.Equal(t, tt.label, label)
			}
		})
	}
}

func TestClassifier_ClassifyUnreadable(t *testing.T) {
	classifier := domain.NewClassifier(adapter.NewLocalSourceFSAdapter(), m.Config{})

	_, kind, err := classifier.Classify(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing")))
	require.ErrorIs(t, err, domain.ErrUnreadableFile)
	assert.Equal(t, m.KindUnknown, kind)
}

func TestClassifier_OnlyPrefixMatters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := m.Config{}.Normalized()
	classifier := domain.NewClassifier(adapter.NewLocalSourceFSAdapter(), cfg)

	head := strings.Repeat("name,city\n", cfg.TextPrefix/10+1)
	full := writeFile(t, filepath.Join(dir, "full.csv"), head+"INSERT INTO users VALUES (1);\n")
	truncated := writeFile(t, filepath.Join(dir, "truncated.csv"), head[:cfg.TextPrefix])

	fullLabel, fullKind, err := classifier.Classify(ctx, full)
	require.NoError(t, err)

	truncLabel, truncKind, err := classifier.Classify(ctx, truncated)
	require.NoError(t, err)

	assert.Equal(t, m.KindCSV, fullKind)
	assert.Equal(t, truncKind, fullKind)
	assert.Equal(t, truncLabel, fullLabel)
}

func TestClassifier_KindOfText(t *testing.T) {
	classifier := domain.NewClassifier(adapter.NewLocalSourceFSAdapter(), m.Config{SQLMarkers: []string{"COPY public."}})

	assert.Equal(t, m.KindSQL, classifier.KindOfText([]byte("copy public.users (id) FROM stdin;")))
	assert.Equal(t, m.KindCSV, classifier.KindOfText([]byte("INSERT INTO users VALUES (1);")))
	assert.Equal(t, m.KindJSON, classifier.KindOfText([]byte(`[{"id" : 1}]`)))
	assert.Equal(t, m.KindCSV, classifier.KindOfText([]byte("{}")))
	assert.Equal(t, m.KindCSV, classifier.KindOfText([]byte("caf\xe9;na\xefve\n")))
}

func TestKindOfSignature(t *testing.T) {
	assert.Equal(t, m.KindSpreadsheet, domain.KindOfSignature("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil))
	assert.Equal(t, m.KindOther, domain.KindOfSignature("application/vnd.ms-excel", nil))
	assert.Equal(t, m.KindSpreadsheet, domain.KindOfSignature("application/zip", []byte("PK\x03\x04....xl/workbook.xml")))
	assert.Equal(t, m.KindArchive, domain.KindOfSignature("application/zip", []byte("PK\x03\x04....docs/readme")))
	assert.Equal(t, m.KindArchive, domain.KindOfSignature("application/x-7z-compressed", nil))
	assert.Equal(t, m.KindArchive, domain.KindOfSignature("application/gzip", nil))
	assert.Equal(t, m.KindOther, domain.KindOfSignature("image/png", nil))
}

func TestSignature(t *testing.T) {
	label, text := domain.Signature(nil)
	assert.Equal(t, domain.MIMEEmpty, label)
	assert.False(t, text)

	label, text = domain.Signature([]byte("hello, world\n"))
	assert.True(t, text)
	assert.NotContains(t, label, ";")

	png, err := os.ReadFile(string(writeFile(t, filepath.Join(t.TempDir(), "a.png"), "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")))
	require.NoError(t, err)

	label, text = domain.Signature(png)
	assert.Equal(t, "image/png", label)
	assert.False(t, text)
}
