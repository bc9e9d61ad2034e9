package domain_test

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"glide.dev/pkg/glide/internal/adapter"
	adaptermocks "glide.dev/pkg/glide/internal/adapter/mocks"
	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

func writeFile(t *testing.T, path, content string) m.Path {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Path(path)
}

// contactRows renders a header and n rows, one contact per row, joined by sep.
func contactRows(n int, sep string) string {
	var b strings.Builder

	b.WriteString(strings.Join([]string{"id", "email", "name"}, sep) + "\n")

	for i := range n {
		b.WriteString(strings.Join([]string{
			fmt.Sprint(i),
			fmt.Sprintf("user%d@example.com", i),
			fmt.Sprintf("name%d", i),
		}, sep) + "\n")
	}

	return b.String()
}

// writeWorkbook saves an xlsx with one sheet per entry of sheets, in order.
func writeWorkbook(t *testing.T, path string, names []string, sheets map[string][][]any) m.Path {
	t.Helper()

	f := excelize.NewFile()

	for i, name := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	return m.Path(path)
}

func contactSheet(n int) [][]any {
	rows := [][]any{{"id", "email"}}
	for i := range n {
		rows = append(rows, []any{i, fmt.Sprintf("sheet%d@example.com", i)})
	}

	return rows
}

func writeZip(t *testing.T, path string, files map[string]string) m.Path {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)

	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)

		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	return m.Path(path)
}

// routerFixture wires a Router over real filesystem adapters for root.
type routerFixture struct {
	root      m.Path
	buckets   *domain.Buckets
	router    *domain.Router
	extractor *adaptermocks.MockTextExtractor
}

func newRouterFixture(t *testing.T, cfg m.Config) routerFixture {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	cfg = cfg.Normalized()
	fsAdapter := adapter.NewLocalSourceFSAdapter()
	extractor := adaptermocks.NewMockTextExtractor(t)

	buckets := domain.NewBuckets(fsAdapter, cfg, m.Path(root))
	router := domain.NewRouter(cfg, m.Path(root),
		domain.NewScanner(fsAdapter, extractor, cfg),
		domain.NewSniffer(fsAdapter, cfg),
		domain.NewNormalizer(fsAdapter, adapter.NewExcelSheetReader(), cfg),
		buckets,
	)

	return routerFixture{root: m.Path(root), buckets: buckets, router: router, extractor: extractor}
}

func (f routerFixture) path(elem ...string) string {
	return filepath.Join(append([]string{string(f.root)}, elem...)...)
}

func (f routerFixture) bucketDir(cfg m.Config, name string) string {
	return f.path(cfg.Normalized().WorkDir, domain.UploadDir, name)
}
