package domain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
)

func TestRouter_RouteCSV(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts csv with enough contacts", func(t *testing.T) {
		cfg := m.Config{}
		fx := newRouterFixture(t, cfg)
		path := writeFile(t, fx.path("leak", "a.csv"), contactRows(150, ","))

		c, err := fx.router.Route(ctx, m.Candidate{Index: 4, Path: path, Kind: m.KindCSV})
		require.NoError(t, err)

		assert.Equal(t, m.Accepted, c.Decision)
		assert.Equal(t, "csv", c.Delimiter.Name)
		assert.GreaterOrEqual(t, c.Signal, 100)
		require.Len(t, c.Links, 1)

		link := filepath.Join(fx.bucketDir(cfg, "csv"), "4 - a.csv")
		assert.Equal(t, m.Path(link), c.Links[0])

		target, err := os.Readlink(link)
		require.NoError(t, err)
		assert.False(t, filepath.IsAbs(target))

		content, err := os.ReadFile(link)
		require.NoError(t, err)
		assert.Equal(t, contactRows(150, ","), string(content))
	})

	t.Run("buckets by sniffed delimiter", func(t *testing.T) {
		cfg := m.Config{Threshold: 10}
		fx := newRouterFixture(t, cfg)
		path := writeFile(t, fx.path("data"), contactRows(20, ";"))

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindCSV})
		require.NoError(t, err)

		assert.Equal(t, "semicolon", c.Delimiter.Name)
		assert.FileExists(t, filepath.Join(fx.bucketDir(cfg, "semicolon"), "0 - data.csv"))
	})

	t.Run("low signal halts the batch", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeFile(t, fx.path("a.csv"), contactRows(3, ","))

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindCSV})

		var haltErr *domain.HaltError
		require.ErrorAs(t, err, &haltErr)
		require.ErrorIs(t, err, domain.ErrInsufficientSignal)
		assert.Equal(t, m.Rejected, c.Decision)
		assert.Equal(t, m.Rejected, haltErr.Candidate.Decision)
		assert.Equal(t, 3, c.Signal)
		assert.Empty(t, fx.buckets.List())
	})

	t.Run("low signal is a plain rejection when sparse files are tolerated", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{TolerateSparseTabular: true})
		path := writeFile(t, fx.path("a.csv"), contactRows(3, ","))

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindCSV})
		require.NoError(t, err)
		assert.Equal(t, m.Rejected, c.Decision)
	})

	t.Run("undetected delimiter halts", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{Threshold: 5})

		var b strings.Builder
		for i := range 10 {
			b.WriteString("contact" + string(rune('a'+i)) + "@example.com\n")
		}

		path := writeFile(t, fx.path("list.txt"), b.String())

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindCSV})
		require.ErrorIs(t, err, domain.ErrUndetectedDelimiter)
		assert.Equal(t, m.Rejected, c.Decision)
	})

	t.Run("missing file passes through", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})

		_, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: m.Path(fx.path("gone.csv")), Kind: m.KindCSV})
		require.ErrorIs(t, err, domain.ErrUnreadableFile)

		var haltErr *domain.HaltError
		assert.False(t, errors.As(err, &haltErr))
	})
}

func TestRouter_RouteSpreadsheet(t *testing.T) {
	ctx := context.Background()

	t.Run("links every sheet", func(t *testing.T) {
		cfg := m.Config{}
		fx := newRouterFixture(t, cfg)
		path := writeWorkbook(t, fx.path("book.xlsx"), []string{"Sheet1", "Sheet2"}, map[string][][]any{
			"Sheet1": contactSheet(120),
			"Sheet2": contactSheet(130),
		})

		c, err := fx.router.Route(ctx, m.Candidate{Index: 2, Path: path, Kind: m.KindSpreadsheet})
		require.NoError(t, err)

		assert.Equal(t, m.Accepted, c.Decision)
		assert.Equal(t, "csv", c.Delimiter.Name)
		assert.Equal(t, 200, c.Signal)
		assert.Equal(t, []m.Path{
			m.Path(filepath.Join(fx.bucketDir(cfg, "csv"), "2 - 2 - 0 - Sheet1.csv")),
			m.Path(filepath.Join(fx.bucketDir(cfg, "csv"), "2 - 2 - 1 - Sheet2.csv")),
		}, c.Links)

		derived := fx.path(cfg.Normalized().WorkDir, domain.SheetsDir, "2 - 0 - Sheet1.csv")
		content, err := os.ReadFile(derived)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(content), "id,email\n0,sheet0@example.com\n"))
	})

	t.Run("a sparse sheet withdraws earlier sheets", func(t *testing.T) {
		cfg := m.Config{}
		fx := newRouterFixture(t, cfg)
		path := writeWorkbook(t, fx.path("book.xlsx"), []string{"Full", "Sparse"}, map[string][][]any{
			"Full":   contactSheet(120),
			"Sparse": contactSheet(2),
		})

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindSpreadsheet})
		require.ErrorIs(t, err, domain.ErrInsufficientSignal)

		assert.Equal(t, m.Rejected, c.Decision)
		assert.Empty(t, c.Links)
		assert.Empty(t, fx.buckets.List())
		assert.NoDirExists(t, fx.bucketDir(cfg, "csv"))
	})

	t.Run("unreadable workbook halts", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeFile(t, fx.path("book.xlsx"), "not a workbook")

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindSpreadsheet})
		require.ErrorIs(t, err, domain.ErrSpreadsheet)
		assert.Equal(t, m.Rejected, c.Decision)
	})
}

func TestRouter_RouteOtherKinds(t *testing.T) {
	ctx := context.Background()

	t.Run("archive halts the batch", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeZip(t, fx.path("nested.zip"), map[string]string{"a.csv": contactRows(200, ",")})

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindArchive})

		var haltErr *domain.HaltError
		require.ErrorAs(t, err, &haltErr)
		require.ErrorIs(t, err, domain.ErrArchiveKind)
		assert.Equal(t, m.Rejected, c.Decision)
	})

	t.Run("json without signal is rejected", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeFile(t, fx.path("a.json"), `{"email": "one@example.com"}`)

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindJSON})
		require.NoError(t, err)
		assert.Equal(t, m.Rejected, c.Decision)
		assert.Equal(t, 1, c.Signal)
	})

	t.Run("json with signal halts as unhandleable", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{Threshold: 3})

		var b strings.Builder
		for range 5 {
			b.WriteString(`{"email": "one@example.com"}` + "\n")
		}

		path := writeFile(t, fx.path("a.json"), b.String())

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindJSON})
		require.ErrorIs(t, err, domain.ErrUnhandleableSignal)
		assert.Equal(t, m.Skipped, c.Decision)
	})

	t.Run("sql dump is skipped when extracted beforehand", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{ParseSQL: true})
		path := writeFile(t, fx.path("dump.sql"), "INSERT INTO t VALUES (1);\n")

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindSQL})
		require.NoError(t, err)
		assert.Equal(t, m.Skipped, c.Decision)
	})

	t.Run("sql dump is scanned directly otherwise", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeFile(t, fx.path("dump.sql"), "INSERT INTO t VALUES ('a@example.com');\n")

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindSQL})
		require.NoError(t, err)
		assert.Equal(t, m.Rejected, c.Decision)
		assert.Equal(t, 1, c.Signal)
	})

	t.Run("other kinds go through text extraction", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{Threshold: 2})
		path := writeFile(t, fx.path("doc.pdf"), "%PDF-1.4")

		fx.extractor.EXPECT().Extract(mock.Anything, path).
			Return("a@example.com b@example.com c@example.com", nil).Once()

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindOther})
		require.ErrorIs(t, err, domain.ErrUnhandleableSignal)
		assert.Equal(t, m.Skipped, c.Decision)
		assert.Equal(t, 2, c.Signal)
	})

	t.Run("extraction failure counts as no signal", func(t *testing.T) {
		fx := newRouterFixture(t, m.Config{})
		path := writeFile(t, fx.path("blob.bin"), "\x00\x01")

		fx.extractor.EXPECT().Extract(mock.Anything, path).Return("", errors.New("boom")).Once()

		c, err := fx.router.Route(ctx, m.Candidate{Index: 0, Path: path, Kind: m.KindUnknown})
		require.NoError(t, err)
		assert.Equal(t, m.Rejected, c.Decision)
		assert.Zero(t, c.Signal)
	})
}
