package domain_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"glide.dev/pkg/glide/internal/adapter"
	adaptermocks "glide.dev/pkg/glide/internal/adapter/mocks"
	controllermocks "glide.dev/pkg/glide/internal/controller/mocks"
	"glide.dev/pkg/glide/internal/domain"
	m "glide.dev/pkg/glide/internal/model"
	"glide.dev/pkg/glide/pkg"
)

const inputManifest = `Title: Acme
Source: https://leakbase.io/threads/acme
Download Link: https://files.example/acme.zip
Source Date: "2026-03-01"
Actor: someone
`

func newTestWorkflow(t *testing.T, cfg m.Config, ui *controllermocks.MockUI) domain.Workflow {
	t.Helper()

	return domain.NewWorkflow(
		cfg,
		adapter.NewLocalSourceFSAdapter(),
		adaptermocks.NewMockTextExtractor(t),
		adapter.NewExcelSheetReader(),
		adapter.NewYAMLManifestStore(),
		adapter.NewZipArchiver(),
		ui,
	)
}

// expectRun registers the calls of a complete run and returns the journal
// size seen by the summary.
func expectRun(ui *controllermocks.MockUI) *uint64 {
	var journalLen uint64

	ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ui.EXPECT().DisplayStage(mock.Anything, mock.Anything).Maybe()
	ui.EXPECT().DisplayCandidate(mock.Anything, mock.Anything).Maybe()
	ui.EXPECT().DisplayBatch(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ m.Batch, journal pkg.FileSpill[m.Candidate]) error {
			journalLen = journal.Len()
			return nil
		})
	ui.EXPECT().Wait(mock.Anything)
	ui.EXPECT().Close(mock.Anything)

	return &journalLen
}

// newBatchDir creates <base>/incoming/acme with an input manifest and returns
// base and the batch root.
func newBatchDir(t *testing.T) (string, string) {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	root := filepath.Join(base, "incoming", "acme")
	writeFile(t, filepath.Join(root, "info.manifest"), inputManifest)

	return base, root
}

func TestWorkflow_Curate(t *testing.T) {
	ctx := context.Background()
	wd := m.Config{}.Normalized().WorkDir

	t.Run("parsable batch is finalized and moved", func(t *testing.T) {
		base, root := newBatchDir(t)
		writeFile(t, filepath.Join(root, "data.csv"), contactRows(150, ","))

		ui := controllermocks.NewMockUI(t)
		journalLen := expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{
			Root:        m.Path(root),
			ParsableDir: m.Path(filepath.Join(base, "parsable")),
			RejectedDir: m.Path(filepath.Join(base, "rejected")),
			JournalDir:  t.TempDir(),
		})
		require.NoError(t, err)

		location := filepath.Join(base, "parsable", "acme")
		upload := filepath.Join(location, wd, domain.UploadDir)

		assert.Equal(t, m.OutcomeParsable, batch.Outcome)
		assert.Equal(t, m.Path(location), batch.Location)
		assert.Equal(t, m.Path(filepath.Join(upload, "acme.zip")), batch.Archive)
		assert.Equal(t, m.Path(filepath.Join(upload, domain.ManifestFileName)), batch.Manifest)
		assert.Equal(t, 1, batch.Files)
		assert.Equal(t, uint64(1), *journalLen)
		assert.NotEmpty(t, batch.RunID)
		assert.NoDirExists(t, root)

		require.Len(t, batch.Buckets, 1)
		assert.Equal(t, m.Path(filepath.Join(upload, "csv")), batch.Buckets[0].Dir)
		assert.Equal(t, []m.Path{m.Path(filepath.Join(upload, "csv", "0 - data.csv"))}, batch.Buckets[0].Links)

		resolved, err := filepath.EvalSymlinks(string(batch.Buckets[0].Links[0]))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(location, "data.csv"), resolved)

		assert.FileExists(t, string(batch.Archive))

		manifest, err := os.ReadFile(string(batch.Manifest))
		require.NoError(t, err)
		assert.Contains(t, string(manifest), "breach_victim: Acme")
		assert.Contains(t, string(manifest), "- LeakBase")
	})

	t.Run("archive in the batch rejects it", func(t *testing.T) {
		base, root := newBatchDir(t)
		writeZip(t, filepath.Join(root, "bundle.zip"), map[string]string{"inner.txt": "x"})
		writeFile(t, filepath.Join(root, "data.csv"), contactRows(150, ","))

		ui := controllermocks.NewMockUI(t)
		expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{
			Root:        m.Path(root),
			ParsableDir: m.Path(filepath.Join(base, "parsable")),
			RejectedDir: m.Path(filepath.Join(base, "rejected")),
			JournalDir:  t.TempDir(),
		})
		require.NoError(t, err)

		assert.Equal(t, m.OutcomeRejected, batch.Outcome)
		assert.Equal(t, m.Path(filepath.Join(base, "rejected", "acme")), batch.Location)
		assert.Contains(t, batch.Reason, domain.ErrArchiveKind.Error())
		assert.Empty(t, batch.Archive)
		assert.Empty(t, batch.Buckets)
		assert.Equal(t, 1, batch.Files)
	})

	t.Run("no destination leaves the batch unresolved", func(t *testing.T) {
		_, root := newBatchDir(t)
		writeFile(t, filepath.Join(root, "data.csv"), contactRows(150, ";"))

		ui := controllermocks.NewMockUI(t)
		expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{
			Root:       m.Path(root),
			JournalDir: t.TempDir(),
		})
		require.NoError(t, err)

		assert.Equal(t, m.OutcomeUnresolved, batch.Outcome)
		assert.Equal(t, "parsable", batch.Reason)
		assert.Equal(t, m.Path(root), batch.Location)
		assert.FileExists(t, filepath.Join(root, wd, domain.UploadDir, "semicolon", "0 - data.csv"))
	})

	t.Run("ignored failures with nothing accepted", func(t *testing.T) {
		base, root := newBatchDir(t)
		writeFile(t, filepath.Join(root, "sparse.csv"), contactRows(3, ","))

		ui := controllermocks.NewMockUI(t)
		journalLen := expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{IgnoreFailures: true}, ui).Curate(ctx, domain.CurateArgs{
			Root:        m.Path(root),
			RejectedDir: m.Path(filepath.Join(base, "rejected")),
			JournalDir:  t.TempDir(),
		})
		require.NoError(t, err)

		assert.Equal(t, m.OutcomeRejected, batch.Outcome)
		assert.Equal(t, domain.ErrNothingToPublish.Error(), batch.Reason)
		assert.Equal(t, uint64(1), *journalLen)
	})

	t.Run("sql dumps are extracted before routing", func(t *testing.T) {
		_, root := newBatchDir(t)

		var dump strings.Builder
		dump.WriteString("-- MySQL dump\nCREATE TABLE users (id int, email text);\n")

		for i := range 120 {
			fmt.Fprintf(&dump, "INSERT INTO users (id, email) VALUES (%d,'user%d@example.com');\n", i, i)
		}

		writeFile(t, filepath.Join(root, "dump.sql"), dump.String())

		ui := controllermocks.NewMockUI(t)
		journalLen := expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{ParseSQL: true}, ui).Curate(ctx, domain.CurateArgs{
			Root:       m.Path(root),
			JournalDir: t.TempDir(),
		})
		require.NoError(t, err)

		assert.Equal(t, "parsable", batch.Reason)
		assert.Equal(t, 2, batch.Files)
		assert.Equal(t, uint64(2), *journalLen)
		assert.FileExists(t, filepath.Join(root, wd, domain.TablesDir, "0", "users"))
		assert.FileExists(t, filepath.Join(root, wd, domain.UploadDir, "csv", "1 - users.csv"))
		assert.FileExists(t, filepath.Join(root, "dump.sql"))
	})

	t.Run("stale working directories are removed", func(t *testing.T) {
		_, root := newBatchDir(t)
		writeFile(t, filepath.Join(root, "data.csv"), contactRows(150, ","))
		writeFile(t, filepath.Join(root, "nested", wd, domain.UploadDir, "csv", "old.csv"), "x")
		writeFile(t, filepath.Join(root, wd, domain.TablesDir, "9", "stale"), contactRows(150, ","))

		ui := controllermocks.NewMockUI(t)
		expectRun(ui)

		batch, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{
			Root:       m.Path(root),
			JournalDir: t.TempDir(),
		})
		require.NoError(t, err)

		assert.Equal(t, 1, batch.Files)
		assert.NoDirExists(t, filepath.Join(root, "nested", wd))
		assert.NoFileExists(t, filepath.Join(root, wd, domain.TablesDir, "9", "stale"))
	})

	t.Run("cancelled run stays unresolved", func(t *testing.T) {
		base, root := newBatchDir(t)
		writeFile(t, filepath.Join(root, "data.csv"), contactRows(150, ","))

		ui := controllermocks.NewMockUI(t)
		expectRun(ui)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		batch, err := newTestWorkflow(t, m.Config{}, ui).Curate(cancelled, domain.CurateArgs{
			Root:        m.Path(root),
			ParsableDir: m.Path(filepath.Join(base, "parsable")),
			JournalDir:  t.TempDir(),
		})
		require.ErrorIs(t, err, context.Canceled)

		assert.Equal(t, m.OutcomeUnresolved, batch.Outcome)
		assert.DirExists(t, root)
	})

	t.Run("ui start failure", func(t *testing.T) {
		_, root := newBatchDir(t)

		ui := controllermocks.NewMockUI(t)
		ui.EXPECT().Start(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no terminal"))

		_, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{Root: m.Path(root)})
		require.EqualError(t, err, "no terminal")
	})

	t.Run("missing root", func(t *testing.T) {
		ui := controllermocks.NewMockUI(t)

		_, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{
			Root: m.Path(filepath.Join(t.TempDir(), "missing")),
		})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("root must be a directory", func(t *testing.T) {
		ui := controllermocks.NewMockUI(t)
		file := writeFile(t, filepath.Join(t.TempDir(), "file.csv"), "x")

		_, err := newTestWorkflow(t, m.Config{}, ui).Curate(ctx, domain.CurateArgs{Root: file})
		require.ErrorContains(t, err, "is not a directory")
	})
}

func TestWorkflow_Manifest(t *testing.T) {
	ctx := context.Background()

	t.Run("searches for the input descriptor", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "info.manifest"), inputManifest)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "pipe"), 0o750))

		output := filepath.Join(t.TempDir(), "out", "manifest.yaml")

		out, err := newTestWorkflow(t, m.Config{}, controllermocks.NewMockUI(t)).Manifest(ctx, domain.ManifestArgs{
			Output:    m.Path(output),
			SearchDir: m.Path(dir),
		})
		require.NoError(t, err)

		assert.Equal(t, []m.FileEntry{{Path: "pipe", Delimiter: "|"}}, out.Files)
		assert.Equal(t, []string{"LeakBase"}, out.SourceNames)
		assert.FileExists(t, output)
	})

	t.Run("explicit input", func(t *testing.T) {
		input := writeFile(t, filepath.Join(t.TempDir(), "elsewhere.yaml"), inputManifest)
		output := filepath.Join(t.TempDir(), "manifest.yaml")

		out, err := newTestWorkflow(t, m.Config{}, controllermocks.NewMockUI(t)).Manifest(ctx, domain.ManifestArgs{
			Input:     input,
			Output:    m.Path(output),
			SearchDir: m.Path(t.TempDir()),
		})
		require.NoError(t, err)

		assert.Equal(t, "Acme", out.BreachVictim)
		assert.Empty(t, out.Files)
	})

	t.Run("no input descriptor", func(t *testing.T) {
		_, err := newTestWorkflow(t, m.Config{}, controllermocks.NewMockUI(t)).Manifest(ctx, domain.ManifestArgs{
			Output:    m.Path(filepath.Join(t.TempDir(), "manifest.yaml")),
			SearchDir: m.Path(t.TempDir()),
		})
		require.ErrorIs(t, err, adapter.ErrNoManifest)
	})
}
