package domain

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// Scratch subtrees of the working directory.
const (
	UploadDir = "upload"
	SheetsDir = "xlsx2csv"
	TablesDir = "s2c"
)

// Enumerator lists the candidate files of a batch.
type Enumerator struct {
	fs  adapter.SourceFSAdapter
	cfg m.Config
}

// NewEnumerator creates an Enumerator.
func NewEnumerator(fsAdapter adapter.SourceFSAdapter, cfg m.Config) *Enumerator {
	return &Enumerator{fs: fsAdapter, cfg: cfg.Normalized()}
}

// Paths returns a lazy sequence over the data files under root in lexical
// walk order. Every range over the sequence walks the tree again, so it is
// restartable and stable for an unchanged directory. Ignored suffixes and the
// upload and xlsx2csv scratch subtrees are never yielded.
func (e *Enumerator) Paths(ctx context.Context, root m.Path) iter.Seq2[m.Path, error] {
	skipped := []string{
		filepath.Join(string(root), e.cfg.WorkDir, UploadDir),
		filepath.Join(string(root), e.cfg.WorkDir, SheetsDir),
	}

	return func(yield func(m.Path, error) bool) {
		err := e.fs.Walk(ctx, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if slices.Contains(skipped, path) {
					return filepath.SkipDir
				}

				return nil
			}

			if !e.isDataFile(ctx, m.Path(path), d) {
				return nil
			}

			if !yield(m.Path(path), nil) {
				return filepath.SkipAll
			}

			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

func (e *Enumerator) isDataFile(ctx context.Context, path m.Path, d fs.DirEntry) bool {
	if slices.Contains(e.cfg.IgnoreSuffixes, filepath.Ext(string(path))) {
		return false
	}

	if d.Type().IsRegular() {
		return true
	}

	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}

	info, err := e.fs.FileInfo(ctx, path)

	return err == nil && info.Mode().IsRegular()
}
