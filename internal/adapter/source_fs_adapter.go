// Package adapter contains the infrastructure adapters behind the curation
// pipeline: filesystem access, document text extraction, spreadsheets,
// manifests and archiving.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"syscall"

	m "glide.dev/pkg/glide/internal/model"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on while walking and rewriting a batch. It hides direct `os` access so the
// pipeline logic can be exercised against temporary trees.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Walk traverses root in lexical order, calling fn for every entry.
	Walk(ctx context.Context, root m.Path, fn fs.WalkDirFunc) error

	// Open opens a file for streaming reads.
	Open(ctx context.Context, path m.Path) (io.ReadCloser, error)

	// ReadPrefix returns at most n bytes from the start of the file.
	ReadPrefix(ctx context.Context, path m.Path, n int) ([]byte, error)

	// Create truncates or creates a file for writing, creating parent dirs.
	Create(ctx context.Context, path m.Path) (io.WriteCloser, error)

	// OpenAppend opens a file for appending. created reports whether the file
	// did not exist before the call.
	OpenAppend(ctx context.Context, path m.Path) (w io.WriteCloser, created bool, err error)

	// MkdirAll creates a directory and its parents.
	MkdirAll(ctx context.Context, path m.Path) error

	// Symlink creates link pointing at target. target is stored verbatim.
	Symlink(ctx context.Context, target, link m.Path) error

	// Resolve returns the absolute path with symlinks evaluated.
	Resolve(ctx context.Context, path m.Path) (m.Path, error)

	// FileInfo returns metadata for a path (following links).
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// ReadDir lists a directory sorted by name.
	ReadDir(ctx context.Context, path m.Path) ([]os.DirEntry, error)

	// Glob returns the paths matching pattern, sorted.
	Glob(ctx context.Context, pattern string) ([]m.Path, error)

	// Remove deletes a single file; a missing file is not an error.
	Remove(ctx context.Context, path m.Path) error

	// RemoveAll removes a directory and all its contents.
	RemoveAll(ctx context.Context, path m.Path) error

	// Move relocates src into dstDir and returns the new path.
	Move(ctx context.Context, src, dstDir m.Path) (m.Path, error)

	// CopyDir recursively copies a directory tree, recreating symlinks.
	CopyDir(ctx context.Context, src, dst m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// LocalSourceFSAdapter is the os-backed SourceFSAdapter.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Walk iterates over entries under root. filepath.WalkDir visits entries in
// lexical order, which keeps enumeration stable across runs.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(string(root), func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fn(path, d, err)
	})
}

// Open opens a file for reading.
func (a *LocalSourceFSAdapter) Open(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// #nosec G304 - batch files are the tool's input by definition
	return os.Open(string(path))
}

// ReadPrefix reads at most n bytes from the start of path.
func (a *LocalSourceFSAdapter) ReadPrefix(ctx context.Context, path m.Path, n int) ([]byte, error) {
	f, err := a.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	defer func() { _ = f.Close() }()

	buf := make([]byte, n)

	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	return buf[:read], nil
}

// Create truncates or creates path for writing.
func (a *LocalSourceFSAdapter) Create(ctx context.Context, path m.Path) (io.WriteCloser, error) {
	if err := a.MkdirAll(ctx, m.Path(filepath.Dir(string(path)))); err != nil {
		return nil, err
	}

	// #nosec G304 - output paths are derived from the batch workdir
	return os.Create(string(path))
}

// OpenAppend opens path for appending, creating it when missing.
func (a *LocalSourceFSAdapter) OpenAppend(ctx context.Context, path m.Path) (io.WriteCloser, bool, error) {
	if err := a.MkdirAll(ctx, m.Path(filepath.Dir(string(path)))); err != nil {
		return nil, false, err
	}

	created := false

	if _, err := os.Stat(string(path)); errors.Is(err, fs.ErrNotExist) {
		created = true
	}

	// #nosec G304 - output paths are derived from the batch workdir
	f, err := os.OpenFile(string(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, false, err
	}

	return f, created, nil
}

// MkdirAll creates a directory and its parents.
func (a *LocalSourceFSAdapter) MkdirAll(ctx context.Context, path m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.MkdirAll(string(path), 0o750)
}

// Symlink creates link pointing at target.
func (a *LocalSourceFSAdapter) Symlink(ctx context.Context, target, link m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return os.Symlink(string(target), string(link))
}

// Resolve returns the absolute, symlink-free form of path.
func (a *LocalSourceFSAdapter) Resolve(_ context.Context, path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}

	return m.Path(resolved), nil
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(_ context.Context, path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ReadDir lists the entries of a directory.
func (a *LocalSourceFSAdapter) ReadDir(_ context.Context, path m.Path) ([]os.DirEntry, error) {
	return os.ReadDir(string(path))
}

// Glob returns sorted matches for pattern.
func (a *LocalSourceFSAdapter) Glob(_ context.Context, pattern string) ([]m.Path, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)

	paths := make([]m.Path, 0, len(matches))
	for _, match := range matches {
		paths = append(paths, m.Path(match))
	}

	return paths, nil
}

// Remove deletes a single file.
func (a *LocalSourceFSAdapter) Remove(_ context.Context, path m.Path) error {
	err := os.Remove(string(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(_ context.Context, path m.Path) error {
	return os.RemoveAll(string(path))
}

// Move relocates src to dstDir/<base(src)>. A rename across filesystems falls
// back to copy and remove.
func (a *LocalSourceFSAdapter) Move(ctx context.Context, src, dstDir m.Path) (m.Path, error) {
	if err := a.MkdirAll(ctx, dstDir); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	target := filepath.Join(string(dstDir), filepath.Base(string(src)))

	if _, err := os.Lstat(target); err == nil {
		return "", fmt.Errorf("move %s: destination %s already exists", src, target)
	}

	err := os.Rename(string(src), target)
	if err == nil {
		return m.Path(target), nil
	}

	if !errors.Is(err, syscall.EXDEV) {
		return "", err
	}

	if err := a.CopyDir(ctx, src, m.Path(target)); err != nil {
		return "", fmt.Errorf("copy across devices: %w", err)
	}

	if err := os.RemoveAll(string(src)); err != nil {
		return "", fmt.Errorf("remove source after copy: %w", err)
	}

	return m.Path(target), nil
}

// CopyDir recursively copies a directory tree.
func (a *LocalSourceFSAdapter) CopyDir(ctx context.Context, src, dst m.Path) error {
	return filepath.WalkDir(string(src), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(string(dst), relPath)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(targetPath, info.Mode().Perm())
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}

			return os.Symlink(link, targetPath)
		default:
			return a.copyFile(path, targetPath, info.Mode())
		}
	})
}

// copyFile copies a single file.
func (a *LocalSourceFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is a file of the batch being moved
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is inside the destination tree
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
