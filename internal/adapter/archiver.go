package adapter

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	m "glide.dev/pkg/glide/internal/model"
)

// Archiver packages a directory into a zip archive stored inside that
// directory.
type Archiver interface {
	// Archive writes <dir>/<name> containing every entry of dir except the
	// archive itself. A pre-existing archive with the same name is removed first.
	Archive(ctx context.Context, dir m.Path, name string) (m.Path, error)
}

// ArchiveError is the typed failure returned by archivers.
type ArchiveError struct {
	Archive  m.Path
	ExitCode int // -1 when no external process was involved
	Output   string
	Err      error
}

func (e *ArchiveError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("archive %s: exit code %d: %v", e.Archive, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("archive %s: %v", e.Archive, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// ZipArchiver writes archives in-process with archive/zip. Symlinked entries
// are stored with the content of their target.
type ZipArchiver struct{}

// NewZipArchiver constructs a ZipArchiver.
func NewZipArchiver() *ZipArchiver {
	return &ZipArchiver{}
}

// Archive implements Archiver.
func (a *ZipArchiver) Archive(ctx context.Context, dir m.Path, name string) (m.Path, error) {
	target := filepath.Join(string(dir), name)

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	out, err := os.CreateTemp(string(dir), ".archive-*")
	if err != nil {
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	tmpName := out.Name()

	defer func() { _ = os.Remove(tmpName) }()

	if err := a.write(ctx, out, string(dir), tmpName); err != nil {
		_ = out.Close()
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	if err := out.Close(); err != nil {
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	if err := os.Rename(tmpName, target); err != nil {
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	slog.Info("Created archive", "archive", target)

	return m.Path(target), nil
}

func (a *ZipArchiver) write(ctx context.Context, out io.Writer, dir, skip string) error {
	zw := zip.NewWriter(out)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if path == dir || path == skip {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		// os.Stat follows bucket symlinks to the normalized source.
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			header.Name += "/"
			_, err = zw.CreateHeader(header)

			return err
		}

		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		return copyInto(w, path)
	})
	if err != nil {
		_ = zw.Close()
		return err
	}

	return zw.Close()
}

func copyInto(w io.Writer, path string) error {
	// #nosec G304 - path is inside the upload tree being archived
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	_, err = io.Copy(w, f)

	return err
}

// CommandArchiver shells out to an external zip binary, mirroring
// `cd <dir> && zip -r <name> .`.
type CommandArchiver struct {
	binary  string
	timeout time.Duration
}

// NewCommandArchiver constructs a CommandArchiver for binary with the given
// timeout. A zero timeout disables the deadline.
func NewCommandArchiver(binary string, timeout time.Duration) *CommandArchiver {
	return &CommandArchiver{
		binary:  binary,
		timeout: timeout,
	}
}

// Archive implements Archiver.
func (a *CommandArchiver) Archive(ctx context.Context, dir m.Path, name string) (m.Path, error) {
	target := filepath.Join(string(dir), name)

	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", &ArchiveError{Archive: m.Path(target), ExitCode: -1, Err: err}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	// #nosec G204 - binary comes from configuration, arguments are fixed
	cmd := exec.CommandContext(ctx, a.binary, "-r", name, ".", "-x", name)
	cmd.Dir = string(dir)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	output := stdout.String() + stderr.String()

	if err != nil {
		exitCode := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		slog.Error("Archiver failed", "archive", target, "exitCode", exitCode, "output", output)

		return "", &ArchiveError{Archive: m.Path(target), ExitCode: exitCode, Output: output, Err: err}
	}

	slog.Info("Created archive", "archive", target, "binary", a.binary)

	return m.Path(target), nil
}

// NewArchiver returns the archiver selected by cfg.ArchiveMode.
func NewArchiver(cfg m.Config) (Archiver, error) {
	cfg = cfg.Normalized()

	switch cfg.ArchiveMode {
	case m.ArchiveInProcess:
		return NewZipArchiver(), nil
	case m.ArchiveCommand:
		return NewCommandArchiver(cfg.ArchiveCommand, cfg.ArchiveTimeout), nil
	default:
		return nil, fmt.Errorf("unknown archive mode %q", cfg.ArchiveMode)
	}
}
