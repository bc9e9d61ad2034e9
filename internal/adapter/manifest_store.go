package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	m "glide.dev/pkg/glide/internal/model"
)

// ManifestSuffix identifies input descriptor files in a batch root.
const ManifestSuffix = ".manifest"

// ErrNoManifest is returned when a batch root holds no input descriptor.
var ErrNoManifest = errors.New("no input manifest found")

// ManifestStore reads input descriptors and writes output descriptors.
type ManifestStore interface {
	// FindInput returns the first *.manifest file (lexical order) in dir.
	FindInput(ctx context.Context, dir m.Path) (m.Path, error)
	LoadInput(ctx context.Context, path m.Path) (m.InputDescriptor, error)
	SaveOutput(ctx context.Context, path m.Path, out m.OutputDescriptor) error
}

// YAMLManifestStore persists descriptors as YAML documents.
type YAMLManifestStore struct{}

// NewYAMLManifestStore constructs a YAMLManifestStore.
func NewYAMLManifestStore() *YAMLManifestStore {
	return &YAMLManifestStore{}
}

// FindInput implements ManifestStore.
func (s *YAMLManifestStore) FindInput(ctx context.Context, dir m.Path) (m.Path, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(string(dir), "*"+ManifestSuffix))
	if err != nil {
		return "", err
	}

	sort.Strings(matches)

	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && info.Mode().IsRegular() {
			return m.Path(match), nil
		}
	}

	return "", fmt.Errorf("%w in %s", ErrNoManifest, dir)
}

// LoadInput implements ManifestStore.
func (s *YAMLManifestStore) LoadInput(ctx context.Context, path m.Path) (m.InputDescriptor, error) {
	var in m.InputDescriptor

	if err := ctx.Err(); err != nil {
		return in, err
	}

	// #nosec G304 - manifest path is discovered inside the batch root
	data, err := os.ReadFile(string(path))
	if err != nil {
		return in, fmt.Errorf("read manifest: %w", err)
	}

	if err := yaml.Unmarshal(data, &in); err != nil {
		slog.Error("Unable to read manifest", "path", path, "error", err)
		return in, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	slog.Info("Read manifest", "path", path)

	return in, nil
}

// SaveOutput implements ManifestStore.
func (s *YAMLManifestStore) SaveOutput(ctx context.Context, path m.Path, out m.OutputDescriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	slog.Info("Wrote manifest", "path", path)

	return nil
}
