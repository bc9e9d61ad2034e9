package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// ManifestFileName is the output descriptor written next to the buckets.
const ManifestFileName = "manifest.yaml"

// Finalizer writes the manifest and the archive of a batch with published
// buckets.
type Finalizer struct {
	manifests adapter.ManifestStore
	archiver  adapter.Archiver
	generator *ManifestGenerator
}

// NewFinalizer creates a Finalizer.
func NewFinalizer(manifests adapter.ManifestStore, archiver adapter.Archiver, generator *ManifestGenerator) *Finalizer {
	return &Finalizer{manifests: manifests, archiver: archiver, generator: generator}
}

// Finalize publishes batch. Without any linked file it returns
// ErrNothingToPublish before touching manifests or archives. Other failures
// wrap ErrFinalize.
func (f *Finalizer) Finalize(ctx context.Context, batch m.Batch, upload m.Path) (m.Batch, error) {
	if !batch.Publishable() {
		return batch, ErrNothingToPublish
	}

	input, err := f.manifests.FindInput(ctx, batch.Root)
	if err != nil {
		return batch, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	in, err := f.manifests.LoadInput(ctx, input)
	if err != nil {
		return batch, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	out, err := f.generator.Generate(ctx, in, upload)
	if err != nil {
		return batch, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	manifest := m.Path(filepath.Join(string(upload), ManifestFileName))
	if err := f.manifests.SaveOutput(ctx, manifest, out); err != nil {
		return batch, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	batch.Manifest = manifest

	archive, err := f.archiver.Archive(ctx, upload, filepath.Base(string(batch.Root))+".zip")
	if err != nil {
		return batch, fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	batch.Archive = archive

	slog.Info("Finalized batch", "root", batch.Root, "manifest", manifest, "archive", archive)

	return batch, nil
}
