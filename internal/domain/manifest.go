package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// ManifestGenerator remaps an input descriptor into the published output
// descriptor.
type ManifestGenerator struct {
	fs       adapter.SourceFSAdapter
	alphabet []m.Delimiter
	sources  []string
}

// NewManifestGenerator creates a ManifestGenerator.
func NewManifestGenerator(fsAdapter adapter.SourceFSAdapter, cfg m.Config) *ManifestGenerator {
	cfg = cfg.Normalized()

	return &ManifestGenerator{fs: fsAdapter, alphabet: cfg.Delimiters, sources: cfg.SourceNames}
}

// SourceName returns the first vocabulary entry found in source, ignoring case.
func (g *ManifestGenerator) SourceName(source string) (string, bool) {
	lower := strings.ToLower(source)

	for _, name := range g.sources {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name, true
		}
	}

	return "", false
}

// Generate builds the output descriptor for in. Every directory of bucketDir
// named exactly like a delimiter bucket becomes a file entry.
func (g *ManifestGenerator) Generate(ctx context.Context, in m.InputDescriptor, bucketDir m.Path) (m.OutputDescriptor, error) {
	entries, err := g.fs.ReadDir(ctx, bucketDir)
	if err != nil {
		return m.OutputDescriptor{}, fmt.Errorf("list buckets in %s: %w", bucketDir, err)
	}

	out := m.OutputDescriptor{
		Actors:        []string{in.Actor},
		AdvertiseURL:  in.Source,
		BreachVictim:  in.Title,
		DownloadURL:   in.DownloadLink,
		Files:         []m.FileEntry{},
		PublishedDate: in.SourceDate,
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		d, ok := m.DelimiterByName(g.alphabet, entry.Name())
		if !ok {
			slog.Debug("Ignoring non-bucket directory", "dir", entry.Name())
			continue
		}

		out.Files = append(out.Files, m.FileEntry{Path: d.Name, Delimiter: d.Printable()})
	}

	if name, ok := g.SourceName(in.Source); ok {
		out.SourceNames = []string{name}
	}

	return out, nil
}
