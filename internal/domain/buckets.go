package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// Buckets is the registry of delimiter buckets under <workdir>/upload. A
// bucket directory is created by the first link that needs it.
type Buckets struct {
	fs       adapter.SourceFSAdapter
	upload   m.Path
	alphabet []m.Delimiter
	byName   map[string]*m.Bucket
}

// NewBuckets creates an empty registry for the batch rooted at root.
func NewBuckets(fsAdapter adapter.SourceFSAdapter, cfg m.Config, root m.Path) *Buckets {
	cfg = cfg.Normalized()

	return &Buckets{
		fs:       fsAdapter,
		upload:   m.Path(filepath.Join(string(root), cfg.WorkDir, UploadDir)),
		alphabet: cfg.Delimiters,
		byName:   map[string]*m.Bucket{},
	}
}

// UploadDir is the directory holding all buckets.
func (b *Buckets) UploadDir() m.Path {
	return b.upload
}

// LinkName is the name of the link for the file at index: "<index> - <base>",
// with ".csv" appended when base has no extension.
func LinkName(index int, source m.Path) string {
	base := filepath.Base(string(source))
	if filepath.Ext(base) == "" {
		base += ".csv"
	}

	return strconv.Itoa(index) + " - " + base
}

// Link creates a relative symlink to source inside the bucket for d. An
// existing link with the same name is an error, never overwritten.
func (b *Buckets) Link(ctx context.Context, d m.Delimiter, index int, source m.Path) (m.Path, error) {
	dir := m.Path(filepath.Join(string(b.upload), d.Name))

	if err := b.fs.MkdirAll(ctx, dir); err != nil {
		return "", fmt.Errorf("create bucket %s: %w", d.Name, err)
	}

	resolvedSource, err := b.fs.Resolve(ctx, source)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", source, err)
	}

	resolvedDir, err := b.fs.Resolve(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("resolve bucket %s: %w", dir, err)
	}

	target, err := b.fs.RelPath(ctx, resolvedDir, resolvedSource)
	if err != nil {
		return "", fmt.Errorf("relative link target: %w", err)
	}

	link := m.Path(filepath.Join(string(dir), LinkName(index, source)))

	if err := b.fs.Symlink(ctx, target, link); err != nil {
		return "", fmt.Errorf("link %s: %w", link, err)
	}

	bucket, ok := b.byName[d.Name]
	if !ok {
		bucket = &m.Bucket{Delimiter: d, Dir: dir}
		b.byName[d.Name] = bucket
	}

	bucket.Links = append(bucket.Links, link)

	slog.Info("Linked file into bucket", "link", link, "target", target, "bucket", d.Name)

	return link, nil
}

// Unlink removes links created earlier. A bucket left without links loses
// its directory as well.
func (b *Buckets) Unlink(ctx context.Context, links ...m.Path) error {
	for _, link := range links {
		if err := b.fs.Remove(ctx, link); err != nil {
			return fmt.Errorf("remove link %s: %w", link, err)
		}

		for name, bucket := range b.byName {
			idx := slices.Index(bucket.Links, link)
			if idx < 0 {
				continue
			}

			bucket.Links = slices.Delete(bucket.Links, idx, idx+1)
			if len(bucket.Links) > 0 {
				continue
			}

			if err := b.fs.Remove(ctx, bucket.Dir); err != nil {
				return fmt.Errorf("remove empty bucket %s: %w", name, err)
			}

			delete(b.byName, name)
		}

		slog.Info("Withdrew bucket link", "link", link)
	}

	return nil
}

// List returns the buckets created so far in alphabet order.
func (b *Buckets) List() []m.Bucket {
	var out []m.Bucket

	for _, d := range b.alphabet {
		if bucket, ok := b.byName[d.Name]; ok {
			out = append(out, *bucket)
		}
	}

	return out
}

// Published reports whether at least one bucket holds a link.
func (b *Buckets) Published() bool {
	for _, bucket := range b.byName {
		if len(bucket.Links) > 0 {
			return true
		}
	}

	return false
}
