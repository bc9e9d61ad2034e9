package domain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// contactPattern matches loose local-part@domain.tld tokens.
const contactPattern = `(?i)[\pL\pN_.$%+-]+@[\pL\pN_.-]+\.[\pL\pN_]{2,6}`

// Scanner counts contact tokens up to the configured threshold.
type Scanner struct {
	fs        adapter.SourceFSAdapter
	extractor adapter.TextExtractor
	threshold int
	contact   *regexp.Regexp
}

// NewScanner creates a Scanner.
func NewScanner(fsAdapter adapter.SourceFSAdapter, extractor adapter.TextExtractor, cfg m.Config) *Scanner {
	cfg = cfg.Normalized()

	return &Scanner{
		fs:        fsAdapter,
		extractor: extractor,
		threshold: cfg.Threshold,
		contact:   regexp.MustCompile(contactPattern),
	}
}

// Threshold is the count at which a file has signal.
func (s *Scanner) Threshold() int {
	return s.threshold
}

// Direct streams path line by line and counts every match on lines holding an
// "@". Scanning stops after the line that reaches the threshold, so the count
// may exceed it.
func (s *Scanner) Direct(ctx context.Context, path m.Path) (int, error) {
	f, err := s.fs.Open(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	defer func() { _ = f.Close() }()

	return s.count(ctx, charmap.ISO8859_1.NewDecoder().Reader(f))
}

func (s *Scanner) count(ctx context.Context, r io.Reader) (int, error) {
	reader := bufio.NewReader(r)
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		line, err := reader.ReadString('\n')
		if strings.Contains(line, "@") {
			count += len(s.contact.FindAllStringIndex(line, -1))
			if count >= s.threshold {
				return count, nil
			}
		}

		if errors.Is(err, io.EOF) {
			return count, nil
		}

		if err != nil {
			return count, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
		}
	}
}

// Extracted runs the text extractor once and counts matches in its output,
// stopping at the threshold. Extractor failures count as no signal.
func (s *Scanner) Extracted(ctx context.Context, path m.Path) int {
	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		slog.Warn("Text extraction failed, treating as no signal", "path", path, "error", err)
		return 0
	}

	if !strings.Contains(text, "@") {
		return 0
	}

	return len(s.contact.FindAllStringIndex(text, s.threshold))
}
