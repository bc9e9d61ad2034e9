package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// Sniffer infers the delimiter of a text file over a descending ladder of
// sample sizes.
type Sniffer struct {
	fs       adapter.SourceFSAdapter
	unit     int
	steps    int
	alphabet []m.Delimiter
	allowed  []rune
}

// NewSniffer creates a Sniffer restricted to the configured alphabet.
func NewSniffer(fsAdapter adapter.SourceFSAdapter, cfg m.Config) *Sniffer {
	cfg = cfg.Normalized()

	allowed := make([]rune, 0, len(cfg.Delimiters))
	for _, d := range cfg.Delimiters {
		allowed = append(allowed, d.Char)
	}

	return &Sniffer{
		fs:       fsAdapter,
		unit:     cfg.SniffUnit,
		steps:    cfg.SniffSteps,
		alphabet: cfg.Delimiters,
		allowed:  allowed,
	}
}

// Sniff returns the first delimiter detected, trying steps×unit characters
// first and shrinking one unit at a time. ok is false when no sample size
// yields a supported delimiter.
func (s *Sniffer) Sniff(ctx context.Context, path m.Path) (m.Delimiter, bool, error) {
	// Newline translation can only shrink the text, so read twice the budget.
	raw, err := s.fs.ReadPrefix(ctx, path, 2*s.steps*s.unit)
	if err != nil {
		return m.Delimiter{}, false, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	d, ok := s.SniffSample(raw)

	return d, ok, nil
}

// SniffSample runs the ladder over an in-memory prefix.
func (s *Sniffer) SniffSample(raw []byte) (m.Delimiter, bool) {
	text := decodeLatin1(raw)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	runes := []rune(text)

	previous := -1

	for size := s.steps; size >= 1; size-- {
		sample := runes[:min(size*s.unit, len(runes))]
		if len(sample) == previous {
			continue
		}

		previous = len(sample)

		char, ok := sniffDelimiter(sample, s.allowed)
		if !ok {
			continue
		}

		if d, known := m.DelimiterByChar(s.alphabet, char); known {
			slog.Debug("Sniffed delimiter", "delimiter", d.Name, "sample", len(sample))
			return d, true
		}
	}

	return m.Delimiter{}, false
}
