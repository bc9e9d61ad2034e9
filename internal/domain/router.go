package domain

import (
	"context"
	"fmt"
	"log/slog"

	m "glide.dev/pkg/glide/internal/model"
)

// Router decides the fate of one classified candidate.
type Router struct {
	cfg        m.Config
	scanner    *Scanner
	sniffer    *Sniffer
	normalizer *Normalizer
	buckets    *Buckets
	root       m.Path
	comma      m.Delimiter
}

// NewRouter creates a Router for the batch rooted at root.
func NewRouter(cfg m.Config, root m.Path, scanner *Scanner, sniffer *Sniffer, normalizer *Normalizer, buckets *Buckets) *Router {
	cfg = cfg.Normalized()

	comma, ok := m.DelimiterByChar(cfg.Delimiters, ',')
	if !ok {
		comma = m.DefaultDelimiters()[0]
	}

	return &Router{
		cfg:        cfg,
		scanner:    scanner,
		sniffer:    sniffer,
		normalizer: normalizer,
		buckets:    buckets,
		root:       root,
		comma:      comma,
	}
}

// Route applies the transition table for c.Kind and returns the candidate
// with its terminal decision. Batch-level stop conditions are returned as
// *HaltError; ErrUnreadableFile and context errors are returned as is.
func (r *Router) Route(ctx context.Context, c m.Candidate) (m.Candidate, error) {
	slog.Info("Routing file", "index", c.Index, "path", c.Path, "kind", c.Kind.String(), "mime", c.MIME)

	switch c.Kind {
	case m.KindCSV:
		return r.acceptTabular(ctx, c, m.Delimiter{})
	case m.KindSpreadsheet:
		return r.acceptSpreadsheet(ctx, c)
	case m.KindSQL:
		if r.cfg.ParseSQL {
			return c.Decide(m.Skipped, "extracted during sql preprocessing"), nil
		}

		return r.gateDirect(ctx, c)
	case m.KindJSON:
		return r.gateDirect(ctx, c)
	case m.KindArchive:
		slog.Error("Archive found in batch", "path", c.Path, "mime", c.MIME)
		return halt(c, m.Rejected, ErrArchiveKind)
	default:
		// other and unknown kinds go through text extraction
		return r.gate(c, r.scanner.Extracted(ctx, c.Path))
	}
}

func (r *Router) gateDirect(ctx context.Context, c m.Candidate) (m.Candidate, error) {
	count, err := r.scanner.Direct(ctx, c.Path)
	if err != nil {
		return c, err
	}

	return r.gate(c, count)
}

// gate rejects low-signal files and halts on files with signal that have no
// normalization path.
func (r *Router) gate(c m.Candidate, count int) (m.Candidate, error) {
	c.Signal = count

	if count < r.scanner.Threshold() {
		slog.Info("Rejecting file without signal", "path", c.Path, "kind", c.Kind.String(), "signal", count)
		return c.Decide(m.Rejected, ErrInsufficientSignal.Error()), nil
	}

	slog.Error("File has signal but cannot be normalized", "path", c.Path, "kind", c.Kind.String(), "signal", count)

	return halt(c, m.Skipped, fmt.Errorf("%w: %s has %d contacts", ErrUnhandleableSignal, c.Kind, count))
}

// acceptTabular runs the csv acceptance path on c.Path. A zero fixed
// delimiter means the delimiter is sniffed.
func (r *Router) acceptTabular(ctx context.Context, c m.Candidate, fixed m.Delimiter) (m.Candidate, error) {
	link, count, d, err := r.linkTabular(ctx, c.Index, c.Path, fixed)
	c.Signal = count
	c.Delimiter = d

	if err != nil {
		return r.failTabular(c, err)
	}

	c.Links = append(c.Links, link)

	return c.Decide(m.Accepted, ""), nil
}

// linkTabular scans, sniffs and links one delimited file.
func (r *Router) linkTabular(ctx context.Context, index int, path m.Path, fixed m.Delimiter) (m.Path, int, m.Delimiter, error) {
	count, err := r.scanner.Direct(ctx, path)
	if err != nil {
		return "", 0, m.Delimiter{}, err
	}

	if count < r.scanner.Threshold() {
		return "", count, m.Delimiter{}, fmt.Errorf("%w: %d of %d", ErrInsufficientSignal, count, r.scanner.Threshold())
	}

	d := fixed
	if d.IsZero() {
		var ok bool

		d, ok, err = r.sniffer.Sniff(ctx, path)
		if err != nil {
			return "", count, m.Delimiter{}, err
		}

		if !ok {
			return "", count, m.Delimiter{}, ErrUndetectedDelimiter
		}
	}

	slog.Info("File delimiter detected", "path", path, "delimiter", d.Name)

	link, err := r.buckets.Link(ctx, d, index, path)
	if err != nil {
		return "", count, d, err
	}

	return link, count, d, nil
}

// failTabular turns a failed acceptance into a decision. Low signal is a
// plain rejection when sparse tabular files are tolerated; everything else
// in the acceptance path halts the batch.
func (r *Router) failTabular(c m.Candidate, err error) (m.Candidate, error) {
	switch {
	case isPassThrough(err):
		return c, err
	case r.cfg.TolerateSparseTabular && isInsufficientSignal(err):
		slog.Info("Rejecting sparse tabular file", "path", c.Path, "signal", c.Signal)
		return c.Decide(m.Rejected, err.Error()), nil
	default:
		slog.Error("Unable to accept tabular file", "path", c.Path, "error", err)
		return halt(c, m.Rejected, err)
	}
}

func (r *Router) acceptSpreadsheet(ctx context.Context, c m.Candidate) (m.Candidate, error) {
	c.Delimiter = r.comma

	for derived, err := range r.normalizer.Sheets(ctx, r.root, c) {
		if err != nil {
			return r.failSpreadsheet(ctx, c, err)
		}

		link, count, _, err := r.linkTabular(ctx, c.Index, derived, r.comma)
		c.Signal += count

		if err != nil {
			slog.Error("Aborting spreadsheet on derived sheet", "path", c.Path, "sheet", derived, "error", err)
			return r.failSpreadsheet(ctx, c, err)
		}

		c.Links = append(c.Links, link)
	}

	if len(c.Links) == 0 {
		return r.failTabular(c, fmt.Errorf("%w: workbook has no sheets", ErrSpreadsheet))
	}

	return c.Decide(m.Accepted, ""), nil
}

// failSpreadsheet withdraws the links of sheets accepted before the failure.
func (r *Router) failSpreadsheet(ctx context.Context, c m.Candidate, err error) (m.Candidate, error) {
	if unlinkErr := r.buckets.Unlink(ctx, c.Links...); unlinkErr != nil {
		return c, fmt.Errorf("withdraw sheets of %s: %w", c.Path, unlinkErr)
	}

	c.Links = nil

	return r.failTabular(c, err)
}
