package domain

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding/charmap"

	"glide.dev/pkg/glide/internal/adapter"
	m "glide.dev/pkg/glide/internal/model"
)

// Signature labels with a fixed meaning for classification.
const (
	MIMEEmpty       = "application/x-empty"
	mimeText        = "text/plain"
	mimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS         = "application/vnd.ms-excel"
	mimeZip         = "application/zip"
	mime7z          = "application/x-7z-compressed"
	mimeRar         = "application/x-rar-compressed"
	mimeGzip        = "application/gzip"
	mimeTar         = "application/x-tar"
	jsonStartSource = `\{[\s\pL\pN_"']+:`
)

// Classifier derives a FileKind from the leading bytes of a file.
type Classifier struct {
	fs         adapter.SourceFSAdapter
	cfg        m.Config
	sqlMarkers *regexp.Regexp
	jsonStart  *regexp.Regexp
}

// NewClassifier creates a Classifier with patterns compiled from cfg.
func NewClassifier(fsAdapter adapter.SourceFSAdapter, cfg m.Config) *Classifier {
	cfg = cfg.Normalized()

	markers := make([]string, 0, len(cfg.SQLMarkers))
	for _, marker := range cfg.SQLMarkers {
		markers = append(markers, regexp.QuoteMeta(marker))
	}

	return &Classifier{
		fs:         fsAdapter,
		cfg:        cfg,
		sqlMarkers: regexp.MustCompile(`(?i)` + strings.Join(markers, "|")),
		jsonStart:  regexp.MustCompile(jsonStartSource),
	}
}

// Classify reads at most two prefixes of path and returns the signature label
// and refined kind. Read failures wrap ErrUnreadableFile.
func (c *Classifier) Classify(ctx context.Context, path m.Path) (string, m.FileKind, error) {
	head, err := c.fs.ReadPrefix(ctx, path, c.cfg.ClassifyPrefix)
	if err != nil {
		return "", m.KindUnknown, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	label, text := Signature(head)
	if !text {
		return label, KindOfSignature(label, head), nil
	}

	prefix, err := c.fs.ReadPrefix(ctx, path, c.cfg.TextPrefix)
	if err != nil {
		return "", m.KindUnknown, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	return label, c.KindOfText(prefix), nil
}

// KindOfText applies the text heuristics to a raw prefix: SQL dump markers
// first, then a JSON object start, csv otherwise.
func (c *Classifier) KindOfText(prefix []byte) m.FileKind {
	decoded := decodeLatin1(prefix)

	switch {
	case c.sqlMarkers.MatchString(decoded):
		return m.KindSQL
	case c.jsonStart.MatchString(decoded):
		return m.KindJSON
	default:
		return m.KindCSV
	}
}

// Signature returns the parameter-free MIME label of head and whether it
// belongs to the text family.
func Signature(head []byte) (string, bool) {
	if len(head) == 0 {
		return MIMEEmpty, false
	}

	detected := mimetype.Detect(head)

	label, _, _ := strings.Cut(detected.String(), ";")
	label = strings.TrimSpace(label)

	for cur := detected; cur != nil; cur = cur.Parent() {
		if cur.Is(mimeText) {
			return label, true
		}
	}

	return label, false
}

// KindOfSignature maps a non-text signature label to a FileKind. A generic
// zip whose local headers name workbook parts is treated as a spreadsheet.
// Legacy BIFF workbooks are not OOXML and go through text extraction.
func KindOfSignature(label string, head []byte) m.FileKind {
	switch label {
	case mimeXLSX:
		return m.KindSpreadsheet
	case mimeXLS:
		return m.KindOther
	case mimeZip:
		if bytes.Contains(head, []byte("xl/workbook.xml")) || bytes.Contains(head, []byte("xl/worksheets/")) {
			return m.KindSpreadsheet
		}

		return m.KindArchive
	case mime7z, mimeRar, mimeGzip, mimeTar:
		return m.KindArchive
	default:
		return m.KindOther
	}
}

func decodeLatin1(raw []byte) string {
	// ISO-8859-1 maps every byte to a rune, decoding cannot fail.
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded)
}
