package adapter

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"

	m "glide.dev/pkg/glide/internal/model"
)

// ErrNoText is returned when a document yields no text at all.
var ErrNoText = errors.New("no text content found")

// minPrintableRun is the shortest byte run kept when reducing binary input.
const minPrintableRun = 4

// TextExtractor turns an arbitrary document into best-effort plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path m.Path) (string, error)
}

// LocalTextExtractor dispatches on the detected MIME type: PDF content
// streams, zip-packaged office and ebook documents, raw text, and printable
// runs for everything else.
type LocalTextExtractor struct {
	markdown *converter.Converter
	policy   *bluemonday.Policy
}

// NewLocalTextExtractor constructs a LocalTextExtractor.
func NewLocalTextExtractor() *LocalTextExtractor {
	return &LocalTextExtractor{
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		policy: bluemonday.StrictPolicy(),
	}
}

// Extract implements TextExtractor.
func (e *LocalTextExtractor) Extract(ctx context.Context, path m.Path) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mime, err := mimetype.DetectFile(string(path))
	if err != nil {
		return "", fmt.Errorf("detect %s: %w", path, err)
	}

	slog.Debug("Extracting text", "path", path, "mime", mime.String())

	switch {
	case mime.Is("application/pdf"):
		return extractPDF(string(path))
	case inFamily(mime, "application/zip"):
		return e.extractPackage(ctx, string(path))
	case inFamily(mime, "text/plain"):
		return readLatin1(string(path))
	default:
		return extractPrintable(string(path))
	}
}

func inFamily(mime *mimetype.MIME, label string) bool {
	for cur := mime; cur != nil; cur = cur.Parent() {
		if cur.Is(label) {
			return true
		}
	}

	return false
}

func readLatin1(path string) (string, error) {
	// #nosec G304 - extractor input is a batch file
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

func extractPDF(path string) (string, error) {
	// #nosec G304 - extractor input is a batch file
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}

	defer func() { _ = f.Close() }()

	pdf, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder

	for page := 1; page <= pdf.PageCount; page++ {
		r, err := pdfcpu.ExtractPageContent(pdf, page)
		if err != nil || r == nil {
			continue
		}

		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}

		if text := textFromContentStream(data); text != "" {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}

			sb.WriteString(text)
		}
	}

	if sb.Len() == 0 {
		return "", ErrNoText
	}

	return sb.String(), nil
}

var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromContentStream collects the string operands of the text showing
// operators (Tj, TJ, ' and ").
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")),
			bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte(`"`)):
			for _, match := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.WriteString(unescapePDF(match[1]))
			}

			sb.WriteByte(' ')
		case bytes.Equal(line, []byte("T*")), bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			sb.WriteByte('\n')
		}
	}

	return strings.TrimSpace(sb.String())
}

func unescapePDF(raw []byte) string {
	var sb strings.Builder

	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 == len(raw) {
			sb.WriteByte(raw[i])
			continue
		}

		i++

		switch c := raw[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			if c < '0' || c > '7' {
				sb.WriteByte(c)
				continue
			}

			val := int(c - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}

			sb.WriteByte(byte(val))
		}
	}

	return sb.String()
}

// extractPackage reads the markup parts of a zip-packaged document (docx,
// xlsx, pptx, odt, epub). XHTML parts go through the markdown converter, XML
// parts are stripped of all tags.
func (e *LocalTextExtractor) extractPackage(ctx context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open package: %w", err)
	}

	defer func() { _ = zr.Close() }()

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if isMarkupPart(f.Name) {
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var sb strings.Builder

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := e.readPart(f)
		if err != nil {
			slog.Debug("Skipping unreadable document part", "path", path, "part", f.Name, "error", err)
			continue
		}

		if text = strings.TrimSpace(text); text != "" {
			sb.WriteString(text)
			sb.WriteByte('\n')
		}
	}

	if sb.Len() == 0 {
		return "", ErrNoText
	}

	return sb.String(), nil
}

func isMarkupPart(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".xml", ".xhtml", ".html", ".htm":
		return true
	default:
		return false
	}
}

func (e *LocalTextExtractor) readPart(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}

	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(path.Ext(f.Name), ".xml") {
		// Tags are replaced by nothing, so separate adjacent cells first.
		spaced := strings.ReplaceAll(string(raw), "<", " <")
		return e.policy.Sanitize(spaced), nil
	}

	return e.markdown.ConvertString(string(raw))
}

// extractPrintable keeps runs of printable characters, the way strings(1)
// does for binary files.
func extractPrintable(path string) (string, error) {
	text, err := readLatin1(path)
	if err != nil {
		return "", err
	}

	var (
		sb  strings.Builder
		run []rune
	)

	flush := func() {
		if len(run) >= minPrintableRun {
			sb.WriteString(string(run))
			sb.WriteByte('\n')
		}

		run = run[:0]
	}

	for _, r := range text {
		if unicode.IsPrint(r) {
			run = append(run, r)
			continue
		}

		flush()
	}

	flush()

	if sb.Len() == 0 {
		return "", ErrNoText
	}

	return sb.String(), nil
}
