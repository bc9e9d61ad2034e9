package adapter

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "glide.dev/pkg/glide/internal/model"
)

func TestLocalTextExtractor_Extract(t *testing.T) {
	extractor := NewLocalTextExtractor()
	ctx := context.Background()

	t.Run("plain text is returned raw", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		writeTestFile(t, path, "contact: jane@example.com\n")

		text, err := extractor.Extract(ctx, m.Path(path))
		require.NoError(t, err)
		assert.Equal(t, "contact: jane@example.com\n", text)
	})

	t.Run("binary keeps printable runs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blob.bin")
		data := append([]byte{0x00, 0x01, 0x02, 0x03}, []byte("bob@example.org")...)
		data = append(data, 0x00, 'a', 'b', 0x00)
		writeTestBytes(t, path, data)

		text, err := extractor.Extract(ctx, m.Path(path))
		require.NoError(t, err)
		assert.Contains(t, text, "bob@example.org")
		assert.NotContains(t, text, "ab\n")
	})

	t.Run("zip package markup parts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "doc.zip")
		writeZip(t, path, map[string]string{
			"content.xml":   `<doc><cell>alice@example.com</cell><cell>bob@example.com</cell></doc>`,
			"chapter.xhtml": `<html><body><p>carol@example.com</p></body></html>`,
			"image.png":     "not markup",
		})

		text, err := extractor.Extract(ctx, m.Path(path))
		require.NoError(t, err)
		assert.Contains(t, text, "alice@example.com")
		assert.Contains(t, text, "bob@example.com")
		assert.NotContains(t, text, "alice@example.combob")
		assert.Contains(t, text, "carol@example.com")
		assert.NotContains(t, text, "not markup")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := extractor.Extract(ctx, m.Path(filepath.Join(t.TempDir(), "missing")))
		require.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := extractor.Extract(cctx, "whatever")
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte("BT\n/F1 12 Tf\n(Hello) Tj\nT*\n[(dave) -120 (@example.com)] TJ\n(esc\\(aped\\) \\101) Tj\nET\n")

	text := textFromContentStream(stream)

	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "dave@example.com")
	assert.Contains(t, text, "esc(aped) A")
}

func writeZip(t *testing.T, path string, parts map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}
