package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractText returns the plain-text content of an uploaded file. The
// accepted formats are decided by extension, case-insensitively.
func extractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("%w: empty text file %s", ErrExtractionFailed, filename)
		}
		return text, nil
	case ".pdf":
		return extractPDF(filename, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// extractPDF writes the upload to a temporary file for the reader and
// removes it before returning, on every path.
func extractPDF(filename string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	f, reader, err := pdf.Open(tmpName)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrExtractionFailed, filename, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrExtractionFailed, filename, err)
	}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrExtractionFailed, filename, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text in %s", ErrExtractionFailed, filename)
	}
	return text, nil
}
