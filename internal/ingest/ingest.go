// Package ingest implements the document ingestion path of the knowledge
// base: extract text from an uploaded file, split it into overlapping
// chunks, forward the ordered chunk sequence to the vector store, and record
// the document so the admin panel can list it.
//
// Only .pdf and .txt uploads are accepted. Extraction of PDFs goes through a
// temporary file which is removed on every exit path.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/repo"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/vectorstore"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than .pdf/.txt.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtractionFailed is returned when no text can be extracted from an
	// accepted file (corrupted or encrypted PDF, empty content).
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Chunks forwards extracted chunks to the knowledge store.
type Chunks interface {
	Add(ctx context.Context, chunks []vectorstore.Chunk) error
}

// Ingestor turns uploaded files into stored, retrievable chunks.
type Ingestor struct {
	Store Chunks
	DB    *gorm.DB

	// Window geometry; defaults applied when zero.
	ChunkSize    int
	ChunkOverlap int
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Ingest extracts text from the uploaded file, chunks it, persists the
// chunks, and records the document. It returns the number of chunks stored.
//
// Errors:
//   - ErrUnsupportedFormat for extensions other than .pdf and .txt; nothing
//     is written anywhere in that case.
//   - ErrExtractionFailed (wrapped with the cause) when the file yields no
//     text.
//   - Store/DB errors are propagated as-is.
func (ing *Ingestor) Ingest(ctx context.Context, filename string, data []byte) (int, error) {
	text, err := extractText(filename, data)
	if err != nil {
		return 0, err
	}

	size := ing.ChunkSize
	if size <= 0 {
		size = defaultChunkSize
	}
	overlap := ing.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	docID := uuid.NewString()
	chunks := splitChunks(docID, text, size, overlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: no usable text in %s", ErrExtractionFailed, filename)
	}

	if err := ing.Store.Add(ctx, chunks); err != nil {
		return 0, err
	}

	if ing.DB != nil {
		if _, err := repo.CreateDocument(ctx, ing.DB, docID, filename, displayTitle(filename), len(chunks)); err != nil {
			return 0, err
		}
	}
	return len(chunks), nil
}

// displayTitle derives a human-readable title from the uploaded filename:
// extension stripped, separators spaced, title-cased.
func displayTitle(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return filename
	}
	return cases.Title(language.English).String(base)
}
