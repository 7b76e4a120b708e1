package ingest

import (
	"fmt"
	"strings"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/vectorstore"
)

// splitChunks cuts text into fixed-size windows with the given overlap.
// When a window would split a word, the cut point moves back to the last
// space inside the window so chunks end on word boundaries. Ordinals are
// zero-based and chunk IDs embed them so rows stay ordered in the store.
func splitChunks(docID, text string, size, overlap int) []vectorstore.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []vectorstore.Chunk
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else if idx := strings.LastIndexByte(text[start:end], ' '); idx > 0 {
			end = start + idx
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			ord := len(chunks)
			chunks = append(chunks, vectorstore.Chunk{
				ID:         fmt.Sprintf("%s:%d", docID, ord),
				DocumentID: docID,
				Ordinal:    ord,
				Text:       piece,
			})
		}
		if end == len(text) {
			break
		}

		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}
