// Package vectorstore adapts the external hosted vector database and the
// embedding service behind small Go interfaces. The store owns similarity
// search entirely: this package only shuttles chunks and vectors over REST
// and treats result ordering as opaque.
//
// Every call is attempted exactly once; failures surface to the caller
// without retries or queuing.
package vectorstore

import "context"

// Chunk is a bounded slice of a source document stored for retrieval.
// Embedding dimensionality is fixed by the configured embedding model;
// mixing models across ingestions is a configuration error that this
// package does not detect.
type Chunk struct {
	ID         string
	DocumentID string
	Ordinal    int
	Text       string
	Embedding  []float32
}

// Embedder converts text into a fixed-length vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store persists document chunks and answers similarity queries.
type Store interface {
	// Add embeds and persists the ordered chunk sequence of one document.
	Add(ctx context.Context, chunks []Chunk) error

	// Search returns up to k chunks most similar to the query, in the
	// order ranked by the external store.
	Search(ctx context.Context, query string, k int) ([]Chunk, error)
}
