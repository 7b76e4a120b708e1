package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
)

// Supabase is a minimal PostgREST client for a pgvector-backed chunk table.
// Rows are inserted through /rest/v1/<table>; similarity search goes through
// the /rest/v1/rpc/<match_fn> function, which ranks by cosine distance on
// the server side.
type Supabase struct {
	baseURL  string
	key      string
	table    string
	matchFn  string
	embedder Embedder
	client   *http.Client
}

// NewSupabase builds a Supabase store adapter. The embedder vectorizes chunk
// texts on Add and the query text on Search.
func NewSupabase(cfg config.SupabaseConfig, embedder Embedder) *Supabase {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Supabase{
		baseURL:  cfg.URL,
		key:      cfg.Key,
		table:    cfg.Table,
		matchFn:  cfg.MatchFn,
		embedder: embedder,
		client:   &http.Client{Timeout: timeout},
	}
}

// chunkRow is the PostgREST wire shape of one stored chunk.
type chunkRow struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Ordinal    int       `json:"ordinal"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
}

// Add embeds each chunk text and inserts the rows in one request, preserving
// the caller's ordering through the ordinal column. Chunks that already
// carry an embedding are not re-embedded.
func (s *Supabase) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	rows := make([]chunkRow, 0, len(chunks))
	for _, ch := range chunks {
		vec := ch.Embedding
		if len(vec) == 0 {
			v, err := s.embedder.Embed(ctx, ch.Text)
			if err != nil {
				return fmt.Errorf("embedding chunk %d of %s: %w", ch.Ordinal, ch.DocumentID, err)
			}
			vec = v
		}
		rows = append(rows, chunkRow{
			ID:         ch.ID,
			DocumentID: ch.DocumentID,
			Ordinal:    ch.Ordinal,
			Content:    ch.Text,
			Embedding:  vec,
		})
	}

	body, _ := json.Marshal(rows)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building insert request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("inserting chunks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("chunk insert returned %s", resp.Status)
	}
	return nil
}

// Search embeds the query and calls the match function. Ranking and the
// similarity metric belong to the store; results are returned in the order
// received.
func (s *Supabase) Search(ctx context.Context, query string, k int) ([]Chunk, error) {
	if k <= 0 {
		k = 4
	}
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	body, _ := json.Marshal(map[string]any{
		"query_embedding": vec,
		"match_count":     k,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rest/v1/rpc/%s", s.baseURL, s.matchFn), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("chunk search returned %s", resp.Status)
	}

	var rows []struct {
		ID         string  `json:"id"`
		DocumentID string  `json:"document_id"`
		Ordinal    int     `json:"ordinal"`
		Content    string  `json:"content"`
		Similarity float64 `json:"similarity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	out := make([]Chunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, Chunk{
			ID:         r.ID,
			DocumentID: r.DocumentID,
			Ordinal:    r.Ordinal,
			Text:       r.Content,
		})
	}
	return out, nil
}

func (s *Supabase) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.key != "" {
		req.Header.Set("apikey", s.key)
		req.Header.Set("Authorization", "Bearer "+s.key)
	}
}
