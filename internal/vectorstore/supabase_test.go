package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
)

type staticEmbedder struct {
	vec   []float32
	texts []string
}

func (e *staticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.texts = append(e.texts, text)
	return e.vec, nil
}

func newSupabaseUnderTest(t *testing.T, handler http.HandlerFunc) (*Supabase, *staticEmbedder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	emb := &staticEmbedder{vec: []float32{1, 0, 0}}
	s := NewSupabase(config.SupabaseConfig{
		URL:     srv.URL,
		Key:     "service-key",
		Table:   "document_chunks",
		MatchFn: "match_documents",
	}, emb)
	return s, emb
}

func TestSupabaseAdd_InsertsRowsWithEmbeddings(t *testing.T) {
	var gotPath, gotKey, gotPrefer string
	var rows []map[string]any

	s, emb := newSupabaseUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotPrefer = r.Header.Get("Prefer")
		_ = json.NewDecoder(r.Body).Decode(&rows)
		w.WriteHeader(http.StatusCreated)
	})

	err := s.Add(context.Background(), []Chunk{
		{ID: "doc:0", DocumentID: "doc", Ordinal: 0, Text: "first"},
		{ID: "doc:1", DocumentID: "doc", Ordinal: 1, Text: "second"},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if gotPath != "/rest/v1/document_chunks" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "service-key" || gotPrefer != "return=minimal" {
		t.Fatalf("headers: apikey=%q prefer=%q", gotKey, gotPrefer)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0]["content"] != "first" || rows[1]["ordinal"].(float64) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if len(emb.texts) != 2 {
		t.Fatalf("embedder called %d times; want 2", len(emb.texts))
	}
}

func TestSupabaseAdd_SkipsAlreadyEmbeddedChunks(t *testing.T) {
	s, emb := newSupabaseUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	err := s.Add(context.Background(), []Chunk{
		{ID: "doc:0", Text: "pre-embedded", Embedding: []float32{0.5, 0.5}},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(emb.texts) != 0 {
		t.Fatalf("embedder should not run for chunks that carry a vector")
	}
}

func TestSupabaseAdd_EmptySliceIsNoop(t *testing.T) {
	called := false
	s, _ := newSupabaseUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	if err := s.Add(context.Background(), nil); err != nil {
		t.Fatalf("Add(nil): %v", err)
	}
	if called {
		t.Fatalf("no request expected for empty input")
	}
}

func TestSupabaseSearch_CallsMatchFunctionAndKeepsOrder(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	s, emb := newSupabaseUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "a:1", "document_id": "a", "ordinal": 1, "content": "best match", "similarity": 0.92},
			{"id": "b:0", "document_id": "b", "ordinal": 0, "content": "second", "similarity": 0.81},
		})
	})

	chunks, err := s.Search(context.Background(), "refund policy", 4)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/rest/v1/rpc/match_documents" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["match_count"].(float64) != 4 {
		t.Fatalf("match_count = %v", gotBody["match_count"])
	}
	if len(emb.texts) != 1 || emb.texts[0] != "refund policy" {
		t.Fatalf("query embedding calls = %v", emb.texts)
	}
	if len(chunks) != 2 || chunks[0].Text != "best match" || chunks[1].ID != "b:0" {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestSupabaseSearch_GatewayError(t *testing.T) {
	s, _ := newSupabaseUnderTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := s.Search(context.Background(), "q", 4); err == nil {
		t.Fatalf("expected error on 503")
	}
}
