package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
)

func TestSendText_PostsToConfiguredInstance(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewEvolutionClient(config.EvolutionConfig{
		URL:      srv.URL,
		APIKey:   "evo-key",
		Instance: "main",
	})
	if err := c.SendText(context.Background(), "5511999999999", "hello"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if gotPath != "/message/sendText/main" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "evo-key" {
		t.Fatalf("apikey = %q", gotKey)
	}
	if gotBody["number"] != "5511999999999" || gotBody["text"] != "hello" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestSendTextVia_OverridesInstance(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer srv.Close()

	c := NewEvolutionClient(config.EvolutionConfig{URL: srv.URL, Instance: "main"})
	if err := c.SendTextVia(context.Background(), "secondary", "123", "hi"); err != nil {
		t.Fatalf("SendTextVia: %v", err)
	}
	if gotPath != "/message/sendText/secondary" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestSendText_GatewayErrorIsSentinel(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewEvolutionClient(config.EvolutionConfig{URL: srv.URL, Instance: "main"})
	err := c.SendText(context.Background(), "123", "hi")
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("err = %v; want ErrDeliveryFailed", err)
	}
	if calls != 1 {
		t.Fatalf("attempts = %d; want 1", calls)
	}
}
