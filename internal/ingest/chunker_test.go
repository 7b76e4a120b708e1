package ingest

import (
	"strings"
	"testing"
)

func TestSplitChunks_ShortTextIsOneChunk(t *testing.T) {
	chunks := splitChunks("d", "a short document", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d; want 1", len(chunks))
	}
	if chunks[0].Text != "a short document" {
		t.Fatalf("text = %q", chunks[0].Text)
	}
	if chunks[0].Ordinal != 0 || chunks[0].ID != "d:0" {
		t.Fatalf("ordinal/id = %d/%q", chunks[0].Ordinal, chunks[0].ID)
	}
}

func TestSplitChunks_EmptyText(t *testing.T) {
	if got := splitChunks("d", "   \n ", 1000, 200); got != nil {
		t.Fatalf("expected nil for blank text, got %v", got)
	}
}

func TestSplitChunks_BreaksOnWordBoundaries(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 20)
	chunks := splitChunks("d", text, 50, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if strings.HasPrefix(c.Text, " ") || strings.HasSuffix(c.Text, " ") {
			t.Fatalf("chunk %d not trimmed: %q", i, c.Text)
		}
		words := strings.Fields(c.Text)
		for _, w := range words {
			switch w {
			case "alpha", "beta", "gamma", "delta":
			default:
				t.Fatalf("chunk %d split a word: %q in %q", i, w, c.Text)
			}
		}
	}
}

func TestSplitChunks_ZeroOverlapStillAdvances(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight ", 6)
	chunks := splitChunks("d", text, 60, 0)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Text == chunks[i-1].Text {
			t.Fatalf("chunk %d repeats its predecessor", i)
		}
	}
}

func TestSplitChunks_CoversWholeText(t *testing.T) {
	text := strings.Repeat("word ", 200)
	chunks := splitChunks("d", text, 80, 20)

	var total int
	for _, c := range chunks {
		total += len(strings.Fields(c.Text))
	}
	// Overlap duplicates words, so coverage means at least every word once.
	if total < 200 {
		t.Fatalf("chunks cover %d words; want >= 200", total)
	}
}
