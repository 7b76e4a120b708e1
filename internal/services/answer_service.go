// Package services – AnswerService
//
// AnswerService implements the retrieval-augmented answer path: embed the
// question, pull the nearest chunks from the knowledge store, assemble a
// grounded prompt, and ask the language model for a completion. The model
// name is read from the live settings snapshot at call time, so an admin
// model change applies to the next question without a restart.
//
// Observability: Answer and its retrieval step are OpenTelemetry-instrumented.

package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/vectorstore"
)

// Completer produces a completion for a prompt using the named model.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// answerPrompt is the grounded prompt template. The model is told to answer
// only from the retrieved context and to say so when the context does not
// cover the question.
const answerPrompt = `You are a helpful assistant. Answer the question using only the context below.
If the context does not contain the answer, say you do not know based on the available documents.

Context:
%s

Question: %s

Answer:`

// AnswerService turns a question into a grounded answer.
type AnswerService struct {
	Store    vectorstore.Store
	LLM      Completer
	Settings *SettingsService

	// TopK is the number of chunks retrieved per question; defaults to 4.
	TopK int
}

// Answer retrieves context for the question and generates a reply. Errors
// from the store are wrapped in ErrRetrieval and errors from the model in
// ErrGeneration so callers can classify failures without inspecting causes.
func (s *AnswerService) Answer(ctx context.Context, question string) (string, error) {
	tr := otel.Tracer("services/AnswerService")
	ctx, span := tr.Start(ctx, "Answer",
		trace.WithAttributes(attribute.Int("rag.top_k", s.topK())),
	)
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuery
	}

	chunks, err := s.retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	prompt := fmt.Sprintf(answerPrompt, strings.Join(parts, "\n\n"), question)

	model := s.Settings.Current().Model
	span.SetAttributes(attribute.String("llm.model", model))

	// The completion is returned verbatim, no trimming or post-processing.
	answer, err := s.LLM.Complete(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

func (s *AnswerService) retrieve(ctx context.Context, question string) ([]vectorstore.Chunk, error) {
	tr := otel.Tracer("services/AnswerService")
	ctx, span := tr.Start(ctx, "retrieve")
	defer span.End()

	chunks, err := s.Store.Search(ctx, question, s.topK())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("rag.chunks", len(chunks)))
	return chunks, nil
}

func (s *AnswerService) topK() int {
	if s.TopK <= 0 {
		return 4
	}
	return s.TopK
}
