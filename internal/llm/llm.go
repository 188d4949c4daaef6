package llm

import (
	"context"

	"studyhub-backend/internal/study"
)

// Operation names one generation round trip.
type Operation string

const (
	OpAnalyze    Operation = "analyze"
	OpSummarize  Operation = "summarize"
	OpFlashcards Operation = "flashcards"
	OpQuiz       Operation = "quiz"
)

// Generator produces study artifacts. Each method is a single request/response
// round trip; the pipeline sequences them.
type Generator interface {
	// Ready returns ErrNotConfigured when no credential is present.
	Ready() error
	Analyze(ctx context.Context, text string) (study.Analysis, error)
	Summarize(ctx context.Context, analysis study.Analysis) (study.Summary, error)
	MakeFlashcards(ctx context.Context, analysis study.Analysis, count int) ([]study.Flashcard, error)
	MakeQuiz(ctx context.Context, analysis study.Analysis, count int) ([]study.QuizQuestion, error)
}

// Message is one role-tagged instruction.
type Message struct {
	Role    string
	Content string
}

// Request is a provider-neutral completion request. The response must be a
// single JSON object.
type Request struct {
	Operation Operation
	Messages  []Message
	Model     string
}

// Completer performs one completion against a text-generation provider.
type Completer interface {
	Ready() error
	Complete(ctx context.Context, req Request) (string, error)
}

type modelKey struct{}

// WithModel selects the model for generation calls made with ctx.
func WithModel(ctx context.Context, model string) context.Context {
	if model == "" {
		return ctx
	}
	return context.WithValue(ctx, modelKey{}, model)
}

// ModelFromContext returns the model selected with WithModel, if any.
func ModelFromContext(ctx context.Context) (string, bool) {
	model, ok := ctx.Value(modelKey{}).(string)
	return model, ok && model != ""
}
