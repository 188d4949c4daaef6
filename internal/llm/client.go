package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"studyhub-backend/internal/shared/metrics"
	"studyhub-backend/internal/study"
)

// Client implements Generator on top of a Completer: it renders prompts,
// decodes the JSON reply and enforces each operation's response schema.
type Client struct {
	completer Completer
}

// NewClient wraps a provider completer.
func NewClient(completer Completer) *Client {
	return &Client{completer: completer}
}

// Ready reports whether the provider has a credential.
func (c *Client) Ready() error {
	if c == nil || c.completer == nil {
		return ErrNotConfigured
	}
	return c.completer.Ready()
}

// Analyze extracts the pedagogical structure of text.
func (c *Client) Analyze(ctx context.Context, text string) (study.Analysis, error) {
	var out study.Analysis
	raw, err := c.call(ctx, OpAnalyze, PromptVars{Content: text})
	if err != nil {
		return out, err
	}
	if err := decodeStrict(raw, &out); err != nil {
		return out, c.schemaFail(OpAnalyze, "invalid JSON", err)
	}
	if err := out.Validate(); err != nil {
		return out, c.schemaFail(OpAnalyze, "missing required fields", err)
	}
	return out, nil
}

// Summarize writes a summary of an analysis.
func (c *Client) Summarize(ctx context.Context, analysis study.Analysis) (study.Summary, error) {
	var out study.Summary
	raw, err := c.callWithAnalysis(ctx, OpSummarize, analysis, 0)
	if err != nil {
		return out, err
	}
	if err := decodeStrict(raw, &out); err != nil {
		return out, c.schemaFail(OpSummarize, "invalid JSON", err)
	}
	if err := out.Validate(); err != nil {
		return out, c.schemaFail(OpSummarize, "missing required fields", err)
	}
	return out, nil
}

type flashcardsEnvelope struct {
	Flashcards *[]study.Flashcard `json:"flashcards"`
}

// MakeFlashcards generates up to count flashcards.
func (c *Client) MakeFlashcards(ctx context.Context, analysis study.Analysis, count int) ([]study.Flashcard, error) {
	raw, err := c.callWithAnalysis(ctx, OpFlashcards, analysis, count)
	if err != nil {
		return nil, err
	}
	var env flashcardsEnvelope
	if err := decodeStrict(raw, &env); err != nil {
		return nil, c.schemaFail(OpFlashcards, "invalid JSON", err)
	}
	if env.Flashcards == nil {
		return nil, c.schemaFail(OpFlashcards, "missing flashcards", nil)
	}
	cards := *env.Flashcards
	for i, card := range cards {
		if err := card.Validate(); err != nil {
			return nil, c.schemaFail(OpFlashcards, fmt.Sprintf("flashcards[%d]", i), err)
		}
	}
	if count > 0 && len(cards) > count {
		cards = cards[:count]
	}
	return cards, nil
}

type quizEnvelope struct {
	Questions *[]study.QuizQuestion `json:"questions"`
}

// MakeQuiz generates up to count multiple-choice questions.
func (c *Client) MakeQuiz(ctx context.Context, analysis study.Analysis, count int) ([]study.QuizQuestion, error) {
	raw, err := c.callWithAnalysis(ctx, OpQuiz, analysis, count)
	if err != nil {
		return nil, err
	}
	var env quizEnvelope
	if err := decodeStrict(raw, &env); err != nil {
		return nil, c.schemaFail(OpQuiz, "invalid JSON", err)
	}
	if env.Questions == nil {
		return nil, c.schemaFail(OpQuiz, "missing questions", nil)
	}
	questions := *env.Questions
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, c.schemaFail(OpQuiz, fmt.Sprintf("questions[%d]", i), err)
		}
	}
	if count > 0 && len(questions) > count {
		questions = questions[:count]
	}
	return questions, nil
}

func (c *Client) callWithAnalysis(ctx context.Context, op Operation, analysis study.Analysis, count int) (string, error) {
	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode analysis: %w", err)
	}
	return c.call(ctx, op, PromptVars{Analysis: string(encoded), Count: count})
}

func (c *Client) call(ctx context.Context, op Operation, vars PromptVars) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	messages, err := BuildMessages(op, vars)
	if err != nil {
		return "", err
	}
	req := Request{Operation: op, Messages: messages}
	if model, ok := ModelFromContext(ctx); ok {
		req.Model = model
	}

	raw, err := c.completer.Complete(ctx, req)
	if err != nil {
		metrics.IncGenerationCall(string(op), outcomeOf(err))
		return "", err
	}
	metrics.IncGenerationCall(string(op), "ok")
	return raw, nil
}

func (c *Client) schemaFail(op Operation, reason string, err error) error {
	metrics.IncGenerationCall(string(op), "schema_error")
	return &SchemaError{Operation: op, Reason: reason, Err: err}
}

// decodeStrict accepts exactly one JSON object and nothing around it.
func decodeStrict(raw string, v any) error {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return errors.New("response is not a JSON object")
	}
	return json.Unmarshal([]byte(trimmed), v)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case IsAPIError(err):
		return "api_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

var _ Generator = (*Client)(nil)
