package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studyhub-backend/internal/study"
)

const analysisJSON = `{
  "subject": "Thermodynamics",
  "level": "intermediate",
  "keyConcepts": [{"name": "Entropy", "definition": "Measure of disorder", "importance": "high"}],
  "structure": [{"title": "Laws", "summary": "The four laws", "concepts": ["Entropy"]}],
  "formulas": [{"name": "Clausius", "formula": "dS = dQ/T", "description": "Entropy change"}]
}`

func sampleAnalysis() study.Analysis {
	return study.Analysis{
		Subject:     "Thermodynamics",
		Level:       study.LevelIntermediate,
		KeyConcepts: []study.KeyConcept{{Name: "Entropy", Definition: "Measure of disorder", Importance: study.ImportanceHigh}},
	}
}

func TestAnalyzeDecodesResponse(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{{raw: analysisJSON}}}
	client := NewClient(fake)

	got, err := client.Analyze(WithModel(context.Background(), "gpt-3.5-turbo"), "Entropy always increases.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got.Subject != "Thermodynamics" || len(got.Formulas) != 1 || got.Formulas[0].Formula != "dS = dQ/T" {
		t.Fatalf("unexpected analysis %+v", got)
	}
	req := fake.requests[0]
	if req.Operation != OpAnalyze || req.Model != "gpt-3.5-turbo" {
		t.Fatalf("unexpected request %+v", req)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[1].Content, "Entropy always increases.") {
		t.Fatalf("user prompt missing document text")
	}
}

func TestAnalyzeSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "prose around json", raw: "Here you go: " + analysisJSON},
		{name: "truncated", raw: `{"subject": "Physics"`},
		{name: "missing level", raw: `{"subject": "Physics", "keyConcepts": [{"name": "Force"}]}`},
		{name: "array instead of object", raw: `[]`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedCompleter{replies: []reply{{raw: tt.raw}}}
			_, err := NewClient(fake).Analyze(context.Background(), "text")
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if schemaErr.Operation != OpAnalyze {
				t.Fatalf("unexpected operation %q", schemaErr.Operation)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{{raw: `{"title":"Heat","overview":"o","sections":[{"title":"s","content":"c","keyPoints":["k"]}],"conclusion":"done"}`}}}
	got, err := NewClient(fake).Summarize(context.Background(), sampleAnalysis())
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got.Title != "Heat" || len(got.Sections) != 1 || got.Sections[0].KeyPoints[0] != "k" {
		t.Fatalf("unexpected summary %+v", got)
	}
	if !strings.Contains(fake.requests[0].Messages[1].Content, `"subject": "Thermodynamics"`) {
		t.Fatalf("summary prompt missing analysis JSON: %s", fake.requests[0].Messages[1].Content)
	}
}

func TestMakeFlashcardsCapsCount(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{{raw: `{"flashcards":[
		{"question":"Q1","answer":"A1","category":"definition","difficulty":"easy","concept":"Entropy"},
		{"question":"Q2","answer":"A2","category":"application","difficulty":"medium","concept":"Entropy"},
		{"question":"Q3","answer":"A3","category":"comparison","difficulty":"hard","concept":"Entropy"}
	]}`}}}
	cards, err := NewClient(fake).MakeFlashcards(context.Background(), sampleAnalysis(), 2)
	if err != nil {
		t.Fatalf("flashcards: %v", err)
	}
	if len(cards) != 2 || cards[1].Question != "Q2" {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if !strings.Contains(fake.requests[0].Messages[1].Content, "Generate 2 flashcards") {
		t.Fatalf("prompt missing count: %s", fake.requests[0].Messages[1].Content)
	}
}

func TestMakeFlashcardsRejectsEmptyAnswer(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{{raw: `{"flashcards":[{"question":"Q1","answer":""}]}`}}}
	if _, err := NewClient(fake).MakeFlashcards(context.Background(), sampleAnalysis(), 10); !IsSchemaError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestMakeQuiz(t *testing.T) {
	fake := &scriptedCompleter{replies: []reply{{raw: `{"questions":[{"question":"Q","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"C","explanation":"e","difficulty":"easy","category":"analysis"}]}`}}}
	qs, err := NewClient(fake).MakeQuiz(context.Background(), sampleAnalysis(), 10)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswer != "C" || qs[0].Options.C != "c" {
		t.Fatalf("unexpected quiz %+v", qs)
	}
}

func TestMakeQuizSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing questions key", raw: `{"quiz": []}`},
		{name: "three options", raw: `{"questions":[{"question":"Q","options":{"A":"a","B":"b","C":"c"},"correctAnswer":"A"}]}`},
		{name: "bad label", raw: `{"questions":[{"question":"Q","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"E"}]}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fake := &scriptedCompleter{replies: []reply{{raw: tt.raw}}}
			if _, err := NewClient(fake).MakeQuiz(context.Background(), sampleAnalysis(), 10); !IsSchemaError(err) {
				t.Fatalf("expected schema error, got %v", err)
			}
		})
	}
}

func TestNotConfiguredMakesNoCall(t *testing.T) {
	fake := &scriptedCompleter{ready: ErrNotConfigured}
	_, err := NewClient(fake).Analyze(context.Background(), "text")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if fake.calls() != 0 {
		t.Fatalf("expected no calls, got %d", fake.calls())
	}
	if err := NewClient(nil).Ready(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("nil completer should not be ready")
	}
}

func TestAPIErrorPropagatesUnchanged(t *testing.T) {
	apiErr := &APIError{Operation: OpSummarize, Status: 400, Message: "context length exceeded", Type: "invalid_request_error"}
	fake := &scriptedCompleter{replies: []reply{{err: apiErr}}}
	_, err := NewClient(fake).Summarize(context.Background(), sampleAnalysis())
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected original APIError, got %v", err)
	}
	if !strings.Contains(err.Error(), "context length exceeded (invalid_request_error)") {
		t.Fatalf("remote message missing from %q", err.Error())
	}
}
