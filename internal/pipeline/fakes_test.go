package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/study"
)

type fakeGenerator struct {
	mu         sync.Mutex
	notReady   bool
	calls      []string
	analyzeErr error
	quizErrOn  int // fail MakeQuiz on this analyze call number
	analyzeN   int
}

func (f *fakeGenerator) Ready() error {
	if f.notReady {
		return llm.ErrNotConfigured
	}
	return nil
}

func (f *fakeGenerator) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeGenerator) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGenerator) Analyze(ctx context.Context, text string) (study.Analysis, error) {
	f.record("analyze")
	if f.analyzeErr != nil {
		return study.Analysis{}, f.analyzeErr
	}
	f.mu.Lock()
	f.analyzeN++
	n := f.analyzeN
	f.mu.Unlock()
	return study.Analysis{
		Subject: fmt.Sprintf("Subject %d", n),
		Level:   study.LevelBeginner,
		KeyConcepts: []study.KeyConcept{
			{Name: "Shared", Definition: fmt.Sprintf("definition %d", n), Importance: study.ImportanceHigh},
			{Name: fmt.Sprintf("Concept %d", n), Definition: "own", Importance: study.ImportanceLow},
		},
		Structure: []study.Section{{Title: fmt.Sprintf("Section %d", n)}},
		Formulas:  []study.Formula{{Name: fmt.Sprintf("F%d", n), Formula: "x"}},
	}, nil
}

func (f *fakeGenerator) Summarize(ctx context.Context, a study.Analysis) (study.Summary, error) {
	f.record("summarize")
	return study.Summary{
		Title:    "Summary of " + a.Subject,
		Overview: "overview",
		Sections: []study.SummarySection{{Title: a.Subject, Content: "content"}},
	}, nil
}

func (f *fakeGenerator) MakeFlashcards(ctx context.Context, a study.Analysis, count int) ([]study.Flashcard, error) {
	f.record("flashcards")
	n := count
	if n > 3 {
		n = 3
	}
	cards := make([]study.Flashcard, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, study.Flashcard{Question: fmt.Sprintf("%s Q%d", a.Subject, i), Answer: "A"})
	}
	return cards, nil
}

func (f *fakeGenerator) MakeQuiz(ctx context.Context, a study.Analysis, count int) ([]study.QuizQuestion, error) {
	f.record("quiz")
	f.mu.Lock()
	n := f.analyzeN
	f.mu.Unlock()
	if f.quizErrOn > 0 && n == f.quizErrOn {
		return nil, &llm.APIError{Operation: llm.OpQuiz, Status: 500, Message: "upstream"}
	}
	return []study.QuizQuestion{{
		Question:      a.Subject + "?",
		Options:       study.Options{A: "a", B: "b", C: "c", D: "d"},
		CorrectAnswer: "A",
	}}, nil
}

type sleepRecorder struct {
	mu     sync.Mutex
	pauses []time.Duration
	hook   func()
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.pauses = append(s.pauses, d)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
