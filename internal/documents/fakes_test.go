package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyhub-backend/internal/extract"
	"studyhub-backend/internal/flashcards"
	"studyhub-backend/internal/llm"
	"studyhub-backend/internal/pipeline"
	"studyhub-backend/internal/quizzes"
	"studyhub-backend/internal/study"
)

type stubGenerator struct{}

func (stubGenerator) Ready() error { return nil }

func (stubGenerator) Analyze(ctx context.Context, text string) (study.Analysis, error) {
	return study.Analysis{
		Subject:     "Biology",
		Level:       study.LevelBeginner,
		KeyConcepts: []study.KeyConcept{{Name: "Cell", Definition: "Unit of life", Importance: study.ImportanceHigh}},
	}, nil
}

func (stubGenerator) Summarize(ctx context.Context, a study.Analysis) (study.Summary, error) {
	return study.Summary{Title: "Cells 101", Sections: []study.SummarySection{{Title: "Cells", Content: "..."}}}, nil
}

func (stubGenerator) MakeFlashcards(ctx context.Context, a study.Analysis, count int) ([]study.Flashcard, error) {
	cards := make([]study.Flashcard, 0, count)
	for i := 0; i < count; i++ {
		cards = append(cards, study.Flashcard{Question: fmt.Sprintf("Q%d", i), Answer: "A"})
	}
	return cards, nil
}

func (stubGenerator) MakeQuiz(ctx context.Context, a study.Analysis, count int) ([]study.QuizQuestion, error) {
	qs := make([]study.QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		qs = append(qs, study.QuizQuestion{
			Question:      fmt.Sprintf("Q%d", i),
			Options:       study.Options{A: "a", B: "b", C: "c", D: "d"},
			CorrectAnswer: "C",
		})
	}
	return qs, nil
}

// quizDownGenerator fails every quiz request with a remote error.
type quizDownGenerator struct{ stubGenerator }

func (quizDownGenerator) MakeQuiz(ctx context.Context, a study.Analysis, count int) ([]study.QuizQuestion, error) {
	return nil, &llm.APIError{Operation: llm.OpQuiz, Status: 400, Message: "bad request"}
}

type failingFlashcards struct{ flashcards.Repo }

func (failingFlashcards) CreateBatch(ctx context.Context, cards []flashcards.Flashcard) error {
	return errors.New("flashcards table unavailable")
}

type failingQuizzes struct{ quizzes.Repo }

func (failingQuizzes) CreateBatch(ctx context.Context, qs []quizzes.Question) error {
	return errors.New("quiz table unavailable")
}

type failingDocs struct{ DocumentsRepo }

func (failingDocs) Create(ctx context.Context, doc Document) error {
	return errors.New("documents table unavailable")
}

type countingFlashcards struct {
	*flashcards.MemoryRepo
	calls int
}

func (c *countingFlashcards) CreateBatch(ctx context.Context, cards []flashcards.Flashcard) error {
	c.calls++
	return c.MemoryRepo.CreateBatch(ctx, cards)
}

func newTestService() *Service {
	return newTestServiceWith(stubGenerator{})
}

func newTestServiceWith(gen llm.Generator) *Service {
	cfg := pipeline.DefaultConfig()
	cfg.ChunkPause = 0
	ex := extract.New(0)
	svc := NewService(NewMemoryRepo(), flashcards.NewMemoryRepo(), quizzes.NewMemoryRepo(), nil, pipeline.New(ex, gen, cfg), ex, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func sampleResult(cards, questions int) study.AggregatedResult {
	res := study.AggregatedResult{
		Summary:  study.Summary{Title: "Photosynthesis"},
		Metadata: study.Metadata{TotalChunks: 1, Model: "gpt-4-turbo-preview"},
	}
	for i := 0; i < cards; i++ {
		res.Flashcards = append(res.Flashcards, study.Flashcard{Question: fmt.Sprintf("q%d", i), Answer: "a"})
	}
	for i := 0; i < questions; i++ {
		res.Quiz = append(res.Quiz, study.QuizQuestion{Question: fmt.Sprintf("q%d", i), CorrectAnswer: "A"})
	}
	return res
}
