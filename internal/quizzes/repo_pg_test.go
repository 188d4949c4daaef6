package quizzes

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"studyhub-backend/internal/study"
)

func TestPGRepoCreateBatchFlattensOptions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	qs := FromStudy("user-1", "subj-1", "doc-1", []study.QuizQuestion{{
		Question:      "Which organelle makes ATP?",
		Options:       study.Options{A: "Nucleus", B: "Mitochondrion", C: "Ribosome", D: "Golgi"},
		CorrectAnswer: "B",
		Explanation:   "Cellular respiration",
	}}, func() string { return "q-1" }, now)

	mock.ExpectExec("INSERT INTO quiz_questions").
		WithArgs("q-1", "user-1", "subj-1", "doc-1", "Which organelle makes ATP?",
			"Nucleus", "Mitochondrion", "Ribosome", "Golgi", "B", "Cellular respiration", nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := (&PGRepo{DB: db}).CreateBatch(context.Background(), qs); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCountByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM quiz_questions").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := (&PGRepo{DB: db}).CountByDocument(context.Background(), "doc-1")
	if err != nil || n != 7 {
		t.Fatalf("CountByDocument = %d, %v", n, err)
	}
}

func TestMemoryRepoDeleteByDocument(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	id := 0
	newID := func() string { id++; return string(rune('a' + id)) }
	q := []study.QuizQuestion{{Question: "x"}}
	_ = repo.CreateBatch(ctx, FromStudy("u", "", "doc-1", q, newID, time.Now()))
	_ = repo.CreateBatch(ctx, FromStudy("u", "", "doc-2", q, newID, time.Now()))

	if err := repo.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	if n, _ := repo.CountByDocument(ctx, "doc-1"); n != 0 {
		t.Fatalf("expected doc-1 questions removed, got %d", n)
	}
	if n, _ := repo.CountByDocument(ctx, "doc-2"); n != 1 {
		t.Fatalf("expected doc-2 question kept, got %d", n)
	}
}
