package quizzes

import "context"

// Repo defines persistence operations for quiz questions.
type Repo interface {
	CreateBatch(ctx context.Context, qs []Question) error
	ListBySubject(ctx context.Context, userID, subjectID string) ([]Question, error)
	ListByDocument(ctx context.Context, userID, documentID string) ([]Question, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
