package flashcards

import "context"

// Repo defines persistence operations for flashcards.
type Repo interface {
	CreateBatch(ctx context.Context, cards []Flashcard) error
	ListBySubject(ctx context.Context, userID, subjectID string) ([]Flashcard, error)
	ListByDocument(ctx context.Context, userID, documentID string) ([]Flashcard, error)
	CountByDocument(ctx context.Context, documentID string) (int, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
