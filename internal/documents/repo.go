package documents

import (
	"context"
	"fmt"

	"studyhub-backend/internal/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("document %w", apperr.ErrNotFound)
	ErrInvalidInput = fmt.Errorf("%w: invalid document request", apperr.ErrValidation)
)

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, userID, id string) (Document, error)
	// ListByUser returns documents newest first, optionally narrowed to a subject.
	ListByUser(ctx context.Context, userID, subjectID string) ([]Document, error)
	Delete(ctx context.Context, userID, id string) error
}
