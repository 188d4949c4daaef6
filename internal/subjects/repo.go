package subjects

import (
	"context"
	"fmt"

	"studyhub-backend/internal/apperr"
)

var (
	ErrNotFound     = fmt.Errorf("subject %w", apperr.ErrNotFound)
	ErrInvalidInput = fmt.Errorf("%w: invalid subject", apperr.ErrValidation)
)

// Repo defines persistence operations for subjects.
type Repo interface {
	Create(ctx context.Context, s Subject) error
	Get(ctx context.Context, userID, id string) (Subject, error)
	ListByUser(ctx context.Context, userID string) ([]Subject, error)
	Delete(ctx context.Context, userID, id string) error
}
