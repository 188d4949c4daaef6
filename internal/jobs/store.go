package jobs

import (
	"context"
	"fmt"

	"studyhub-backend/internal/apperr"
)

var ErrNotFound = fmt.Errorf("job %w", apperr.ErrNotFound)

// Store persists job records.
type Store interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	// Update applies fn to the stored job atomically and returns the result.
	Update(ctx context.Context, id string, fn func(*Job) error) (Job, error)
	// ListActive returns jobs that are not yet terminal.
	ListActive(ctx context.Context) ([]Job, error)
}
