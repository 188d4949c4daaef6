package subjects

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxNameLength = 100

// Service contains business logic for subjects.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateInput carries the user-editable subject fields.
type CreateInput struct {
	Name        string
	Description string
	Color       string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Subject, error) {
	name := strings.TrimSpace(in.Name)
	if userID == "" || name == "" {
		return Subject{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return Subject{}, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, maxNameLength)
	}
	subject := Subject{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		CreatedAt:   s.now(),
	}
	if err := s.Repo.Create(ctx, subject); err != nil {
		return Subject{}, err
	}
	return subject, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Subject{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]Subject, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete removes a subject; its flashcards and quiz questions go with it and
// its documents are detached.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, userID, id)
}
