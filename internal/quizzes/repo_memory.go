package quizzes

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu        sync.RWMutex
	questions []Question
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) CreateBatch(ctx context.Context, qs []Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, qs...)
	return nil
}

func (r *MemoryRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Question, error) {
	return r.filter(ctx, func(q Question) bool { return q.UserID == userID && q.SubjectID == subjectID })
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, userID, documentID string) ([]Question, error) {
	return r.filter(ctx, func(q Question) bool { return q.UserID == userID && q.DocumentID == documentID })
}

func (r *MemoryRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	qs, err := r.filter(ctx, func(q Question) bool { return q.DocumentID == documentID })
	return len(qs), err
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.questions[:0]
	for _, q := range r.questions {
		if q.DocumentID != documentID {
			kept = append(kept, q)
		}
	}
	r.questions = kept
	return nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Question) bool) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Question, 0)
	for _, q := range r.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

// ClaimGuest moves every question owned by guestUserID to userID.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.questions {
		if r.questions[i].UserID == guestUserID {
			r.questions[i].UserID = userID
			n++
		}
	}
	return n, nil
}
