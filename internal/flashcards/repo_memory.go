package flashcards

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo. Cards keep insertion order.
type MemoryRepo struct {
	mu    sync.RWMutex
	cards []Flashcard
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) CreateBatch(ctx context.Context, cards []Flashcard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards = append(r.cards, cards...)
	return nil
}

func (r *MemoryRepo) ListBySubject(ctx context.Context, userID, subjectID string) ([]Flashcard, error) {
	return r.filter(ctx, func(f Flashcard) bool { return f.UserID == userID && f.SubjectID == subjectID })
}

func (r *MemoryRepo) ListByDocument(ctx context.Context, userID, documentID string) ([]Flashcard, error) {
	return r.filter(ctx, func(f Flashcard) bool { return f.UserID == userID && f.DocumentID == documentID })
}

func (r *MemoryRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	cards, err := r.filter(ctx, func(f Flashcard) bool { return f.DocumentID == documentID })
	return len(cards), err
}

func (r *MemoryRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.cards[:0]
	for _, f := range r.cards {
		if f.DocumentID != documentID {
			kept = append(kept, f)
		}
	}
	r.cards = kept
	return nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Flashcard) bool) ([]Flashcard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Flashcard, 0)
	for _, f := range r.cards {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)

// ClaimGuest moves every card owned by guestUserID to userID.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for i := range r.cards {
		if r.cards[i].UserID == guestUserID {
			r.cards[i].UserID = userID
			n++
		}
	}
	return n, nil
}
