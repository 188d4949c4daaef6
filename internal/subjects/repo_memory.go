package subjects

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Subject // id -> subject
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Subject)}
}

func (r *MemoryRepo) Create(ctx context.Context, s Subject) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[s.ID] = s
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Subject, error) {
	if err := ctx.Err(); err != nil {
		return Subject{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.data[id]
	if !ok || s.UserID != userID {
		return Subject{}, ErrNotFound
	}
	return s, nil
}

// ListByUser returns subjects newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Subject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Subject, 0)
	for _, s := range r.data {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data[id]
	if !ok || s.UserID != userID {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)

// ClaimGuest moves every subject owned by guestUserID to userID.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.data {
		if s.UserID == guestUserID {
			s.UserID = userID
			r.data[id] = s
			n++
		}
	}
	return n, nil
}
