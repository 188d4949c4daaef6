package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // userId -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.UserID] = append(r.data[doc.UserID], doc)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.data[userID] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return Document{}, ErrNotFound
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID, subjectID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]Document, 0, len(r.data[userID]))
	for _, doc := range r.data[userID] {
		if subjectID == "" || doc.SubjectID == subjectID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[userID]
	for i := range docs {
		if docs[i].ID == id {
			r.data[userID] = append(docs[:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

var _ DocumentsRepo = (*MemoryRepo)(nil)

// ClaimGuest moves every document owned by guestUserID to userID.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[guestUserID]
	for i := range docs {
		docs[i].UserID = userID
	}
	r.data[userID] = append(r.data[userID], docs...)
	delete(r.data, guestUserID)
	return len(docs), nil
}
