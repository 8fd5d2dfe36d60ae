package book

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process Repository. Ids start at 1 and are never reused.
type MemoryRepo struct {
	mu     sync.RWMutex
	books  map[int64]Book
	nextID int64
}

// NewMemoryRepo constructs a MemoryRepo seeded with the provided books.
// Seeded ids are kept and the id counter continues after the largest one.
func NewMemoryRepo(seed ...Book) *MemoryRepo {
	repo := &MemoryRepo{
		books:  make(map[int64]Book, len(seed)),
		nextID: 1,
	}

	for _, b := range seed {
		repo.books[b.ID] = b
		if b.ID >= repo.nextID {
			repo.nextID = b.ID + 1
		}
	}

	return repo
}

func (r *MemoryRepo) Insert(_ context.Context, title, author string, rating int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.books[id] = Book{ID: id, Title: title, Author: author, Rating: rating}
	return id, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id int64) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) Update(_ context.Context, b Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; !ok {
		return ErrNotFound
	}
	r.books[b.ID] = b
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, b Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; !ok {
		return ErrNotFound
	}
	delete(r.books, b.ID)
	return nil
}

func (r *MemoryRepo) ListAll(_ context.Context, order Order) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Book, 0, len(r.books))
	for _, b := range r.books {
		result = append(result, b)
	}

	sort.Slice(result, func(i, j int) bool {
		if order == Descending {
			return result[i].ID > result[j].ID
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
