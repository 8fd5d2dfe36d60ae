package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// Insert persists a new book and returns the id assigned by the store.
	Insert(ctx context.Context, title, author string, rating int) (int64, error)
	// GetByID returns ErrNotFound when no book has the given id.
	GetByID(ctx context.Context, id int64) (Book, error)
	Update(ctx context.Context, b Book) error
	Delete(ctx context.Context, b Book) error
	ListAll(ctx context.Context, order Order) ([]Book, error)
}
