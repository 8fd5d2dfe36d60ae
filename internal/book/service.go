package book

import (
	"context"
	"errors"
	"fmt"
)

// Service provides the collection operations behind the /books endpoints.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListResult is one page of the collection, newest first.
type ListResult struct {
	Books []Book
	// TotalBooks counts the books in the window, not the collection.
	TotalBooks int
}

// RatingUpdate is the decoded body of a rating update request.
type RatingUpdate struct {
	// Rating is nil when the body carries no rating key.
	Rating *int
	// Err is a body decoding failure. It is reported only after the book
	// has been found, so a missing book always wins over a bad body.
	Err error
}

// DeleteResult describes the collection after a delete.
type DeleteResult struct {
	Deleted int64
	// Books is the requested page of the remaining books in ascending id order.
	Books []Book
	// TotalBooks counts every remaining book.
	TotalBooks int
}

// NewBook carries the fields required to create a book.
type NewBook struct {
	Title  string
	Author string
	Rating int
}

// CreateResult describes the collection after a create.
type CreateResult struct {
	Created int64
	// Books is the whole collection, newest first, without pagination.
	Books      []Book
	TotalBooks int
}

// List returns the given page of books ordered by id descending.
// An empty page, including one on an empty collection, is ErrNotFound.
func (s *Service) List(ctx context.Context, page int) (ListResult, error) {
	books, err := s.repo.ListAll(ctx, Descending)
	if err != nil {
		return ListResult{}, fmt.Errorf("list books: %w", err)
	}

	window := Paginate(page, books)
	if len(window) == 0 {
		return ListResult{}, ErrNotFound
	}
	return ListResult{Books: window, TotalBooks: len(window)}, nil
}

// UpdateRating overwrites the rating of book id when the update carries one
// and persists the book either way.
func (s *Service) UpdateRating(ctx context.Context, id int64, upd RatingUpdate) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: get book %d: %v", ErrBadRequest, id, err)
	}

	if upd.Err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrBadRequest, upd.Err)
	}
	if upd.Rating != nil {
		b.Rating = *upd.Rating
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return fmt.Errorf("%w: update book %d: %v", ErrBadRequest, id, err)
	}
	return nil
}

// Delete removes book id and returns the given page of what remains.
func (s *Service) Delete(ctx context.Context, id int64, page int) (DeleteResult, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DeleteResult{}, ErrNotFound
		}
		return DeleteResult{}, fmt.Errorf("%w: get book %d: %v", ErrUnprocessable, id, err)
	}

	if err := s.repo.Delete(ctx, b); err != nil {
		return DeleteResult{}, fmt.Errorf("%w: delete book %d: %v", ErrUnprocessable, id, err)
	}

	remaining, err := s.repo.ListAll(ctx, Ascending)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("%w: list remaining books: %v", ErrUnprocessable, err)
	}

	return DeleteResult{
		Deleted:    b.ID,
		Books:      Paginate(page, remaining),
		TotalBooks: len(remaining),
	}, nil
}

// Create persists a new book and returns the whole collection, newest first.
func (s *Service) Create(ctx context.Context, nb NewBook) (CreateResult, error) {
	id, err := s.repo.Insert(ctx, nb.Title, nb.Author, nb.Rating)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: insert book: %v", ErrUnprocessable, err)
	}

	books, err := s.repo.ListAll(ctx, Descending)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: list books: %v", ErrUnprocessable, err)
	}
	if books == nil {
		books = []Book{}
	}

	return CreateResult{
		Created:    id,
		Books:      books,
		TotalBooks: len(books),
	}, nil
}
