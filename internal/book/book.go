package book

import (
	"errors"
)

// PageSize is the number of books shown on one page.
const PageSize = 8

var (
	// ErrNotFound is returned when a book id or a page does not resolve to data.
	ErrNotFound = errors.New("resource not found")
	// ErrBadRequest is returned when a rating update cannot be parsed or persisted.
	ErrBadRequest = errors.New("bad request")
	// ErrUnprocessable is returned when a create or delete cannot be completed.
	ErrUnprocessable = errors.New("unprocessable")
)

// Book represents a book entity.
//
// JSON fields are declared in key order so the encoded object is sorted.
type Book struct {
	Author string `json:"author" db:"author"`
	ID     int64  `json:"id" db:"id"`
	Rating int    `json:"rating" db:"rating"`
	Title  string `json:"title" db:"title"`
}

// Order is the direction in which ListAll sorts books by id.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Paginate returns the window of books shown on the given page.
// Pages start at 1; a page at or below zero yields an empty window.
func Paginate(page int, books []Book) []Book {
	if page < 1 || page-1 >= (len(books)+PageSize-1)/PageSize {
		return []Book{}
	}
	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(books) {
		end = len(books)
	}
	window := make([]Book, end-start)
	copy(window, books[start:end])
	return window
}
