package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStore = errors.New("connection reset by peer")

func intPtr(n int) *int { return &n }

func reversed(books []Book) []Book {
	out := make([]Book, len(books))
	for i, b := range books {
		out[len(books)-1-i] = b
	}
	return out
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("window count, newest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		all := reversed(booksWithIDs(idRange(1, 10)...))
		repo.EXPECT().ListAll(gomock.Any(), Descending).Return(all, nil)

		res, err := svc.List(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 9, 8, 7, 6, 5, 4, 3}, idsOf(res.Books))
		assert.Equal(t, 8, res.TotalBooks)
	})

	t.Run("last page reports window size", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().ListAll(gomock.Any(), Descending).Return(reversed(booksWithIDs(idRange(1, 10)...)), nil)

		res, err := svc.List(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 1}, idsOf(res.Books))
		assert.Equal(t, 2, res.TotalBooks)
	})

	t.Run("empty collection is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().ListAll(gomock.Any(), Descending).Return([]Book{}, nil)

		_, err := svc.List(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("page past the end is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().ListAll(gomock.Any(), Descending).Return(booksWithIDs(1, 2), nil)

		_, err := svc.List(ctx, 2)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("store error is untagged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().ListAll(gomock.Any(), Descending).Return(nil, errStore)

		_, err := svc.List(ctx, 1)
		assert.ErrorIs(t, err, errStore)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestService_UpdateRating(t *testing.T) {
	ctx := context.Background()
	existing := Book{ID: 4, Title: "Kindred", Author: "Octavia E. Butler", Rating: 3}

	t.Run("overwrites rating", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		updated := existing
		updated.Rating = 5
		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil),
			repo.EXPECT().Update(gomock.Any(), updated).Return(nil),
		)

		assert.NoError(t, svc.UpdateRating(ctx, 4, RatingUpdate{Rating: intPtr(5)}))
	})

	t.Run("no rating still persists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), existing).Return(nil)

		assert.NoError(t, svc.UpdateRating(ctx, 4, RatingUpdate{}))
	})

	t.Run("out of range rating is accepted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		updated := existing
		updated.Rating = -40
		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), updated).Return(nil)

		assert.NoError(t, svc.UpdateRating(ctx, 4, RatingUpdate{Rating: intPtr(-40)}))
	})

	t.Run("missing book wins over bad body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(9)).Return(Book{}, ErrNotFound)

		err := svc.UpdateRating(ctx, 9, RatingUpdate{Err: errors.New("unexpected EOF")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad body is bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil)

		err := svc.UpdateRating(ctx, 4, RatingUpdate{Err: errors.New("unexpected EOF")})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("persist failure is bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errStore)

		err := svc.UpdateRating(ctx, 4, RatingUpdate{Rating: intPtr(1)})
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("book deleted before persist is bad request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(4)).Return(existing, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(ErrNotFound)

		err := svc.UpdateRating(ctx, 4, RatingUpdate{Rating: intPtr(1)})
		assert.ErrorIs(t, err, ErrBadRequest)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ascending page and full count", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		target := Book{ID: 3, Title: "Title 3", Author: "Author 3", Rating: 3}
		remaining := booksWithIDs(1, 2, 4, 5, 6, 7, 8, 9, 10, 11)
		gomock.InOrder(
			repo.EXPECT().GetByID(gomock.Any(), int64(3)).Return(target, nil),
			repo.EXPECT().Delete(gomock.Any(), target).Return(nil),
			repo.EXPECT().ListAll(gomock.Any(), Ascending).Return(remaining, nil),
		)

		res, err := svc.Delete(ctx, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), res.Deleted)
		assert.Equal(t, []int64{1, 2, 4, 5, 6, 7, 8, 9}, idsOf(res.Books))
		assert.Equal(t, 10, res.TotalBooks)
	})

	t.Run("page past the end is still success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		target := Book{ID: 1}
		repo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(target, nil)
		repo.EXPECT().Delete(gomock.Any(), target).Return(nil)
		repo.EXPECT().ListAll(gomock.Any(), Ascending).Return(booksWithIDs(2), nil)

		res, err := svc.Delete(ctx, 1, 3)
		require.NoError(t, err)
		assert.Empty(t, res.Books)
		assert.NotNil(t, res.Books)
		assert.Equal(t, 1, res.TotalBooks)
	})

	t.Run("missing book is not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(42)).Return(Book{}, ErrNotFound)

		_, err := svc.Delete(ctx, 42, 1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrUnprocessable)
	})

	t.Run("lookup failure is unprocessable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(42)).Return(Book{}, errStore)

		_, err := svc.Delete(ctx, 42, 1)
		assert.ErrorIs(t, err, ErrUnprocessable)
	})

	t.Run("delete failure is unprocessable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(2)).Return(Book{ID: 2}, nil)
		repo.EXPECT().Delete(gomock.Any(), Book{ID: 2}).Return(ErrNotFound)

		_, err := svc.Delete(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrUnprocessable)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("relist failure is unprocessable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().GetByID(gomock.Any(), int64(2)).Return(Book{ID: 2}, nil)
		repo.EXPECT().Delete(gomock.Any(), Book{ID: 2}).Return(nil)
		repo.EXPECT().ListAll(gomock.Any(), Ascending).Return(nil, errStore)

		_, err := svc.Delete(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrUnprocessable)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the whole collection newest first", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		all := reversed(booksWithIDs(idRange(1, 12)...))
		gomock.InOrder(
			repo.EXPECT().Insert(gomock.Any(), "Piranesi", "Susanna Clarke", 5).Return(int64(12), nil),
			repo.EXPECT().ListAll(gomock.Any(), Descending).Return(all, nil),
		)

		res, err := svc.Create(ctx, NewBook{Title: "Piranesi", Author: "Susanna Clarke", Rating: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(12), res.Created)
		assert.Len(t, res.Books, 12)
		assert.Equal(t, 12, res.TotalBooks)
		assert.Equal(t, int64(12), res.Books[0].ID)
	})

	t.Run("insert failure is unprocessable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), errStore)

		_, err := svc.Create(ctx, NewBook{Title: "t", Author: "a", Rating: 1})
		assert.ErrorIs(t, err, ErrUnprocessable)
	})

	t.Run("relist failure is unprocessable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		svc := NewService(repo)

		repo.EXPECT().Insert(gomock.Any(), "t", "a", 1).Return(int64(1), nil)
		repo.EXPECT().ListAll(gomock.Any(), Descending).Return(nil, errStore)

		_, err := svc.Create(ctx, NewBook{Title: "t", Author: "a", Rating: 1})
		assert.ErrorIs(t, err, ErrUnprocessable)
	})
}
