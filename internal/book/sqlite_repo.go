package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/jmoiron/sqlx"
)

// SQLiteRepo stores books in SQLite through sqlx. It expects the books table
// created by the sqlite migrations.
type SQLiteRepo struct {
	db      *sqlx.DB
	sql     goqu.DialectWrapper
	timeout time.Duration
}

func NewSQLiteRepo(db *sqlx.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, sql: goqu.Dialect("sqlite3"), timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) Insert(ctx context.Context, title, author string, rating int) (int64, error) {
	query, args, err := r.sql.Insert(tableBooks).
		Rows(goqu.Record{colTitle: title, colAuthor: author, colRating: rating}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	query, args, err := r.sql.From(tableBooks).
		Select(colID, colTitle, colAuthor, colRating).
		Where(goqu.C(colID).Eq(id)).
		Limit(1).
		Prepared(true).
		ToSQL()
	if err != nil {
		return Book{}, fmt.Errorf("build select: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var b Book
	if err := r.db.GetContext(timeoutCtx, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, b Book) error {
	query, args, err := r.sql.Update(tableBooks).
		Set(goqu.Record{colTitle: b.Title, colAuthor: b.Author, colRating: b.Rating}).
		Where(goqu.C(colID).Eq(b.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	return r.execOne(ctx, query, args)
}

func (r *SQLiteRepo) Delete(ctx context.Context, b Book) error {
	query, args, err := r.sql.Delete(tableBooks).
		Where(goqu.C(colID).Eq(b.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return r.execOne(ctx, query, args)
}

func (r *SQLiteRepo) execOne(ctx context.Context, query string, args []any) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.db.ExecContext(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) ListAll(ctx context.Context, order Order) ([]Book, error) {
	query, args, err := r.sql.From(tableBooks).
		Select(colID, colTitle, colAuthor, colRating).
		Order(orderedBy(order)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	books := []Book{}
	if err := r.db.SelectContext(timeoutCtx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}
