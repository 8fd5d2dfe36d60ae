package book

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tableBooks = "books"
	colID      = "id"
	colTitle   = "title"
	colAuthor  = "author"
	colRating  = "rating"
)

// orderedBy builds the ORDER BY expression for ListAll.
func orderedBy(order Order) exp.OrderedExpression {
	if order == Descending {
		return goqu.C(colID).Desc()
	}
	return goqu.C(colID).Asc()
}

type PostgresRepo struct {
	db      *pgxpool.Pool
	sql     goqu.DialectWrapper
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, sql: goqu.Dialect("postgres"), timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) Insert(ctx context.Context, title, author string, rating int) (int64, error) {
	query, args, err := r.sql.Insert(tableBooks).
		Rows(goqu.Record{colTitle: title, colAuthor: author, colRating: rating}).
		Returning(colID).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var id int64
	if err := r.db.QueryRow(timeoutCtx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
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
	err = r.db.QueryRow(timeoutCtx, query, args...).Scan(&b.ID, &b.Title, &b.Author, &b.Rating)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Update(ctx context.Context, b Book) error {
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

func (r *PostgresRepo) Delete(ctx context.Context, b Book) error {
	query, args, err := r.sql.Delete(tableBooks).
		Where(goqu.C(colID).Eq(b.ID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	return r.execOne(ctx, query, args)
}

// execOne runs a statement that must touch exactly one row.
func (r *PostgresRepo) execOne(ctx context.Context, query string, args []any) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListAll(ctx context.Context, order Order) ([]Book, error) {
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
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		return nil, err
	}
	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[Book])
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}
