package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"booklend/model"
)

// ErrNotFound signals an absent row; callers map it to their own
// not-found vocabulary.
var ErrNotFound = errors.New("book not found")

type Repo interface {
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Book, error)
	SearchTitle(ctx context.Context, term string) ([]model.Book, error)
	SearchAuthor(ctx context.Context, term string) ([]model.Book, error)
	SearchCategory(ctx context.Context, category string) ([]model.Book, error)
	FindAll(ctx context.Context) ([]model.Book, error)
	Create(ctx context.Context, b *model.Book) error
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const bookCols = `id, title, author, category, publisher, isbn, stock, borrowed`

func scanBook(row *sql.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Publisher, &b.ISBN, &b.Stock, &b.Borrowed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE id=$1`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) FindByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE isbn=$1`
	return scanBook(r.db.QueryRowContext(ctx, q, isbn))
}

func (r *repo) queryBooks(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.Publisher, &b.ISBN, &b.Stock, &b.Borrowed); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) SearchTitle(ctx context.Context, term string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE title ILIKE '%' || $1 || '%' ORDER BY id`
	return r.queryBooks(ctx, q, term)
}

func (r *repo) SearchAuthor(ctx context.Context, term string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE author ILIKE '%' || $1 || '%' ORDER BY id`
	return r.queryBooks(ctx, q, term)
}

func (r *repo) SearchCategory(ctx context.Context, category string) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books WHERE category=$1 ORDER BY id`
	return r.queryBooks(ctx, q, category)
}

func (r *repo) FindAll(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookCols + ` FROM books ORDER BY id`
	return r.queryBooks(ctx, q)
}

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (title, author, category, publisher, isbn, stock, borrowed)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.Category, b.Publisher, b.ISBN, b.Stock, b.Borrowed).Scan(&b.ID)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
UPDATE books
SET title=$2, author=$3, category=$4, publisher=$5, isbn=$6, stock=$7, borrowed=$8
WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, b.ID, b.Title, b.Author, b.Category, b.Publisher, b.ISBN, b.Stock, b.Borrowed)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
