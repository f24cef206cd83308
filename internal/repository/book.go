package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/library-service/internal/models"
)

const bookColumns = `id, title, author, isbn, published_date`

// CreateBook inserts a book and fills in its generated ID
func (r *Repository) CreateBook(ctx context.Context, book *models.Book) error {
	ctx, cancel := context.WithTimeout(ctx, rowTimeout)
	defer cancel()

	query := r.dialect.Rebind(`
		INSERT INTO books (title, author, isbn, published_date)
		VALUES (?, ?, ?, ?)
		RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, book.Title, book.Author, book.ISBN, book.PublishedDate).
		Scan(&book.ID)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// ListBooks returns one page of books ordered by ID. A non-empty Search
// matches title or author as a case-sensitive substring.
func (r *Repository) ListBooks(ctx context.Context, q models.BookQuery) ([]models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + bookColumns + " FROM books")
	if q.Search != "" {
		sb.WriteString(" WHERE " + r.dialect.Contains("title") + " OR " + r.dialect.Contains("author"))
		args = append(args, q.Search, q.Search)
	}
	sb.WriteString(" ORDER BY id LIMIT ? OFFSET ?")
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(sb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		var b models.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedDate); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// FindBookByID retrieves a book by ID
func (r *Repository) FindBookByID(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, rowTimeout)
	defer cancel()

	b := &models.Book{}
	query := r.dialect.Rebind(`SELECT ` + bookColumns + ` FROM books WHERE id = ?`)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.PublishedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book: %w", err)
	}
	return b, nil
}

// UpdateBook replaces every mutable field of the book with the given ID.
// It reports the number of rows affected.
func (r *Repository) UpdateBook(ctx context.Context, book models.Book) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, rowTimeout)
	defer cancel()

	query := r.dialect.Rebind(`
		UPDATE books
		SET title = ?, author = ?, isbn = ?, published_date = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, book.Title, book.Author, book.ISBN, book.PublishedDate, book.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to update book: %w", err)
	}
	return n, nil
}

// DeleteBook removes the book with the given ID and reports the rows affected
func (r *Repository) DeleteBook(ctx context.Context, id int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, rowTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete book: %w", err)
	}
	return n, nil
}

// CountBooks returns the number of books in the catalog
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	return r.count(ctx, "books")
}
