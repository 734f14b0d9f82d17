package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BookRepository handles database operations for the club library and
// members' reading progress.
type BookRepository struct {
	DB *sqlx.DB
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(db *sqlx.DB) *BookRepository {
	return &BookRepository{DB: db}
}

// CreateBook inserts a book and sets its ID.
func (r *BookRepository) CreateBook(ctx context.Context, b *Book) error {
	res, err := r.DB.NamedExecContext(ctx,
		`INSERT INTO books (slug, title, author, description, file_name, page_count, created_at)
		VALUES (:slug, :title, :author, :description, :file_name, :page_count, :created_at)`, b)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetBookBySlug finds a book by slug.
func (r *BookRepository) GetBookBySlug(ctx context.Context, slug string) (*Book, error) {
	var b Book
	if err := r.DB.GetContext(ctx, &b, "SELECT * FROM books WHERE slug = ?", slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book '%s': %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &b, nil
}

// ListBooks retrieves the whole library ordered by title.
func (r *BookRepository) ListBooks(ctx context.Context) ([]*Book, error) {
	books := []*Book{}
	if err := r.DB.SelectContext(ctx, &books, "SELECT * FROM books ORDER BY title"); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// GetProgress returns the saved position of a member in a book.
func (r *BookRepository) GetProgress(ctx context.Context, userID, bookID int64) (*ReadingProgress, error) {
	var p ReadingProgress
	err := r.DB.GetContext(ctx, &p,
		"SELECT user_id, book_id, page, updated_at FROM reading_progress WHERE user_id = ? AND book_id = ?", userID, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress for user %d in book %d: %w", userID, bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reading progress: %w", err)
	}
	return &p, nil
}

// SaveProgress stores the position, replacing any earlier one.
// REPLACE INTO is understood by both MySQL and SQLite.
func (r *BookRepository) SaveProgress(ctx context.Context, p *ReadingProgress) error {
	_, err := r.DB.NamedExecContext(ctx,
		`REPLACE INTO reading_progress (user_id, book_id, page, updated_at) VALUES (:user_id, :book_id, :page, :updated_at)`, p)
	if err != nil {
		return fmt.Errorf("failed to save reading progress: %w", err)
	}
	return nil
}
