package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const articleColumns = `id, slug, title, excerpt, body, body_format, is_public, is_subscriber_only, author_id, created_at, updated_at`

// SQLArticleRepository is the sqlx-backed store for articles.
type SQLArticleRepository struct {
	db *sqlx.DB
}

// NewSQLArticleRepository creates a new SQLArticleRepository.
func NewSQLArticleRepository(db *sqlx.DB) *SQLArticleRepository {
	return &SQLArticleRepository{db: db}
}

// CreateArticle inserts a new article and sets its ID.
func (r *SQLArticleRepository) CreateArticle(ctx context.Context, a *Article) error {
	query := `INSERT INTO articles (slug, title, excerpt, body, body_format, is_public, is_subscriber_only, author_id, created_at, updated_at)
		VALUES (:slug, :title, :excerpt, :body, :body_format, :is_public, :is_subscriber_only, :author_id, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to execute create article query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new article id: %w", err)
	}
	a.ID = id
	return nil
}

// GetArticleBySlug retrieves a single article by its slug.
func (r *SQLArticleRepository) GetArticleBySlug(ctx context.Context, slug string) (*Article, error) {
	var a Article
	query := `SELECT ` + articleColumns + ` FROM articles WHERE slug = ?`
	if err := r.db.GetContext(ctx, &a, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article with slug '%s': %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get article by slug: %w", err)
	}
	return &a, nil
}

// GetArticleByID retrieves a single article by its ID.
func (r *SQLArticleRepository) GetArticleByID(ctx context.Context, id int64) (*Article, error) {
	var a Article
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = ?`
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get article by id: %w", err)
	}
	return &a, nil
}

// UpdateArticle replaces the stored fields of an existing article.
func (r *SQLArticleRepository) UpdateArticle(ctx context.Context, a *Article) error {
	query := `UPDATE articles SET slug = :slug, title = :title, excerpt = :excerpt, body = :body, body_format = :body_format,
		is_public = :is_public, is_subscriber_only = :is_subscriber_only, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no article to update with id %d: %w", a.ID, ErrNotFound)
	}
	return nil
}

// ListArticles returns articles newest first. Drafts are left out unless
// includeDrafts is set.
func (r *SQLArticleRepository) ListArticles(ctx context.Context, includeDrafts bool) ([]*Article, error) {
	articles := []*Article{}
	query := `SELECT ` + articleColumns + ` FROM articles`
	if !includeDrafts {
		query += ` WHERE is_public = ?`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var err error
	if includeDrafts {
		err = r.db.SelectContext(ctx, &articles, query)
	} else {
		err = r.db.SelectContext(ctx, &articles, query, true)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// DeleteArticle removes an article by its ID.
func (r *SQLArticleRepository) DeleteArticle(ctx context.Context, id int64) error {
	query := `DELETE FROM articles WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no article to delete with id %d: %w", id, ErrNotFound)
	}
	return nil
}
