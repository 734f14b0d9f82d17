package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserRepository handles database operations for members.
type UserRepository struct {
	DB *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// GetUserBySubject finds a member by OIDC subject.
func (r *UserRepository) GetUserBySubject(ctx context.Context, subject string) (*User, error) {
	var u User
	err := r.DB.GetContext(ctx, &u, "SELECT * FROM users WHERE subject = ?", subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user '%s': %w", subject, ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

// UpsertUser creates the member for u.Subject or refreshes their profile
// fields. The subscription is never touched here.
func (r *UserRepository) UpsertUser(ctx context.Context, u *User) error {
	existing, err := r.GetUserBySubject(ctx, u.Subject)
	switch {
	case errors.Is(err, ErrNotFound):
		res, err := r.DB.NamedExecContext(ctx,
			`INSERT INTO users (subject, email, name, created_at, updated_at) VALUES (:subject, :email, :name, :created_at, :updated_at)`, u)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		u.ID = id
		return nil
	case err != nil:
		return err
	}

	u.ID = existing.ID
	u.CreatedAt = existing.CreatedAt
	u.SubscriptionExpiresAt = existing.SubscriptionExpiresAt
	_, err = r.DB.NamedExecContext(ctx,
		`UPDATE users SET email = :email, name = :name, updated_at = :updated_at WHERE id = :id`, u)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetSubscription sets the expiry of a member's subscription. A nil until
// cancels it.
func (r *UserRepository) SetSubscription(ctx context.Context, subject string, until *time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET subscription_expires_at = ?, updated_at = ? WHERE subject = ?", until, time.Now().UTC(), subject)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user '%s': %w", subject, ErrNotFound)
	}
	return nil
}
