package data

import (
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// Article represents a single article in the database.
//
// IsPublic and IsSubscriberOnly are independent: a draft is !IsPublic, and a
// published article may still be gated behind a subscription.
type Article struct {
	ID               int64     `db:"id"`
	Slug             string    `db:"slug"`
	Title            string    `db:"title"`
	Excerpt          string    `db:"excerpt"`
	Body             string    `db:"body"`
	BodyFormat       string    `db:"body_format"`
	IsPublic         bool      `db:"is_public"`
	IsSubscriberOnly bool      `db:"is_subscriber_only"`
	AuthorID         string    `db:"author_id"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// User is a club member known through an OIDC subject.
type User struct {
	ID                    int64      `db:"id"`
	Subject               string     `db:"subject"`
	Email                 string     `db:"email"`
	Name                  string     `db:"name"`
	SubscriptionExpiresAt *time.Time `db:"subscription_expires_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// HasSubscription reports whether the user's paid membership is active at now.
func (u *User) HasSubscription(now time.Time) bool {
	return u != nil && u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.After(now)
}

// Book is a PDF in the club library.
type Book struct {
	ID          int64     `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Author      string    `db:"author"`
	Description string    `db:"description"`
	FileName    string    `db:"file_name"`
	PageCount   int       `db:"page_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// ReadingProgress is the last page a member reached in a book.
type ReadingProgress struct {
	UserID    int64     `db:"user_id"`
	BookID    int64     `db:"book_id"`
	Page      int       `db:"page"`
	UpdatedAt time.Time `db:"updated_at"`
}
