package service

import (
	"context"
	"fmt"
	"go-club-app/internal/data"
	"go-club-app/internal/logger"
	"strings"
	"time"
)

// UserRepository defines the interface for database operations on members.
type UserRepository interface {
	GetUserBySubject(ctx context.Context, subject string) (*data.User, error)
	UpsertUser(ctx context.Context, u *data.User) error
	SetSubscription(ctx context.Context, subject string, until *time.Time) error
}

// RoleAssigner grants Casbin roles.
type RoleAssigner interface {
	HasRoleForUser(name string, role string, domain ...string) (bool, error)
	AddRoleForUser(user string, role string, domain ...string) (bool, error)
}

// AccountServicer defines the interface for member accounts.
type AccountServicer interface {
	SignIn(ctx context.Context, subject, email, name string) (*data.User, error)
	GrantSubscription(ctx context.Context, subject string, until *time.Time) error
}

// AccountService provides sign-in bookkeeping and subscriptions.
type AccountService struct {
	users UserRepository
	roles RoleAssigner
	log   logger.Logger
	now   func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserRepository, roles RoleAssigner, log logger.Logger) *AccountService {
	return &AccountService{users: users, roles: roles, log: log, now: time.Now}
}

// SignIn records a member after a successful OIDC login and makes sure they
// hold the member role.
func (s *AccountService) SignIn(ctx context.Context, subject, email, name string) (*data.User, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidInput)
	}
	now := s.now().UTC()
	u := &data.User{Subject: subject, Email: email, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := s.users.UpsertUser(ctx, u); err != nil {
		return nil, err
	}

	has, err := s.roles.HasRoleForUser(subject, "member")
	if err != nil {
		return nil, fmt.Errorf("failed to check roles: %w", err)
	}
	if !has {
		if _, err := s.roles.AddRoleForUser(subject, "member"); err != nil {
			return nil, fmt.Errorf("failed to grant member role: %w", err)
		}
		s.log.Info("New member signed in: " + subject)
	}
	return u, nil
}

// GrantSubscription sets a member's subscription expiry. A nil or past until
// ends the subscription.
func (s *AccountService) GrantSubscription(ctx context.Context, subject string, until *time.Time) error {
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidInput)
	}
	if until != nil {
		u := until.UTC()
		until = &u
	}
	return s.users.SetSubscription(ctx, subject, until)
}
