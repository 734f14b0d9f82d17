package middleware

import (
	"context"
	"go-club-app/internal/entitlement"
	"slices"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const userContextKey = contextKey("user")

// UserInfo is the resolved viewer stored in the request context.
type UserInfo struct {
	Subject string
	UserID  int64
	Roles   []string
	Session entitlement.ViewerSession
}

// IsAnonymous reports whether the request carries no accepted credential.
func (u *UserInfo) IsAnonymous() bool {
	return !u.Session.IsAuthenticated
}

// HasRole reports whether role is among the viewer's (implicit) roles.
func (u *UserInfo) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsEditor reports whether the viewer may author content and bypass the gate.
func (u *UserInfo) IsEditor() bool {
	return u.HasRole("admin")
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	// Return an anonymous user if no user info is found in the context.
	return &UserInfo{Subject: "anonymous"}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}
