package session

import (
	"context"
	"go-club-app/internal/data"
	"go-club-app/internal/entitlement"
	"go-club-app/internal/logger"
	"net/http"
	"strings"
	"time"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// UserLookup finds a member by OIDC subject.
type UserLookup interface {
	GetUserBySubject(ctx context.Context, subject string) (*data.User, error)
}

// Viewer is who is looking at a page, resolved once per request.
type Viewer struct {
	Subject string
	User    *data.User
	Session entitlement.ViewerSession
}

// Anonymous reports whether no credential was presented or it was rejected.
func (v Viewer) Anonymous() bool {
	return !v.Session.IsAuthenticated
}

// Resolver turns the request credential into a Viewer. A bearer token wins
// over the cookie session.
type Resolver struct {
	sessions Manager
	tokens   TokenVerifier
	users    UserLookup
	log      logger.Logger
	now      func() time.Time
}

// NewResolver creates a Resolver. sessions or tokens may be nil to disable
// that credential source.
func NewResolver(sessions Manager, tokens TokenVerifier, users UserLookup, log logger.Logger) *Resolver {
	return &Resolver{sessions: sessions, tokens: tokens, users: users, log: log, now: time.Now}
}

// Resolve never fails. A missing, invalid or expired credential gives the
// anonymous viewer; a member whose record cannot be read is treated as
// signed in without a subscription.
func (r *Resolver) Resolve(req *http.Request) Viewer {
	subject := r.subject(req)
	if subject == "" {
		return Viewer{Subject: "anonymous", Session: entitlement.Anonymous}
	}

	v := Viewer{Subject: subject, Session: entitlement.ViewerSession{IsAuthenticated: true}}
	user, err := r.users.GetUserBySubject(req.Context(), subject)
	if err != nil {
		r.log.Warn("Could not load member for session " + subject + ": " + err.Error())
		return v
	}
	v.User = user
	v.Session.IsSubscribed = user.HasSubscription(r.now())
	return v
}

func (r *Resolver) subject(req *http.Request) string {
	if h := req.Header.Get("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || r.tokens == nil {
			return ""
		}
		sub, err := r.tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			r.log.Debug("Rejected bearer token: " + err.Error())
			return ""
		}
		return sub
	}
	if r.sessions == nil {
		return ""
	}
	return r.sessions.GetString(req.Context(), SubjectKey)
}
