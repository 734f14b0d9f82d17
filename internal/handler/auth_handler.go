package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"go-club-app/internal/auth"
	"go-club-app/internal/logger"
	"go-club-app/internal/service"
	"go-club-app/internal/session"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// OIDCClient is the part of auth.Authenticator the login flow needs.
type OIDCClient interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	ExchangeProfile(ctx context.Context, code string) (*auth.Profile, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     OIDCClient
	session  session.Manager
	accounts service.AccountServicer
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a OIDCClient, sm session.Manager, accounts service.AccountServicer, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, accounts: accounts, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.StateKey, state)
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider. It verifies the
// state, exchanges the code and signs the member in.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	want := h.session.PopString(r.Context(), session.StateKey)
	if want == "" || r.URL.Query().Get("state") != want {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	profile, err := h.auth.ExchangeProfile(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "OIDC callback failed")
		http.Error(w, "Login failed", http.StatusUnauthorized)
		return
	}

	if _, err := h.accounts.SignIn(r.Context(), profile.Subject, profile.Email, profile.Name); err != nil {
		h.log.Error(err, "Failed to record sign-in")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// A fresh token on privilege change prevents session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.SubjectKey, profile.Subject)

	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout ends the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
