package handler

import (
	"errors"
	"go-club-app/internal/logger"
	"go-club-app/internal/middleware"
	"go-club-app/internal/service"
	"go-club-app/internal/view"
	"net/http"
	"strings"
	"time"
)

// TokenIssuer issues bearer tokens for client-side islands.
type TokenIssuer interface {
	Issue(subject string) (string, time.Time, error)
}

// AccountHandler holds the dependencies for account endpoints.
type AccountHandler struct {
	accounts service.AccountServicer
	tokens   TokenIssuer
	view     *view.View
	log      logger.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as service.AccountServicer, tokens TokenIssuer, v *view.View, log logger.Logger) *AccountHandler {
	return &AccountHandler{accounts: as, tokens: tokens, view: v, log: log}
}

// joinHandler explains how to become a paying member.
func (h *AccountHandler) joinHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	data := map[string]interface{}{
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, r, "join.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render join page", Code: http.StatusInternalServerError}
	}
	return nil
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tokenHandler hands the signed-in member a short-lived bearer token.
func (h *AccountHandler) tokenHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	if userInfo.IsAnonymous() {
		return &middleware.AppError{Error: errors.New("anonymous token request"), Message: "Not signed in", Code: http.StatusUnauthorized}
	}
	token, expires, err := h.tokens.Issue(userInfo.Subject)
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to issue token", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Cache-Control", "no-store")
	middleware.WriteJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expires.UTC()})
	return nil
}

// subscriptionHandler sets or clears a member's subscription. The "until"
// field is a date (YYYY-MM-DD); leaving it empty cancels the subscription.
func (h *AccountHandler) subscriptionHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	subject := strings.TrimSpace(r.FormValue("subject"))
	var until *time.Time
	if raw := strings.TrimSpace(r.FormValue("until")); raw != "" {
		t, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return &middleware.AppError{Error: err, Message: "Invalid date, expected YYYY-MM-DD", Code: http.StatusBadRequest}
		}
		end := t.Add(24 * time.Hour)
		until = &end
	}

	if err := h.accounts.GrantSubscription(r.Context(), subject, until); err != nil {
		return appError(err, "Member not found")
	}
	h.log.Info("Updated subscription for " + subject)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"subject": subject, "until": until})
	return nil
}
