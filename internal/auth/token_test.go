//go:build unit

package auth

import (
	"errors"
	"go-club-app/internal/config"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	ti, err := NewTokenIssuer(config.TokenConfig{Secret: "test-secret", Issuer: "club-test", TTL: time.Minute})
	if err != nil {
		t.Fatalf("NewTokenIssuer failed: %v", err)
	}
	return ti
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := newTestIssuer(t)

	raw, expires, err := ti.Issue("member-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Error("expected expiry in the future")
	}

	sub, err := ti.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if sub != "member-1" {
		t.Errorf("want subject 'member-1'; got '%s'", sub)
	}
}

func TestTokenIssuer_Rejects(t *testing.T) {
	ti := newTestIssuer(t)
	good, _, _ := ti.Issue("member-1")

	expired := newTestIssuer(t)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, _ := expired.Issue("member-1")

	other, _ := NewTokenIssuer(config.TokenConfig{Secret: "other", Issuer: "club-test"})
	foreign, _, _ := other.Issue("member-1")

	wrongIssuer, _ := NewTokenIssuer(config.TokenConfig{Secret: "test-secret", Issuer: "elsewhere"})
	misissued, _, _ := wrongIssuer.Issue("member-1")

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "member-1", Issuer: "club-test"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	testCases := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"expired", old},
		{"wrong secret", foreign},
		{"wrong issuer", misissued},
		{"alg none", none},
		{"tampered", good + "x"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ti.Verify(tc.raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer(config.TokenConfig{}); err == nil {
		t.Error("expected an error for an empty secret")
	}
}
