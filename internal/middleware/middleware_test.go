//go:build unit

package middleware

import (
	"errors"
	"go-club-app/internal/data"
	"go-club-app/internal/entitlement"
	"go-club-app/internal/logger"
	"go-club-app/internal/session"
	"go-club-app/internal/view"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockResolver struct {
	viewer session.Viewer
}

func (m *mockResolver) Resolve(r *http.Request) session.Viewer { return m.viewer }

type mockRoles struct {
	roles map[string][]string
}

func (m *mockRoles) GetImplicitRolesForUser(name string, domain ...string) ([]string, error) {
	return m.roles[name], nil
}

type mockEnforcer struct {
	allow map[string]bool
	err   error
}

func (m *mockEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := rvals[0].(string) + " " + rvals[1].(string) + " " + rvals[2].(string)
	return m.allow[key], nil
}

type mockRenderer struct {
	rendered string
}

func (m *mockRenderer) Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error {
	m.rendered = name
	_, err := io.WriteString(w, "page:"+data["StatusText"].(string))
	return err
}

func TestViewer_SetsUserInfo(t *testing.T) {
	res := &mockResolver{viewer: session.Viewer{
		Subject: "member-1",
		User:    &data.User{ID: 7, Subject: "member-1"},
		Session: entitlement.ViewerSession{IsAuthenticated: true, IsSubscribed: true},
	}}
	roles := &mockRoles{roles: map[string][]string{"member-1": {"admin", "member", "anonymous"}}}

	var got *UserInfo
	h := Viewer(res, roles, logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserInfo(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got == nil || got.Subject != "member-1" || got.UserID != 7 {
		t.Fatalf("unexpected user info %+v", got)
	}
	if !got.IsEditor() || got.IsAnonymous() || !got.Session.IsSubscribed {
		t.Errorf("unexpected flags %+v", got)
	}
}

func TestGetUserInfo_DefaultsToAnonymous(t *testing.T) {
	u := GetUserInfo(httptest.NewRequest("GET", "/", nil).Context())
	if u.Subject != "anonymous" || !u.IsAnonymous() || u.IsEditor() {
		t.Errorf("unexpected default %+v", u)
	}
}

func TestAuthorizer(t *testing.T) {
	e := &mockEnforcer{allow: map[string]bool{"anonymous GET /articles": true}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Authorizer(e, logger.Nop())(next)

	testCases := []struct {
		name       string
		info       *UserInfo
		method     string
		path       string
		wantStatus int
	}{
		{"allowed", nil, "GET", "/articles", http.StatusOK},
		{"anonymous page redirects to login", nil, "GET", "/admin/articles/new", http.StatusFound},
		{"anonymous api is forbidden", nil, "GET", "/api/token", http.StatusForbidden},
		{"member forbidden", &UserInfo{Subject: "m", Session: entitlement.ViewerSession{IsAuthenticated: true}}, "GET", "/admin/articles/new", http.StatusForbidden},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.info != nil {
				req = req.WithContext(SetUserInfo(req.Context(), tc.info))
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.wantStatus {
				t.Errorf("want status %d; got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestAuthorizer_EnforceError(t *testing.T) {
	h := Authorizer(&mockEnforcer{err: errors.New("boom")}, logger.Nop())(http.NotFoundHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("want 500; got %d", rr.Code)
	}
}

func TestError_RendersPage(t *testing.T) {
	r := &mockRenderer{}
	h := Error(logger.Nop(), r)(func(w http.ResponseWriter, req *http.Request) *AppError {
		return &AppError{Error: data.ErrNotFound, Message: "Article not found", Code: http.StatusNotFound}
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/articles/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("want 404; got %d", rr.Code)
	}
	if r.rendered != "error.html" || !strings.Contains(rr.Body.String(), "Article not found") {
		t.Errorf("unexpected error page %q (%s)", rr.Body.String(), r.rendered)
	}
}

func TestError_RecoversPanic(t *testing.T) {
	h := Error(logger.Nop(), &mockRenderer{})(func(w http.ResponseWriter, req *http.Request) *AppError {
		panic("kaboom")
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("want 500; got %d", rr.Code)
	}
}

func TestJSON_WritesErrorBody(t *testing.T) {
	h := JSON(logger.Nop())(func(w http.ResponseWriter, req *http.Request) *AppError {
		return &AppError{Message: "page out of range", Code: http.StatusBadRequest}
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("PUT", "/api/books/x/progress", nil))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("want 400; got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"page out of range"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestSettingsMiddleware(t *testing.T) {
	var basic bool
	h := SettingsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		basic = view.IsBasicMode(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/club/books/x?basic=true", nil))
	if !basic {
		t.Error("expected basic mode to be set")
	}
}
