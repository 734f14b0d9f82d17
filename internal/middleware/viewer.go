package middleware

import (
	"go-club-app/internal/logger"
	"go-club-app/internal/session"
	"net/http"
)

// ViewerResolver resolves the request credential into a viewer.
type ViewerResolver interface {
	Resolve(r *http.Request) session.Viewer
}

// RoleSource lists every role a subject holds, inherited ones included.
type RoleSource interface {
	GetImplicitRolesForUser(name string, domain ...string) ([]string, error)
}

// Viewer resolves who is making the request and stores it as UserInfo in the
// request context. It must run inside the session LoadAndSave middleware.
func Viewer(res ViewerResolver, roles RoleSource, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := res.Resolve(r)
			info := &UserInfo{Subject: v.Subject, Session: v.Session}
			if v.User != nil {
				info.UserID = v.User.ID
			}
			if !v.Anonymous() {
				rs, err := roles.GetImplicitRolesForUser(v.Subject)
				if err != nil {
					log.Error(err, "Failed to load roles for "+v.Subject)
				}
				info.Roles = rs
			}
			next.ServeHTTP(w, r.WithContext(SetUserInfo(r.Context(), info)))
		})
	}
}
