package middleware

import (
	"go-club-app/internal/logger"
	"net/http"
)

// Enforcer is the part of a Casbin enforcer the authorizer needs.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// Authorizer creates a new middleware for authorization.
// It checks the viewer resolved by the Viewer middleware against the route
// policies. Whether gated content is revealed is decided later by the
// entitlement gate, not here.
func Authorizer(e Enforcer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userInfo := GetUserInfo(r.Context())

			allowed, err := e.Enforce(userInfo.Subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization check failed")
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				if userInfo.IsAnonymous() && r.Method == http.MethodGet && !isAPI(r) {
					http.Redirect(w, r, "/auth/login", http.StatusFound)
					return
				}
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAPI(r *http.Request) bool {
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
