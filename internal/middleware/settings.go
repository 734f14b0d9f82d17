package middleware

import (
	"go-club-app/internal/view"
	"net/http"
)

// SettingsMiddleware checks for a "basic=true" query parameter and sets a corresponding
// flag in the request context. In basic mode templates leave out client-side
// islands such as the PDF reader and its progress sync.
func SettingsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		basicMode := r.URL.Query().Get("basic") == "true"
		next.ServeHTTP(w, r.WithContext(view.WithBasicMode(r.Context(), basicMode)))
	})
}
