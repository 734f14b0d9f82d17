package middleware

import (
	"encoding/json"
	"fmt"
	"go-club-app/internal/logger"
	"io"
	"net/http"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Renderer renders a named page template.
type Renderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, view Renderer) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					renderError(w, r, view, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				logAppError(log, err)
				renderError(w, r, view, err.Code, err.Message)
			}
		})
	}
}

// JSON is the API counterpart of Error: failures are written as
// {"error": "..."} with the AppError status code.
func JSON(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				}
			}()

			if err := next(w, r); err != nil {
				logAppError(log, err)
				WriteJSON(w, err.Code, map[string]string{"error": err.Message})
			}
		})
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logAppError(log logger.Logger, err *AppError) {
	if err.Code >= http.StatusInternalServerError {
		log.Error(err.Error, err.Message)
		return
	}
	msg := err.Message
	if err.Error != nil {
		msg += ": " + err.Error.Error()
	}
	log.Warn(msg)
}

func renderError(w http.ResponseWriter, r *http.Request, view Renderer, code int, message string) {
	data := map[string]interface{}{
		"StatusCode": code,
		"StatusText": message,
		"UserInfo":   GetUserInfo(r.Context()),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := view.Render(w, r, "error.html", data); err != nil {
		fmt.Fprintf(w, "Error %d: %s", code, message)
	}
}
