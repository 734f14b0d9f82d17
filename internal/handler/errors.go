package handler

import (
	"errors"
	"go-club-app/internal/data"
	"go-club-app/internal/middleware"
	"go-club-app/internal/service"
	"net/http"
	"strings"
)

// appError maps service and repository errors onto an AppError.
func appError(err error, notFound string) *middleware.AppError {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: notFound, Code: http.StatusNotFound}
	case errors.Is(err, service.ErrInvalidInput):
		return &middleware.AppError{Error: err, Message: strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "), Code: http.StatusBadRequest}
	case errors.Is(err, service.ErrLocked):
		return &middleware.AppError{Error: err, Message: "This content is for club members", Code: http.StatusForbidden}
	default:
		return &middleware.AppError{Error: err, Message: "Internal Server Error", Code: http.StatusInternalServerError}
	}
}
