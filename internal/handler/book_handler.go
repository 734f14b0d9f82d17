package handler

import (
	"encoding/json"
	"errors"
	"go-club-app/internal/logger"
	"go-club-app/internal/middleware"
	"go-club-app/internal/service"
	"go-club-app/internal/view"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// BookHandler holds the dependencies for the club library handlers.
type BookHandler struct {
	books     service.BookServicer
	view      *view.View
	log       logger.Logger
	maxUpload int64
}

// NewBookHandler creates a new BookHandler. maxUploadMB caps PDF uploads.
func NewBookHandler(bs service.BookServicer, v *view.View, log logger.Logger, maxUploadMB int64) *BookHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &BookHandler{books: bs, view: v, log: log, maxUpload: maxUploadMB << 20}
}

// listHandler renders the library shelf.
func (h *BookHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	books, err := h.books.ListBooks(r.Context())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve books", Code: http.StatusInternalServerError}
	}
	data := map[string]interface{}{
		"Books":    books,
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, r, "books.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render library", Code: http.StatusInternalServerError}
	}
	return nil
}

// viewHandler renders the reader for members and the locked panel for everyone else.
func (h *BookHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	book, err := h.books.ViewBook(r.Context(), chi.URLParam(r, "slug"), userInfo.Subject, &userInfo.Session)
	if err != nil {
		return appError(err, "Book not found")
	}
	data := map[string]interface{}{
		"View":     book,
		"UserInfo": userInfo,
	}
	if err := h.view.Render(w, r, "book.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render book", Code: http.StatusInternalServerError}
	}
	return nil
}

// fileHandler streams the PDF of an unlocked book.
func (h *BookHandler) fileHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	book, f, err := h.books.OpenBook(r.Context(), chi.URLParam(r, "slug"), &userInfo.Session)
	if err != nil {
		return appError(err, "Book not found")
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, book.Slug+".pdf", book.CreatedAt, f)
	return nil
}

type progressPayload struct {
	Page int `json:"page"`
}

// getProgressHandler returns the saved page as JSON.
func (h *BookHandler) getProgressHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	page, err := h.books.Progress(r.Context(), chi.URLParam(r, "slug"), userInfo.Subject, &userInfo.Session)
	if err != nil {
		return appError(err, "Book not found")
	}
	middleware.WriteJSON(w, http.StatusOK, progressPayload{Page: page})
	return nil
}

// putProgressHandler stores the page sent by the reader island.
func (h *BookHandler) putProgressHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var p progressPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&p); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid progress payload", Code: http.StatusBadRequest}
	}
	userInfo := middleware.GetUserInfo(r.Context())
	if err := h.books.SaveProgress(r.Context(), chi.URLParam(r, "slug"), userInfo.Subject, &userInfo.Session, p.Page); err != nil {
		return appError(err, "Book not found")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// uploadHandler adds a PDF to the library.
func (h *BookHandler) uploadHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &middleware.AppError{Error: err, Message: "File is too large", Code: http.StatusRequestEntityTooLarge}
		}
		return &middleware.AppError{Error: err, Message: "Invalid upload", Code: http.StatusBadRequest}
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return &middleware.AppError{Error: err, Message: "A PDF file is required", Code: http.StatusBadRequest}
	}
	defer file.Close()

	pages, _ := strconv.Atoi(r.FormValue("page_count"))
	book, err := h.books.AddBook(r.Context(), service.BookInput{
		Title:       r.FormValue("title"),
		Slug:        r.FormValue("slug"),
		Author:      r.FormValue("author"),
		Description: r.FormValue("description"),
		PageCount:   pages,
	}, file)
	if err != nil {
		return appError(err, "Book not found")
	}
	http.Redirect(w, r, "/club/books/"+book.Slug, http.StatusFound)
	return nil
}
