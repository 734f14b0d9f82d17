package handler

import (
	"bytes"
	"go-club-app/internal/data"
	"go-club-app/internal/logger"
	"go-club-app/internal/middleware"
	"go-club-app/internal/service"
	"go-club-app/internal/view"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ArticleHandler holds the dependencies for the article handlers.
type ArticleHandler struct {
	articles service.ArticleServicer
	view     *view.View
	log      logger.Logger
}

// NewArticleHandler creates a new ArticleHandler with the given dependencies.
func NewArticleHandler(as service.ArticleServicer, v *view.View, log logger.Logger) *ArticleHandler {
	return &ArticleHandler{
		articles: as,
		view:     v,
		log:      log,
	}
}

// listHandler renders the article index. Editors also see drafts.
func (h *ArticleHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	articles, err := h.articles.ListArticles(r.Context(), userInfo.IsEditor())
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to retrieve articles", Code: http.StatusInternalServerError}
	}

	data := map[string]interface{}{
		"Articles": articles,
		"UserInfo": userInfo,
	}
	if err := h.view.Render(w, r, "articles.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render article list", Code: http.StatusInternalServerError}
	}
	return nil
}

// viewHandler renders an article as far as the viewer is entitled to see it.
func (h *ArticleHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	userInfo := middleware.GetUserInfo(r.Context())

	article, err := h.articles.ViewArticle(r.Context(), slug, &userInfo.Session, userInfo.IsEditor())
	if err != nil {
		return appError(err, "Article not found")
	}

	data := map[string]interface{}{
		"View":     article,
		"UserInfo": userInfo,
	}
	if err := h.view.Render(w, r, "article.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render article", Code: http.StatusInternalServerError}
	}
	return nil
}

// newHandler displays an empty article form.
func (h *ArticleHandler) newHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderForm(w, r, &data.Article{BodyFormat: "tree", Body: "[]"}, "", http.StatusOK)
}

// editHandler displays the form for editing an existing article.
func (h *ArticleHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	article, err := h.articles.GetArticle(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return appError(err, "Article not found")
	}
	return h.renderForm(w, r, article, "", http.StatusOK)
}

// renderForm writes the article form with the given status. Nothing is
// written when rendering fails, so the error page can still set its own.
func (h *ArticleHandler) renderForm(w http.ResponseWriter, r *http.Request, a *data.Article, problem string, status int) *middleware.AppError {
	data := map[string]interface{}{
		"Article":  a,
		"Problem":  problem,
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	var buf bytes.Buffer
	if err := h.view.Render(&buf, r, "article_edit.html", data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render edit page", Code: http.StatusInternalServerError}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
	return nil
}

// saveHandler handles the form submission for creating or updating an article.
func (h *ArticleHandler) saveHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := r.ParseForm(); err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid form", Code: http.StatusBadRequest}
	}
	id, err := parseID(r.FormValue("id"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Invalid article id", Code: http.StatusBadRequest}
	}
	in := service.ArticleInput{
		ID:               id,
		Title:            r.FormValue("title"),
		Slug:             r.FormValue("slug"),
		Excerpt:          r.FormValue("excerpt"),
		Body:             r.FormValue("body"),
		Format:           r.FormValue("format"),
		IsPublic:         r.FormValue("public") == "on",
		IsSubscriberOnly: r.FormValue("subscriber_only") == "on",
		AuthorID:         middleware.GetUserInfo(r.Context()).Subject,
	}

	article, err := h.articles.SaveArticle(r.Context(), in)
	if err != nil {
		appErr := appError(err, "Article not found")
		if appErr.Code != http.StatusBadRequest {
			return appErr
		}
		// Show the form again with what was submitted.
		return h.renderForm(w, r, &data.Article{
			ID: in.ID, Title: in.Title, Slug: in.Slug, Excerpt: in.Excerpt, Body: in.Body,
			BodyFormat: in.Format, IsPublic: in.IsPublic, IsSubscriberOnly: in.IsSubscriberOnly,
		}, appErr.Message, http.StatusUnprocessableEntity)
	}

	h.log.Info("Saved article " + article.Slug)
	http.Redirect(w, r, "/articles/"+article.Slug, http.StatusFound)
	return nil
}

// deleteHandler removes an article.
func (h *ArticleHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := chi.URLParam(r, "slug")
	if err := h.articles.DeleteArticle(r.Context(), slug); err != nil {
		return appError(err, "Article not found")
	}
	h.log.Info("Deleted article " + slug)
	http.Redirect(w, r, "/articles", http.StatusFound)
	return nil
}
