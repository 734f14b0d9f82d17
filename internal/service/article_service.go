package service

import (
	"context"
	"errors"
	"fmt"
	"go-club-app/internal/content"
	"go-club-app/internal/data"
	"go-club-app/internal/entitlement"
	"go-club-app/internal/logger"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"
)

// ArticleRepository defines the interface for database operations on articles.
type ArticleRepository interface {
	CreateArticle(ctx context.Context, a *data.Article) error
	GetArticleBySlug(ctx context.Context, slug string) (*data.Article, error)
	GetArticleByID(ctx context.Context, id int64) (*data.Article, error)
	UpdateArticle(ctx context.Context, a *data.Article) error
	ListArticles(ctx context.Context, includeDrafts bool) ([]*data.Article, error)
	DeleteArticle(ctx context.Context, id int64) error
}

// RenderCache stores rendered article HTML.
type RenderCache interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	DeletePrefix(prefix string) error
}

// ArticleServicer defines the interface for interacting with articles.
type ArticleServicer interface {
	ViewArticle(ctx context.Context, slug string, viewer *entitlement.ViewerSession, editor bool) (*ArticleView, error)
	GetArticle(ctx context.Context, slug string) (*data.Article, error)
	ListArticles(ctx context.Context, includeDrafts bool) ([]*data.Article, error)
	SaveArticle(ctx context.Context, in ArticleInput) (*data.Article, error)
	DeleteArticle(ctx context.Context, slug string) error
}

// ArticleView is an article prepared for one viewer.
type ArticleView struct {
	Article    *data.Article
	Decision   entitlement.Decision
	LockReason entitlement.LockReason
	// Content is the full body for Full and the teaser otherwise.
	Content template.HTML
}

// Locked reports whether only a teaser is shown.
func (v *ArticleView) Locked() bool {
	return v.Decision != entitlement.Full
}

// ArticleInput is a create (ID 0) or full replace of an article.
type ArticleInput struct {
	ID               int64
	Title            string
	Slug             string
	Excerpt          string
	Body             string
	Format           string
	IsPublic         bool
	IsSubscriberOnly bool
	AuthorID         string
}

// ArticleService provides business logic for articles.
type ArticleService struct {
	repo     ArticleRepository
	renderer *content.Renderer
	cache    RenderCache
	log      logger.Logger
	now      func() time.Time
}

// NewArticleService creates a new ArticleService. cache may be nil.
func NewArticleService(repo ArticleRepository, renderer *content.Renderer, cache RenderCache, log logger.Logger) *ArticleService {
	return &ArticleService{repo: repo, renderer: renderer, cache: cache, log: log, now: time.Now}
}

// ViewArticle loads an article and decides how much of it viewer may see.
// Editors always get the full article, drafts included.
func (s *ArticleService) ViewArticle(ctx context.Context, slug string, viewer *entitlement.ViewerSession, editor bool) (*ArticleView, error) {
	a, err := s.repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	decision := entitlement.Decide(a.IsPublic, a.IsSubscriberOnly, viewer)
	if editor {
		decision = entitlement.Full
	}
	view := &ArticleView{Article: a, Decision: decision}

	if decision == entitlement.Full {
		view.Content = s.fullContent(a)
		return view, nil
	}

	view.LockReason = entitlement.LockReasonFor(viewer)
	fromExcerpt := entitlement.TeaserFromExcerpt(a.IsPublic, a.IsSubscriberOnly)
	var body content.Body
	if !fromExcerpt {
		body = s.body(a)
	}
	view.Content = s.renderer.Teaser(body, a.Excerpt, fromExcerpt)
	return view, nil
}

func (s *ArticleService) fullContent(a *data.Article) template.HTML {
	key := fmt.Sprintf("article:%d:%d", a.ID, a.UpdatedAt.UnixNano())
	if s.cache != nil {
		if cached, err := s.cache.Get(key); err != nil {
			s.log.Error(err, "Failed to read render cache")
		} else if cached != nil {
			return template.HTML(cached)
		}
	}

	out := s.renderer.Render(s.body(a))
	if s.cache != nil {
		if err := s.cache.Put(key, []byte(out)); err != nil {
			s.log.Error(err, "Failed to write render cache")
		}
	}
	return out
}

// body parses the stored body. Nodes of a corrupt tree that cannot be
// decoded are logged and left out so the rest of the page still loads.
func (s *ArticleService) body(a *data.Article) content.Body {
	format, err := content.ParseFormat(a.BodyFormat)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Article %d has unknown body format %q; detecting", a.ID, a.BodyFormat))
		format = content.DetectFormat(a.Body)
	}
	b, err := content.ParseBody(format, a.Body)
	if err != nil {
		s.log.Error(err, fmt.Sprintf("Article %d has a corrupt body", a.ID))
		if b.Format != content.FormatTree {
			return content.Body{Format: content.FormatTree}
		}
	}
	return b
}

// GetArticle returns the stored article for editing.
func (s *ArticleService) GetArticle(ctx context.Context, slug string) (*data.Article, error) {
	return s.repo.GetArticleBySlug(ctx, slug)
}

// ListArticles returns articles newest first; drafts only when asked.
func (s *ArticleService) ListArticles(ctx context.Context, includeDrafts bool) ([]*data.Article, error) {
	return s.repo.ListArticles(ctx, includeDrafts)
}

// SaveArticle validates in and creates or fully replaces the article.
func (s *ArticleService) SaveArticle(ctx context.Context, in ArticleInput) (*data.Article, error) {
	title := strings.TrimSpace(in.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 255 {
		return nil, fmt.Errorf("%w: title must be between 3 and 255 characters", ErrInvalidInput)
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: title does not produce a usable slug", ErrInvalidInput)
	}

	format, err := content.ParseFormat(in.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	body := in.Body
	switch format {
	case content.FormatTree:
		if _, err := content.DecodeDocument([]byte(body)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	case content.FormatHTML:
		body = s.renderer.Sanitize(body)
	}

	if existing, err := s.repo.GetArticleBySlug(ctx, slug); err == nil && existing.ID != in.ID {
		return nil, fmt.Errorf("%w: slug %q is already in use", ErrInvalidInput, slug)
	} else if err != nil && !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	a := &data.Article{CreatedAt: now, AuthorID: in.AuthorID}
	if in.ID != 0 {
		a, err = s.repo.GetArticleByID(ctx, in.ID)
		if err != nil {
			return nil, err
		}
	}
	a.Title = title
	a.Slug = slug
	a.Excerpt = strings.TrimSpace(in.Excerpt)
	a.Body = body
	a.BodyFormat = string(format)
	a.IsPublic = in.IsPublic
	a.IsSubscriberOnly = in.IsSubscriberOnly
	a.UpdatedAt = now

	if in.ID == 0 {
		err = s.repo.CreateArticle(ctx, a)
	} else {
		err = s.repo.UpdateArticle(ctx, a)
	}
	if err != nil {
		return nil, err
	}
	if in.ID != 0 {
		// Stored timestamps may be coarser than the edit rate, so the
		// updated_at in the cache key alone does not retire old renders.
		s.dropRenders(a.ID)
	}
	return a, nil
}

// DeleteArticle removes an article and its cached renders.
func (s *ArticleService) DeleteArticle(ctx context.Context, slug string) error {
	a, err := s.repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteArticle(ctx, a.ID); err != nil {
		return err
	}
	s.dropRenders(a.ID)
	return nil
}

func (s *ArticleService) dropRenders(id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(fmt.Sprintf("article:%d:", id)); err != nil {
		s.log.Error(err, "Failed to drop cached renders")
	}
}
