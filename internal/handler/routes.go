package handler

import (
	"go-club-app/internal/middleware"
	"go-club-app/internal/session"
	"go-club-app/web"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Handlers groups the route handlers. Auth may be nil when OIDC is not configured.
type Handlers struct {
	Article *ArticleHandler
	Book    *BookHandler
	Account *AccountHandler
	Auth    *AuthHandler
	Seo     *SeoHandler
}

// RouterConfig carries the middleware the router is assembled from.
type RouterConfig struct {
	Sessions       session.Manager
	Viewer         func(http.Handler) http.Handler
	Authorizer     func(http.Handler) http.Handler
	Pages          func(middleware.AppHandler) http.Handler
	API            func(middleware.AppHandler) http.Handler
	AllowedOrigins []string
}

// NewRouter creates and configures a new chi router.
func NewRouter(h Handlers, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	// Static assets and crawler files sit outside sessions and authorization.
	static, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	if h.Seo != nil {
		r.Get("/robots.txt", h.Seo.robotsHandler)
		r.Get("/sitemap.xml", h.Seo.sitemapHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(cfg.Sessions.LoadAndSave)
		r.Use(middleware.SettingsMiddleware)
		r.Use(cfg.Viewer)
		r.Use(cfg.Authorizer)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/articles", http.StatusFound)
		})

		if h.Auth != nil {
			r.Get("/auth/login", h.Auth.handleLogin)
			r.Get("/auth/callback", h.Auth.handleCallback)
		}
		r.Get("/auth/logout", authOrNil(h.Auth))

		r.Method("GET", "/articles", cfg.Pages(h.Article.listHandler))
		r.Method("GET", "/articles/{slug}", cfg.Pages(h.Article.viewHandler))

		r.Method("GET", "/club/join", cfg.Pages(h.Account.joinHandler))
		r.Method("GET", "/club/books", cfg.Pages(h.Book.listHandler))
		r.Method("GET", "/club/books/{slug}", cfg.Pages(h.Book.viewHandler))
		r.Method("GET", "/club/books/{slug}/file", cfg.Pages(h.Book.fileHandler))

		r.Route("/admin", func(r chi.Router) {
			r.Method("GET", "/articles", cfg.Pages(h.Article.listHandler))
			r.Method("GET", "/articles/new", cfg.Pages(h.Article.newHandler))
			r.Method("GET", "/articles/{slug}/edit", cfg.Pages(h.Article.editHandler))
			r.Method("POST", "/articles/save", cfg.Pages(h.Article.saveHandler))
			r.Method("POST", "/articles/{slug}/delete", cfg.Pages(h.Article.deleteHandler))
			r.Method("POST", "/books", cfg.Pages(h.Book.uploadHandler))
			r.Method("POST", "/members/subscription", cfg.API(h.Account.subscriptionHandler))
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(cors.New(cors.Options{
				AllowedOrigins:   cfg.AllowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPut},
				AllowedHeaders:   []string{"Authorization", "Content-Type"},
				AllowCredentials: true,
				MaxAge:           300,
			}).Handler)

			r.Method("GET", "/token", cfg.API(h.Account.tokenHandler))
			r.Method("GET", "/books/{slug}/progress", cfg.API(h.Book.getProgressHandler))
			r.Method("PUT", "/books/{slug}/progress", cfg.API(h.Book.putProgressHandler))
		})
	})

	return r
}

// authOrNil returns the logout handler, or a redirect home when login is disabled.
func authOrNil(h *AuthHandler) http.HandlerFunc {
	if h == nil {
		return func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/", http.StatusFound)
		}
	}
	return h.handleLogout
}
