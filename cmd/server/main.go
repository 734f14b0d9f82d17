package main

import (
	"context"
	"errors"
	"fmt"
	"go-club-app/internal/auth"
	"go-club-app/internal/cache"
	"go-club-app/internal/config"
	"go-club-app/internal/content"
	"go-club-app/internal/data"
	"go-club-app/internal/handler"
	"go-club-app/internal/logger"
	"go-club-app/internal/middleware"
	"go-club-app/internal/service"
	"go-club-app/internal/session"
	"go-club-app/internal/view"
	"go-club-app/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, logger.Output(cfg.Log))

	// --- Pre-flight Checks ---
	if cfg.Token.Secret == "" {
		log.Fatal(errors.New("token secret not set"), "Please set a secure CLUB_TOKEN_SECRET environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = sessionStore(cfg.DB.Driver, db)
	sessionManager.Lifetime = cfg.Session.Lifetime
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	var authenticator *auth.Authenticator
	if cfg.OIDC.IssuerURL != "" {
		authenticator, err = auth.NewAuthenticator(context.Background(), &cfg.OIDC)
		if err != nil {
			log.Fatal(err, "Failed to initialize authenticator")
		}
	} else {
		log.Warn("No OIDC issuer configured; sign-in is disabled.")
	}
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN, cfg.Auth.ModelPath)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	auth.SeedAdmins(enforcer, cfg.Auth.Admins, log)
	tokens, err := auth.NewTokenIssuer(cfg.Token)
	if err != nil {
		log.Fatal(err, "Failed to initialize token issuer")
	}
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	renderCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer renderCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	articleRepository := data.NewSQLArticleRepository(db)
	userRepository := data.NewUserRepository(db)
	bookRepository := data.NewBookRepository(db)

	articleService := service.NewArticleService(articleRepository, content.NewRenderer(), renderCache, log)
	bookService := service.NewBookService(bookRepository, userRepository, cfg.Library.Dir, log)
	accountService := service.NewAccountService(userRepository, enforcer, log)

	handlers := handler.Handlers{
		Article: handler.NewArticleHandler(articleService, viewService, log),
		Book:    handler.NewBookHandler(bookService, viewService, log, cfg.Library.MaxUploadMB),
		Account: handler.NewAccountHandler(accountService, tokens, viewService, log),
		Seo:     handler.NewSeoHandler(articleService, cfg.Server.BaseURL),
	}
	if authenticator != nil {
		handlers.Auth = handler.NewAuthHandler(authenticator, sessionManager, accountService, log)
	}

	resolver := session.NewResolver(sessionManager, tokens, userRepository, log)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(handlers, handler.RouterConfig{
		Sessions:       sessionManager,
		Viewer:         middleware.Viewer(resolver, enforcer, log),
		Authorizer:     middleware.Authorizer(enforcer, log),
		Pages:          middleware.Error(log, viewService),
		API:            middleware.JSON(log),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go purgeCache(ctx, renderCache, log)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}

// sessionStore picks the scs store matching the database driver.
func sessionStore(driver string, db *sqlx.DB) scs.Store {
	if driver == "mysql" {
		return mysqlstore.New(db.DB)
	}
	return sqlite3store.New(db.DB)
}

// purgeCache drops expired render cache rows until ctx is cancelled.
func purgeCache(ctx context.Context, c *cache.Cache, log logger.Logger) {
	ticker := time.NewTicker(c.TTL())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.PurgeExpired()
			if err != nil {
				log.Error(err, "Failed to purge render cache")
				continue
			}
			if n > 0 {
				log.Debug(fmt.Sprintf("Purged %d expired cache entries", n))
			}
		}
	}
}
