package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shadowdreamer/drawwat/internal/config"
	"github.com/shadowdreamer/drawwat/internal/database"
	"github.com/shadowdreamer/drawwat/internal/handlers"
	"github.com/shadowdreamer/drawwat/internal/logging"
	"github.com/shadowdreamer/drawwat/internal/middleware"
	"github.com/shadowdreamer/drawwat/internal/services"
	"github.com/shadowdreamer/drawwat/internal/storage"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	// Initialize logger
	logger := logging.New()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{
			"env": cfg.Server.Environment,
		})
	}

	logger.Info("Starting DrawWat server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)
	imageStore := storage.NewFS(cfg.Storage.Dir)

	puzzleService := services.NewPuzzleService(dbAdapter, imageStore, cfg.Storage.PublicURL)
	userService := services.NewUserService(dbAdapter, redisAdapter)
	authService := services.NewAuthService(redisAdapter)

	var sender services.EmailSender
	if cfg.Email.Provider == "resend" && cfg.Email.ResendAPIKey != "" {
		sender = services.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	} else {
		sender = services.ConsoleSender{}
	}
	puzzleService.SetNotificationService(services.NewNotificationService(dbAdapter, sender, cfg.Server.BaseURL))

	oauthProviders := map[services.Provider]services.OAuthProvider{}
	if cfg.OAuth.GitHub.Enabled {
		githubProvider, err := services.NewGitHubProvider(services.OAuthProviderConfig{
			ClientID:     cfg.OAuth.GitHub.ClientID,
			ClientSecret: cfg.OAuth.GitHub.ClientSecret,
			RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		})
		if err != nil {
			return fmt.Errorf("initializing github provider: %w", err)
		}
		oauthProviders[services.ProviderGitHub] = githubProvider
	}
	if cfg.OAuth.Bangumi.Enabled {
		bangumiProvider, err := services.NewBangumiProvider(services.OAuthProviderConfig{
			ClientID:     cfg.OAuth.Bangumi.ClientID,
			ClientSecret: cfg.OAuth.Bangumi.ClientSecret,
			RedirectURL:  cfg.OAuth.Bangumi.RedirectURL,
		})
		if err != nil {
			return fmt.Errorf("initializing bangumi provider: %w", err)
		}
		oauthProviders[services.ProviderBangumi] = bangumiProvider
	}
	if cfg.OAuth.OIDC.Enabled {
		oidcProvider, err := services.NewOIDCProvider(context.Background(), services.OIDCProviderConfig{
			ClientID:     cfg.OAuth.OIDC.ClientID,
			ClientSecret: cfg.OAuth.OIDC.ClientSecret,
			RedirectURL:  cfg.OAuth.OIDC.RedirectURL,
			IssuerURL:    cfg.OAuth.OIDC.IssuerURL,
			Scopes:       cfg.OAuth.OIDC.Scopes,
		})
		if err != nil {
			return fmt.Errorf("initializing oidc provider: %w", err)
		}
		oauthProviders[services.ProviderOIDC] = oidcProvider
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, oauthProviders)
	userHandler := handlers.NewUserHandler(puzzleService)
	puzzleHandler := handlers.NewPuzzleHandler(puzzleService, imageStore)
	ogImageHandler := handlers.NewOGImageHandler(puzzleService, userService, imageStore)

	// Initialize middleware
	authMiddleware := middleware.NewAuthenticator(authService, userService)
	requestLogger := middleware.NewRequestLogger(logger)

	guessRateLimit := resolveGuessRateLimit(cfg, logger, os.LookupEnv)
	guessRateLimiter := middleware.NewRateLimiter(redisDB.Client, guessRateLimit, time.Minute, "ratelimit:guess:", func(r *http.Request) string {
		user := handlers.GetUserFromContext(r.Context())
		if user != nil {
			return user.ID.String()
		}
		return ""
	}, true)

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Auth endpoints
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/{provider}", authHandler.Login)

	// User endpoints
	mux.HandleFunc("GET /api/user/me", userHandler.Me)
	mux.HandleFunc("GET /api/user/me/puzzles", userHandler.MyPuzzles)

	// Puzzle endpoints
	mux.HandleFunc("POST /api/puzzles", puzzleHandler.Create)
	mux.HandleFunc("GET /api/puzzles", puzzleHandler.List)
	mux.HandleFunc("GET /api/puzzles/{id}", puzzleHandler.Get)
	mux.HandleFunc("DELETE /api/puzzles/{id}", puzzleHandler.Delete)
	mux.Handle("POST /api/puzzles/{id}/guess", guessRateLimiter.Middleware(http.HandlerFunc(puzzleHandler.Guess)))
	mux.HandleFunc("POST /api/puzzles/{id}/giveup", puzzleHandler.GiveUp)
	mux.HandleFunc("GET /api/puzzles/{id}/giveup", puzzleHandler.GiveUpStatus)
	mux.HandleFunc("GET /api/puzzles/{id}/guesses", puzzleHandler.Guesses)
	mux.HandleFunc("GET /api/puzzles/{id}/stats", puzzleHandler.Stats)
	mux.HandleFunc("GET /api/puzzles/{id}/solves", puzzleHandler.Solves)
	mux.HandleFunc("GET /api/puzzles/{id}/wrong-guesses", puzzleHandler.WrongGuesses)
	mux.HandleFunc("GET /api/puzzles/{id}/answer", puzzleHandler.Answer)

	// OpenGraph share cards (public)
	mux.HandleFunc("GET /og/puzzle/{id}", ogImageHandler.Serve)

	// Stored drawings
	images := http.FileServer(http.Dir(cfg.Storage.Dir))
	mux.Handle("GET /images/", http.StripPrefix("/images/", images))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Middleware(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

func resolveGuessRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	guessRateLimit := int64(30)
	if cfg.Server.Environment == "development" {
		guessRateLimit = 300
		logger.Info("Using development guess rate limit", map[string]interface{}{"limit": guessRateLimit})
	}
	if v, ok := lookupEnv("GUESS_RATE_LIMIT"); ok && v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			guessRateLimit = parsed
			logger.Info("Using guess rate limit from env", map[string]interface{}{"limit": guessRateLimit})
		} else {
			logger.Warn("Invalid GUESS_RATE_LIMIT; using default", map[string]interface{}{
				"value": v,
				"limit": guessRateLimit,
			})
		}
	}
	return guessRateLimit
}
