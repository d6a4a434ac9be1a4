package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"go-media-backend/internal/config"
	"go-media-backend/internal/database"
	"go-media-backend/internal/handler"
	"go-media-backend/internal/media"
	"go-media-backend/internal/middleware"
	"go-media-backend/internal/repository"
	"go-media-backend/internal/router"
	"go-media-backend/internal/service"
	"go-media-backend/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	log          *slog.Logger
	cleanupFuncs []func()
}

// New connects every dependency and builds the HTTP server. Dependencies
// opened before a failure are released before returning.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	a := &App{log: log}
	defer func() {
		if err != nil {
			a.cleanup()
		}
	}()

	if err := os.MkdirAll(cfg.UploadTempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload temp dir: %w", err)
	}

	log.Info("connecting to database")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	log.Info("database ready")

	objects, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
		UsePathStyle:  cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	pool := db.Pool
	users := repository.NewUserRepository(pool)
	videos := repository.NewVideoRepository(pool)
	comments := repository.NewCommentRepository(pool)
	tweets := repository.NewTweetRepository(pool)

	images := media.NewImageNormalizer(cfg.ImageMaxDimension, cfg.UploadTempDir)
	prober := media.NewFFProbe(cfg.FFProbePath)

	tokens := service.NewTokenAuthority(users, users, cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	auditService := service.NewAuditService(repository.NewAuditRepository(pool))
	authService := service.NewAuthService(users, tokens, auditService)
	userService := service.NewUserService(users, objects, images)
	subscriptionService := service.NewSubscriptionService(repository.NewSubscriptionRepository(pool), users)
	channelService := service.NewChannelService(users, repository.NewStatsRepository(pool), videos, tweets)
	videoService := service.NewVideoService(videos, users, objects, images, prober, service.VideoServiceOptions{
		AllowedVideoTypes: cfg.AllowedVideoTypes,
		AllowedImageTypes: cfg.AllowedImageTypes,
	})
	commentService := service.NewCommentService(comments, videos)
	likeService := service.NewLikeService(repository.NewLikeRepository(pool), videos, comments, tweets)
	playlistService := service.NewPlaylistService(repository.NewPlaylistRepository(pool), videos, users)

	opts := router.Options{
		Logger:    middleware.Logging(log),
		RateLimit: a.rateLimiter(ctx, cfg),
	}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			database.NewPoolCollector(pool),
		)
		metrics, err := middleware.NewMetrics(registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts.Metrics = metrics
		opts.Gatherer = registry
	}

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieOptions{
			Secure:     cfg.CookieSecure,
			AccessTTL:  tokens.AccessTTL(),
			RefreshTTL: tokens.RefreshTTL(),
		}),
		User:         handler.NewUserHandler(userService, cfg.UploadTempDir),
		Audit:        handler.NewAuditHandler(auditService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Channel:      handler.NewChannelHandler(channelService),
		Video:        handler.NewVideoHandler(videoService, cfg.UploadTempDir),
		Comment:      handler.NewCommentHandler(commentService),
		Like:         handler.NewLikeHandler(likeService),
		Playlist:     handler.NewPlaylistHandler(playlistService),
		Health:       handler.NewHealthHandler(db),
	}, opts)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	return a, nil
}

// rateLimiter prefers a shared Redis window when REDIS_ADDR is set and
// reachable; otherwise each instance limits on its own.
func (a *App) rateLimiter(ctx context.Context, cfg *config.Config) *middleware.RateLimitMiddleware {
	if cfg.RedisAddr == "" {
		return middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.log.Warn("redis unavailable, using in-process rate limits",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	}

	a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = client.Close() })
	a.log.Info("rate limits shared through redis", slog.String("addr", cfg.RedisAddr))
	return middleware.NewRedisRateLimitMiddleware(client, cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("server starting", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}

// Migrate applies the schema and exits.
func Migrate(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	log.Info("schema up to date")
	return nil
}
