// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"memeverse/internal/assets"
	"memeverse/internal/bootstrap"
	"memeverse/internal/catalog"
	"memeverse/internal/config"
	"memeverse/internal/middleware"
	"memeverse/internal/models"
	"memeverse/internal/notifications"
	"memeverse/internal/observability"
	"memeverse/internal/service"
	"memeverse/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *storage.RecordStore
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	origin         string
	changes        notifications.ChangeFeed
	natsNotifier   *notifications.NATSNotifier
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	index       *service.LikedMemeIndex
	ledger      *service.LikeLedger
	comments    *service.CommentLog
	profiles    *service.ProfileStore
	leaderboard *service.LeaderboardAggregator
	feed        *service.FeedService
	uploads     *service.UploadService
}

// NewServer connects the store, Redis, the catalog, the asset store and the
// change feed described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	store, redisClient, err := bootstrap.InitRuntime(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	provider, err := catalog.NewProvider(cfg, redisClient)
	if err != nil {
		return nil, err
	}

	var assetStore assets.Store
	if cfg.UploadsEnabled() {
		cs, err := assets.NewCloudinaryStore(cfg)
		if err != nil {
			return nil, err
		}
		assetStore = cs
	} else {
		observability.Logger.Info("no asset store configured, uploads are disabled")
	}

	s := NewServerWithDeps(cfg, store, provider, assetStore, redisClient)

	switch {
	case cfg.NATSURL != "":
		n, err := notifications.ConnectNATS(cfg.NATSURL, s.origin)
		if err != nil {
			return nil, err
		}
		s.natsNotifier = n
		s.changes = n
	case redisClient != nil:
		s.changes = notifications.NewNotifier(redisClient, s.origin)
	}
	if s.changes != nil {
		store.SetPublisher(s.changes)
	}

	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// assetStore and redisClient may be nil.
func NewServerWithDeps(
	cfg *config.Config,
	store *storage.RecordStore,
	provider catalog.Provider,
	assetStore assets.Store,
	redisClient *redis.Client,
) *Server {
	index := service.NewLikedMemeIndex(store)
	ledger := service.NewLikeLedger(store, index)
	profiles := service.NewProfileStore(store)

	return &Server{
		config:         cfg,
		store:          store,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("memeverse-api"),
		origin:         uuid.NewString(),
		index:          index,
		ledger:         ledger,
		comments:       service.NewCommentLog(store, nil),
		profiles:       profiles,
		leaderboard:    service.NewLeaderboardAggregator(ledger, index, profiles, cfg.LeaderboardSize),
		feed:           service.NewFeedService(provider, ledger),
		uploads:        service.NewUploadService(assetStore, cfg.UploadMaxBytes()),
	}
}

// NewApp creates the Fiber app with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "MemeVerse API",
		BodyLimit: int(s.config.UploadMaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, err)
			}
			return respondError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	memes := api.Group("/memes")
	memes.Get("/", s.ExploreMemes)
	memes.Get("/trending", s.GetTrending)
	// Specific /:id/:resource routes before the generic /:id route
	memes.Get("/:id/like", s.GetLike)
	memes.Post("/:id/like", s.ToggleLike)
	memes.Get("/:id/comments", s.GetComments)
	memes.Post("/:id/comments", s.CreateComment)
	memes.Delete("/:id/comments/:commentId", s.DeleteComment)
	memes.Get("/:id", s.GetMeme)

	profile := api.Group("/profile")
	profile.Get("/", s.GetProfile)
	profile.Put("/", s.UpdateProfile)
	profile.Put("/avatar", s.UploadAvatar)
	profile.Delete("/avatar", s.DeleteAvatar)
	profile.Get("/liked", s.GetLikedMemes)

	api.Get("/leaderboard", s.GetLeaderboard)

	api.Post("/uploads", middleware.RateLimit(s.redis, 10, time.Minute, "uploads"), s.UploadMeme)
}

// Bootstrap repairs the liked-meme index and starts listening for changes
// written by other processes. It must run before serving requests.
func (s *Server) Bootstrap(ctx context.Context) error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())

	report, err := s.ledger.Reconcile(ctx, s.feed.MemeLookup())
	if err != nil {
		return fmt.Errorf("reconcile liked memes: %w", err)
	}
	observability.Logger.InfoContext(ctx, "liked meme index checked",
		slog.Int("dropped", len(report.Dropped)),
		slog.Int("restored", len(report.Restored)),
		slog.Int("missing", len(report.Missing)),
	)

	if s.changes != nil {
		err := s.changes.StartChangeSubscriber(s.shutdownCtx, func(change models.StoreChange) {
			observability.Logger.Debug("store changed by another process",
				slog.String("key", change.Key),
				slog.Int64("version", change.Version),
				slog.String("origin", change.Origin),
			)
		})
		if err != nil {
			observability.Logger.WarnContext(ctx, "change subscriber not started", slog.String("error", err.Error()))
		}
	}
	return nil
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the store and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"backend": s.store.BackendName(),
		"time":    time.Now(),
	})
}

// Shutdown releases the change feed, the store and Redis.
func (s *Server) Shutdown(_ context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}
	if s.natsNotifier != nil {
		s.natsNotifier.Close()
	}

	if err := s.store.Close(); err != nil {
		observability.Logger.Error("error closing store", slog.String("error", err.Error()))
	}
	// The redis backend closes the shared client itself.
	if s.redis != nil && s.config.StoreDriver != config.DriverRedis {
		if err := s.redis.Close(); err != nil {
			observability.Logger.Error("error closing redis", slog.String("error", err.Error()))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return nil
}
