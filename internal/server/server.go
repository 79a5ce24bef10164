// Package server contains the HTTP handlers for the blog API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"folio/internal/bootstrap"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	repo           repository.PostRepository
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager
	blogService    *service.BlogService

	initMu   sync.Mutex
	initDone bool
	initErr  error
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.Repo, rt.DB, rt.Redis), nil
}

// NewServerWithDeps creates a Server using already-built dependencies. db and
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, repo repository.PostRepository, db *gorm.DB, redisClient *redis.Client) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("folio-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		repo:           repo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		events = s.notifier
	}
	s.blogService = service.NewBlogService(repo, events, s.featureFlags, cfg.PostsPerPage)

	return s
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Folio API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())

	// after requestid and context middleware
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Client-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.HealthCheck)
	api.Get("/status", s.GetStatus)
	api.Get("/about", s.GetAbout)
	api.Get("/feature-flags", s.GetFeatureFlags)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	// /recent before the generic /:id route
	posts.Get("/recent", s.GetRecentPosts)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:id/posts", s.GetCategoryPosts)
}

// InitializeRepository loads the dataset and records the outcome for the
// readiness probe. It blocks until the repository is ready or has failed.
func (s *Server) InitializeRepository(ctx context.Context) error {
	err := s.repo.Initialize(ctx)

	s.initMu.Lock()
	s.initDone = true
	s.initErr = err
	s.initMu.Unlock()

	if err != nil {
		middleware.Logger.ErrorContext(ctx, "repository initialization failed", slog.String("error", err.Error()))
		return err
	}
	middleware.Logger.InfoContext(ctx, "repository ready")
	return nil
}

func (s *Server) repositoryState() (done bool, err error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	return s.initDone, s.initErr
}

// HealthCheck is an alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The memory store has no
// database, and Redis only counts when it was configured.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	repoStatus := "ready"
	switch done, err := s.repositoryState(); {
	case !done:
		repoStatus = "loading"
	case err != nil:
		repoStatus = "failed"
	}

	dbStatus := "not_configured"
	if s.db != nil {
		dbStatus = "healthy"
		if err := database.Ping(ctx, s.db); err != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "not_configured"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else if s.config.RedisURL != "" {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if repoStatus != "ready" || dbStatus == "unhealthy" || redisStatus == "unhealthy" || redisStatus == "unavailable" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Folio",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"repository": repoStatus,
			"database":   dbStatus,
			"redis":      redisStatus,
		},
		"time": time.Now(),
	})
}

// GetStatus handles GET /api/status
func (s *Server) GetStatus(c *fiber.Ctx) error {
	return c.JSON(s.blogService.Status())
}

// Start initializes the repository in the background, subscribes to post
// events and listens until the app is shut down.
func (s *Server) Start() error {
	app := s.NewApp()

	go func() {
		_ = s.InitializeRepository(s.shutdownCtx)
	}()

	if s.notifier != nil {
		go func() {
			if err := s.notifier.Subscribe(s.shutdownCtx, s.logEvent); err != nil {
				middleware.Logger.Warn("post event subscription failed", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

func (s *Server) logEvent(ev notifications.Event) {
	middleware.Logger.Info("post event received",
		slog.String("event_type", ev.Type),
		slog.Time("timestamp", ev.Timestamp),
	)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
