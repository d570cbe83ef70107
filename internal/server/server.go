// Package server contains the HTTP handlers for the reeltrack API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "reeltrack/docs" // swagger docs
	"reeltrack/internal/cache"
	"reeltrack/internal/config"
	"reeltrack/internal/database"
	"reeltrack/internal/middleware"
	"reeltrack/internal/models"
	"reeltrack/internal/mongostore"
	"reeltrack/internal/repository"
	"reeltrack/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	mongo          *mongostore.Store
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	listRepo       repository.ListRepository
	relationRepo   repository.RelationRepository
	reviewRepo     repository.ReviewRepository
	authService    *service.AuthService
	reviewService  *service.ReviewService
	favorites      *service.ListService
	watchlist      *service.ListService
	socialService  *service.SocialService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo index setup failed: %w", err)
		}
		server.mongo = store
		server.userRepo = mongostore.NewUserRepository(store)
		server.listRepo = mongostore.NewListRepository(store)
		server.relationRepo = mongostore.NewRelationRepository(store)
		server.reviewRepo = mongostore.NewReviewRepository(store)
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		server.db = db
		server.useGormRepositories(db)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	server.redis = cache.GetClient()

	// Initialize Prometheus metrics
	server.promMiddleware = middleware.InitMetrics("reeltrack-api")

	server.initServices()
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("reeltrack-api"),
	}
	server.useGormRepositories(db)
	server.initServices()
	return server, nil
}

func (s *Server) useGormRepositories(db *gorm.DB) {
	s.userRepo = repository.NewUserRepository(db)
	s.listRepo = repository.NewListRepository(db)
	s.relationRepo = repository.NewRelationRepository(db)
	s.reviewRepo = repository.NewReviewRepository(db)
}

func (s *Server) initServices() {
	s.authService = service.NewAuthService(s.userRepo)
	s.reviewService = service.NewReviewService(s.reviewRepo, s.userRepo)
	s.favorites = service.NewListService(models.ListFavorites, s.listRepo, s.userRepo)
	s.watchlist = service.NewListService(models.ListWatchlist, s.listRepo, s.userRepo)
	s.socialService = service.NewSocialService(s.userRepo, s.relationRepo)
	s.userService = service.NewUserService(s.userRepo, s.listRepo, s.relationRepo)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Spans for every request; no-op unless tracing is initialized
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so error responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// 100 requests per minute per IP across the whole API
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
				Error: "Too many requests, try again later",
				Code:  middleware.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Reeltrack Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	limit := middleware.NewRateLimiter(s.redis, s.config.Env)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", limit.Limit(3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", limit.Limit(10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Reviews: listing is public, the rest needs a token
	reviews := api.Group("/reviews")
	reviews.Delete("/delete/:reviewId", s.AuthRequired(), s.DeleteReview)
	reviews.Get("/:movieId", s.GetMovieReviews)
	reviews.Post("/:movieId", s.AuthRequired(), limit.Limit(20, time.Minute, "review"), s.UpsertReview)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	user := protected.Group("/user")
	user.Get("/profile", s.GetProfile)
	user.Put("/profile", s.UpdateProfile)
	user.Put("/change-password", limit.Limit(5, 10*time.Minute, "change_password"), s.ChangePassword)

	user.Post("/favorites", s.AddListItem(s.favorites))
	user.Get("/favorites", s.GetListItems(s.favorites))
	user.Delete("/favorites/:movieId", s.RemoveListItem(s.favorites))

	user.Post("/watchlist", s.AddListItem(s.watchlist))
	user.Get("/watchlist", s.GetListItems(s.watchlist))
	user.Delete("/watchlist/:movieId", s.RemoveListItem(s.watchlist))

	user.Post("/follow/:id", limit.Limit(30, time.Minute, "follow"), s.Follow)
	user.Post("/unfollow/:id", s.Unfollow)
	user.Get("/:id/followers", s.GetFollowers)
	user.Get("/:id/following", s.GetFollowing)
}

// HealthCheck is a simple alias for ReadinessCheck
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

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	switch {
	case s.db != nil:
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	case s.mongo != nil:
		if err := s.mongo.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	default:
		dbStatus = "unavailable"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Token revocation and rate limits need Redis
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"service": "reeltrack",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Reeltrack API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("http shutdown", "error", err)
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("close sql db", "error", cerr)
			}
		}
	}

	if s.mongo != nil {
		if merr := s.mongo.Close(ctx); merr != nil {
			middleware.Logger.Error("close mongo", "error", merr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("close redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server stopped")
	return nil
}
