// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "agora/docs" // swagger docs
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/featureflags"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/notifications"
	"agora/internal/repository"
	"agora/internal/service"

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

const bodyLimit = service.DefaultImageMaxUploadBytes + 1<<20

// Server holds the dependencies shared by every handler.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Authenticator
	featureFlags   *featureflags.Manager
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	notifier *notifications.Notifier
	hub      *notifications.Hub

	authService    *service.AuthService
	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
	commentService *service.CommentService
	messageService *service.MessageService
	imageService   *service.ImageService
}

// NewServer wires services over an already connected database. redisClient
// may be nil; caching, token revocation and realtime delivery are then off.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	store := repository.NewStore(db)
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("agora-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTTTL, redisClient),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		authService:    service.NewAuthService(store.Users(), 0),
		userService:    service.NewUserService(store),
		followService:  service.NewFollowService(store),
		postService:    service.NewPostService(store),
		commentService: service.NewCommentService(store),
		imageService:   service.NewImageService(cfg.UploadDir, 0),
	}
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())

	var publisher service.MessagePublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		publisher = s.notifier
	}
	s.messageService = service.NewMessageService(store, publisher)

	return s, nil
}

// App builds the Fiber application with middleware and routes. It is
// built once and reused.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "Agora API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if !errors.As(err, &fiberErr) {
				middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			}
			return models.RespondWithError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(middleware.RequestTimeout(s.config.RequestTimeout))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Static("/media", s.imageService.UploadDir(), fiber.Static{MaxAge: 86400})

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Agora Metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", s.auth.Optional(), s.GetFeatureFlags)

	required := s.auth.Required()
	optional := s.auth.Optional()

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", required, s.Me)

	users := api.Group("/users")
	users.Get("/", optional, s.ListUsers)
	// specific /:id/<resource> routes before /:id
	users.Get("/:id/followers", optional, s.GetFollowers)
	users.Get("/:id/following", optional, s.GetFollowing)
	users.Get("/:id/posts", optional, s.GetUserPosts)
	users.Post("/:id/follow", required, s.ToggleFollow)
	users.Get("/:id", optional, s.GetUser)
	users.Put("/:id", required, s.UpdateUser)
	users.Delete("/:id", required, s.DeleteUser)

	posts := api.Group("/posts")
	posts.Get("/", optional, s.ListPosts)
	posts.Get("/feed", required, s.GetFeed)
	posts.Post("/", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", required, s.LikePost)
	posts.Get("/:id/comments", optional, s.ListComments)
	posts.Post("/:id/comments", required, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	comments := api.Group("/comments", required)
	comments.Post("/:id/like", s.LikeComment)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	messages := api.Group("/messages", required)
	messages.Get("/senders", s.GetAllSenders)
	messages.Get("/sentMessages", s.GetOtherSenders)
	messages.Get("/:userId", s.GetThread)
	messages.Post("/:userId", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)

	api.Post("/images", required, middleware.RateLimit(s.redis, 20, time.Hour, "upload_image"), s.UploadImage)

	api.Get("/ws", required, s.WebsocketUpgrade, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only a failing database makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "healthy"
	switch {
	case dbStatus != "healthy":
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires realtime delivery and listens on the configured port.
func (s *Server) Start() error {
	app := s.App()

	if s.hub != nil && s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Warn("realtime delivery disabled", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener, closes websockets and releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	if s.hub != nil {
		_ = s.hub.Shutdown(ctx)
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing database", slog.String("error", cerr.Error()))
		}
	}
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
