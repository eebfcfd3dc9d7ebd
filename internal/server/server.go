// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/mailer"
	"chirp/internal/middleware"
	"chirp/internal/notifications"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
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
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	hashtagRepo      repository.HashtagRepository
	engagementRepo   repository.EngagementRepository
	followRepo       repository.FollowRepository
	notificationRepo repository.NotificationRepository
	communityRepo    repository.CommunityRepository
	messageRepo      repository.MessageRepository

	notifier       *notifications.Notifier
	postService    *service.PostService
	accountService *service.AccountService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   middleware.InitMetrics("chirp-api"),
		userRepo:         repository.NewUserRepository(db),
		postRepo:         repository.NewPostRepository(db),
		hashtagRepo:      repository.NewHashtagRepository(db),
		engagementRepo:   repository.NewEngagementRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		communityRepo:    repository.NewCommunityRepository(db),
		messageRepo:      repository.NewMessageRepository(db),
	}

	server.notifier = notifications.NewNotifier(server.notificationRepo, redisClient)
	server.postService = service.NewPostService(
		server.postRepo, server.userRepo, server.hashtagRepo,
		server.followRepo, server.communityRepo, server.notifier)
	server.accountService = service.NewAccountService(
		server.userRepo, mailer.NewLogMailer(cfg.MailFrom),
		cfg.JWTSecret, cfg.FrontendBaseURL)

	return server
}

// AuthRequired returns the JWT authentication middleware.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.config.JWTSecret)
}

// OptionalAuth returns middleware that populates userID when a valid token
// is present but lets anonymous requests through.
func (s *Server) OptionalAuth() fiber.Handler {
	return middleware.OptionalAuth(s.config.JWTSecret)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
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

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Chirp Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.AuthRequired(), s.Refresh)
	auth.Post("/password/reset", middleware.RateLimit(
		s.redis, 5, 15*time.Minute, "password_reset"), s.RequestPasswordReset)
	auth.Post("/password/reset/confirm", s.ConfirmPasswordReset)
	auth.Post("/verify-email", s.VerifyEmail)
	auth.Post("/verify-email/resend", s.AuthRequired(), s.ResendVerification)

	// Public post routes (browse/search). OptionalAuth lets handlers see
	// the viewer when a token is present without requiring one.
	publicPosts := api.Group("/posts", s.OptionalAuth())
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/trending-hashtags", s.GetTrendingHashtags)
	publicPosts.Get("/hashtag/:tag", s.GetPostsByHashtag)
	publicPosts.Get("/mentions/:username", s.GetPostsByMention)
	// Specific /:id/:resource routes BEFORE generic /:id route
	publicPosts.Get("/:id/thread", s.GetThread)
	publicPosts.Get("/:id/replies", s.GetReplies)
	publicPosts.Get("/:id", s.GetPost)

	// Public community routes
	publicCommunities := api.Group("/communities", s.OptionalAuth())
	publicCommunities.Get("/", s.GetCommunities)
	publicCommunities.Get("/by-name/:name", s.GetCommunityByName)
	publicCommunities.Get("/:id/posts", s.GetCommunityPosts)
	publicCommunities.Get("/:id/members", s.GetCommunityMembers)
	publicCommunities.Get("/:id", s.GetCommunity)

	// Search
	api.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.Search)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	// Specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id", s.GetUserProfile)

	// Post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/home", s.GetHomeFeed)
	posts.Post("/:id/retweet", s.Retweet)
	posts.Post("/:id/unretweet", s.Unretweet)
	posts.Delete("/:id/retweet", s.Unretweet)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Engagement routes
	likes := protected.Group("/likes")
	likes.Post("/:postId", s.LikePost)
	likes.Delete("/:postId", s.UnlikePost)
	likes.Get("/", s.GetLikedPosts)

	bookmarks := protected.Group("/bookmarks")
	bookmarks.Post("/:postId", s.BookmarkPost)
	bookmarks.Delete("/:postId", s.UnbookmarkPost)
	bookmarks.Get("/", s.GetBookmarkedPosts)

	// Follow routes
	follows := protected.Group("/follows")
	follows.Post("/:userId", s.FollowUser)
	follows.Delete("/:userId", s.UnfollowUser)

	// Community routes
	communities := protected.Group("/communities")
	communities.Post("/", s.CreateCommunity)
	communities.Post("/:id/posts", s.CreateCommunityPost)
	communities.Post("/:id/join", s.JoinCommunity)
	communities.Delete("/:id/join", s.LeaveCommunity)

	// Direct message routes
	messages := protected.Group("/messages")
	messages.Get("/:userId", s.GetConversation)
	messages.Post("/:userId", middleware.RateLimit(
		s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	messages.Post("/:userId/read", s.MarkConversationRead)

	// Notification routes
	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Get("/unread-count", s.GetUnreadNotificationCount)
	notificationsGroup.Post("/mark-read/:id", s.MarkNotificationRead)
	notificationsGroup.Post("/mark-all-read", s.MarkAllNotificationsRead)
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
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app runs without Redis, degraded but serving.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
