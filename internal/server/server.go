// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"commune/internal/bootstrap"
	"commune/internal/config"
	"commune/internal/featureflags"
	"commune/internal/mail"
	"commune/internal/middleware"
	"commune/internal/models"
	"commune/internal/notifications"
	"commune/internal/repository"
	"commune/internal/service"
	"commune/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
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

// storySweepInterval is how often expired stories are reaped.
const storySweepInterval = 10 * time.Minute

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	validate       *validator.Validate

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	sharedPostRepo   repository.SharedPostRepository
	commentRepo      repository.CommentRepository
	reactionRepo     repository.ReactionRepository
	relationshipRepo repository.RelationshipRepository
	storyRepo        repository.StoryRepository
	groupRepo        repository.GroupRepository
	notificationRepo repository.NotificationRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	uploader storage.Uploader
	mailer   mail.Sender

	featureFlags        *featureflags.Manager
	userService         *service.UserService
	relationshipService *service.RelationshipService
	postService         *service.PostService
	commentService      *service.CommentService
	reactionService     *service.ReactionService
	storyService        *service.StoryService
	groupService        *service.GroupService
	feedService         *service.FeedService
	notificationService *service.NotificationService
}

// NewServer creates a server instance, connecting to the database and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	uploader, err := storage.NewLocalUploader(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("media storage init failed: %w", err)
	}

	prom := middleware.InitMetrics("commune-api")

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		validate:       validator.New(),
		uploader:       uploader,
		mailer:         mail.NewLogSender(cfg.MailFrom),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	s.userRepo = repository.NewUserRepository(db)
	s.postRepo = repository.NewPostRepository(db)
	s.sharedPostRepo = repository.NewSharedPostRepository(db)
	s.commentRepo = repository.NewCommentRepository(db)
	s.reactionRepo = repository.NewReactionRepository(db)
	s.relationshipRepo = repository.NewRelationshipRepository(db)
	s.storyRepo = repository.NewStoryRepository(db)
	s.groupRepo = repository.NewGroupRepository(db)
	s.notificationRepo = repository.NewNotificationRepository(db)

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
	}

	// A typed-nil notifier must not reach the Publisher interface, or the
	// nil check inside the service stops working.
	var publisher service.Publisher
	if s.notifier != nil {
		publisher = s.notifier
	}
	s.notificationService = service.NewNotificationService(s.notificationRepo, publisher)
	s.userService = service.NewUserService(s.userRepo, s.relationshipRepo)
	s.relationshipService = service.NewRelationshipService(s.relationshipRepo, s.userRepo, s.notificationService)
	s.postService = service.NewPostService(s.postRepo, s.sharedPostRepo, s.relationshipRepo, s.groupRepo, s.uploader, s.notificationService)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.relationshipRepo, s.groupRepo, s.notificationService)
	s.reactionService = service.NewReactionService(s.reactionRepo, s.postRepo, s.commentRepo, s.sharedPostRepo, s.relationshipRepo, s.groupRepo, s.notificationService)
	s.storyService = service.NewStoryService(s.storyRepo, s.relationshipRepo, s.uploader)
	s.groupService = service.NewGroupService(s.groupRepo, s.postRepo, s.notificationService)
	s.feedService = service.NewFeedService(s.postRepo, s.sharedPostRepo, s.relationshipRepo)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	// Tracing before ContextMiddleware so the trace ID local is populated
	// when it gets copied into the request context.
	app.Use(middleware.TracingMiddleware())
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
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Commune Backend Metrics Dashboard",
	}))

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	protected := api.Group("", middleware.AuthRequired)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Delete("/me", s.DeleteMyAccount)
	users.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "user_search"), s.SearchUsers)
	users.Post("/blocks", s.BlockUser)
	users.Get("/blocks", s.GetBlockedUsers)
	users.Delete("/blocks/:userId", s.UnblockUser)
	// Specific /:id/:resource routes before the generic /:username routes.
	users.Get("/:id/shared", s.GetUserShares)
	users.Get("/:username/posts", s.GetUserPosts)
	users.Get("/:username/stories", s.GetUserStories)
	users.Get("/:username", s.GetUserProfile)

	connections := protected.Group("/connections")
	connections.Post("/requests", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	connections.Get("/requests/received", s.GetReceivedRequests)
	connections.Get("/requests/sent", s.GetSentRequests)
	connections.Post("/requests/:requestId/respond", s.RespondToFriendRequest)
	connections.Get("/friends", s.GetFriends)
	connections.Delete("/friends/:userId", s.RemoveFriend)
	connections.Post("/follow", s.Follow)
	connections.Post("/unfollow", s.Unfollow)
	connections.Get("/followers", s.GetFollowers)
	connections.Get("/following", s.GetFollowing)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/saved", s.GetSavedPosts)
	posts.Post("/:id/click", s.RecordPostClick)
	posts.Get("/:id/engagement", s.GetPostEngagement)
	posts.Post("/:id/react", s.ReactToPost)
	posts.Get("/:id/reactions", s.GetPostReactions)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/save", s.SavePost)
	posts.Delete("/:id/save", s.UnsavePost)
	posts.Post("/:id/share", s.SharePost)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Patch("/:commentId/visibility", s.SetCommentVisibility)
	comments.Post("/:commentId/react", s.ReactToComment)
	comments.Delete("/:commentId", s.DeleteComment)

	shared := protected.Group("/shared")
	shared.Post("/comments/:commentId/react", s.ReactToSharedComment)
	shared.Post("/:sharedPostId/comments", s.CreateSharedPostComment)
	shared.Get("/:sharedPostId/comments", s.GetSharedPostComments)
	shared.Post("/:sharedPostId/react", s.ReactToSharedPost)
	shared.Delete("/:sharedPostId", s.DeleteShare)

	protected.Get("/feed", s.GetFeed)

	stories := protected.Group("/stories")
	stories.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_story"), s.CreateStory)
	stories.Get("/", s.GetStories)
	stories.Post("/:id/view", s.ViewStory)
	stories.Get("/:id/views", s.GetStoryViews)
	stories.Post("/:id/react", s.ReactToStory)
	stories.Delete("/:id/react", s.RemoveStoryReaction)
	stories.Delete("/:id", s.DeleteStory)

	groups := protected.Group("/groups")
	groups.Post("/", s.CreateGroup)
	groups.Get("/search", s.SearchGroups)
	groups.Get("/mine", s.GetMyGroups)
	groups.Post("/memberships/:membershipId/approve", s.ApproveMembership)
	groups.Post("/memberships/:membershipId/reject", s.RejectMembership)
	groups.Post("/:id/join", s.JoinGroup)
	groups.Post("/:id/leave", s.LeaveGroup)
	groups.Get("/:id/members", s.GetGroupMembers)
	groups.Post("/:id/members/:userId/promote", s.PromoteGroupMember)
	groups.Delete("/:id/members/:userId", s.RemoveGroupMember)
	groups.Get("/:id/requests", s.GetGroupPendingRequests)
	groups.Get("/:id/posts", s.GetGroupPosts)
	groups.Put("/:id", s.UpdateGroup)
	groups.Get("/:id", s.GetGroup)
	groups.Delete("/:id", s.DeleteGroup)

	notis := protected.Group("/notifications")
	notis.Get("/", s.GetNotifications)
	notis.Get("/unread-count", s.GetUnreadCount)
	notis.Put("/:id/read", s.MarkNotificationRead)
	notis.Post("/read-all", s.MarkAllNotificationsRead)
	notis.Post("/unread-all", s.MarkAllNotificationsUnread)

	api.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// Start starts the server.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:   "Commune API",
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				log.Printf("failed to start %s wiring: %v", s.hub.Name(), err)
			}
		}()
	}

	s.storyService.StartExpirySweeper(s.shutdownCtx, storySweepInterval)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", s.hub.Name(), err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
