package router

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/handlers"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/middleware"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/models"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/config"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/mailer"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/storage"
)

// Dependencies are the process-wide services the routes are built from.
type Dependencies struct {
	Config      *config.Config
	DB          *config.DB
	Tokens      *auth.TokenManager
	Denylist    auth.Denylist
	Mailer      mailer.Mailer
	Images      storage.ImageStore      // nil disables uploads
	Firebase    handlers.IDTokenVerifier // nil disables Firebase login
	AuthLimiter *middleware.RateLimiter
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	cfg := deps.Config
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Health check - always accessible
	e.GET("/health", handlers.Health(map[string]handlers.HealthCheck{
		"mongo": func(ctx context.Context) error {
			return deps.DB.Mongo.Ping(ctx, readpref.Primary())
		},
		"postgres": func(ctx context.Context) error {
			sqlDB, err := deps.DB.Postgres.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}))

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(deps.DB.MongoDB)
	followRepo := repositories.NewMongoFollowRepository(deps.DB.MongoDB)
	postRepo := repositories.NewMongoPostRepository(deps.DB.MongoDB)
	likeRepo := repositories.NewMongoLikeRepository(deps.DB.MongoDB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB.Postgres)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(deps.DB.Postgres)

	requireAuth := middleware.JWTAuth(deps.Tokens, deps.Denylist, cfg.LoginPath)
	optionalAuth := middleware.OptionalJWTAuth(deps.Tokens, deps.Denylist)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// --- Auth routes, rate limited per client IP ---
	authGroup := e.Group("/api/auth", middleware.RateLimit(deps.AuthLimiter))
	authHandler := handlers.NewAuthHandler(userRepo, deps.Tokens, deps.Denylist, deps.Mailer, deps.Firebase, cfg.CookieSecure)
	authHandler.RegisterAuthRoutes(authGroup, requireAuth, optionalAuth)
	log.Println("Auth routes configured.")

	api := e.Group("/api")
	posts := api.Group("/posts")
	users := api.Group("/users")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, commentRepo, savedPostRepo)
	postHandler.RegisterPostRoutes(posts, requireAuth, optionalAuth)
	log.Println("Post routes configured.")

	// Reaction routes
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, notificationRepo)
	likeHandler.RegisterLikeRoutes(posts, requireAuth, optionalAuth)
	log.Println("Reaction routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, notificationRepo)
	commentHandler.RegisterCommentRoutes(posts, api.Group("/comments"), requireAuth)
	log.Println("Comment routes configured.")

	// Saved post routes
	savedPostHandler := handlers.NewSavedPostHandler(savedPostRepo, postRepo, userRepo, likeRepo, commentRepo)
	savedPostHandler.RegisterSavedPostRoutes(posts, users, requireAuth)
	log.Println("Saved post routes configured.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, postRepo, commentRepo, notificationRepo, savedPostRepo)
	userHandler.RegisterUserRoutes(users, requireAuth, optionalAuth, adminOnly)
	log.Println("User routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationRepo)
	followHandler.RegisterFollowRoutes(users, requireAuth)
	log.Println("Follow routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo, commentRepo, savedPostRepo)
	feedHandler.RegisterFeedRoutes(api, requireAuth)
	log.Println("Feed routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api.Group("/notifications", requireAuth))
	log.Println("Notification routes configured.")

	// Upload routes
	uploadHandler := handlers.NewUploadHandler(deps.Images, cfg.MaxUploadBytes)
	uploadHandler.RegisterUploadRoutes(api, requireAuth)
	log.Println("Upload routes configured.")

	log.Println("All routes configured.")
}
