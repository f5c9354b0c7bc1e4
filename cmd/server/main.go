package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/auth"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/middleware"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/repositories"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/internal/router"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/config"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/firebase"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/mailer"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/pkg/storage"
	"github.com/NazirHussain1/blog-api-pagination-filtering-sub001/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}

	if err := repositories.EnsureIndexes(ctx, db.MongoDB); err != nil {
		log.Fatalf("Failed to create MongoDB indexes: %v", err)
	}
	if err := repositories.AutoMigrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Database schema ready.")

	// Initialize Firebase (optional)
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			log.Printf("Firebase disabled: %v", err)
		}
	}

	deps := router.Dependencies{
		Config:      cfg,
		DB:          db,
		Tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Denylist:    newDenylist(ctx, cfg),
		Mailer:      newMailer(cfg),
		Images:      newImageStore(ctx, cfg, firebaseApp),
		AuthLimiter: middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst),
	}
	if firebaseApp != nil {
		deps.Firebase = firebaseApp.AuthClient
	}

	done := make(chan struct{})
	go deps.AuthLimiter.Run(done)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, deps)

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	close(done)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("Error closing databases: %v", err)
	}
	log.Println("Server stopped.")
}

// newDenylist uses Redis when REDIS_ADDR is set and reachable, the in-process list otherwise.
func newDenylist(ctx context.Context, cfg *config.Config) auth.Denylist {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, revoked tokens are kept in memory.")
		return auth.NewMemoryDenylist()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Redis unavailable (%v), revoked tokens are kept in memory.", err)
		_ = rdb.Close()
		return auth.NewMemoryDenylist()
	}

	log.Println("Successfully connected to Redis!")
	return auth.NewRedisDenylist(rdb)
}

func newMailer(cfg *config.Config) mailer.Mailer {
	if cfg.SMTPHost == "" {
		log.Println("SMTP_HOST not set, emails are written to the log.")
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// newImageStore returns nil, disabling uploads, when the selected store cannot be used.
func newImageStore(ctx context.Context, cfg *config.Config, fb *firebase.App) storage.ImageStore {
	switch cfg.ImageStore {
	case "firebase":
		if fb == nil {
			log.Println("IMAGE_STORE=firebase but Firebase is not configured, uploads disabled.")
			return nil
		}
		bucket, err := fb.DefaultBucket()
		if err != nil {
			log.Printf("Firebase storage unavailable, uploads disabled: %v", err)
			return nil
		}
		return storage.NewFirebaseStore(bucket, fb.Bucket)
	default:
		store, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
		if err != nil {
			log.Printf("MinIO unavailable, uploads disabled: %v", err)
			return nil
		}
		return store
	}
}
