package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	api "propertyhub/cmd/api"
	authRepo "propertyhub/internal/auth/repository"
	"propertyhub/internal/auth/scheduler"
	"propertyhub/internal/auth/token"
	authUsecase "propertyhub/internal/auth/usecase"
	"propertyhub/internal/notification"
	propertyRepo "propertyhub/internal/property/repository"
	propertyUsecase "propertyhub/internal/property/usecase"
	"propertyhub/pkg/config"
	"propertyhub/pkg/database"
	"propertyhub/pkg/mailer"
	"propertyhub/pkg/ratelimit"
	"propertyhub/pkg/storage"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	// Users first, listings and messages reference them
	if err := authRepo.Migrate(db); err != nil {
		log.Fatal("Failed to migrate users: ", err)
	}
	if err := propertyRepo.Migrate(db); err != nil {
		log.Fatal("Failed to migrate properties: ", err)
	}

	tokens, err := token.NewService(cfg.JWTSecret)
	if err != nil {
		log.Fatal("Failed to create token service: ", err)
	}

	images, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize image storage: ", err)
	}
	log.Printf("Image storage: %s", cfg.StorageDriver)

	// Background mail delivery
	dispatcher := notification.NewMailDispatcher(mailer.New(cfg), cfg.BackendURL, cfg.MailWorkers)
	dispatcher.Start()

	loginLimiter, closeLimiter := newLoginLimiter(cfg)

	// Initialize repositories and use cases (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, tokens, dispatcher)

	sweeper := scheduler.NewUnconfirmedSweeper(userRepo, cfg.UnconfirmedTTL, cfg.SweepInterval)
	sweeper.Start()
	propertyUsecaseInstance := propertyUsecase.NewPropertyUsecase(
		propertyRepo.NewPropertyRepository(db),
		propertyRepo.NewCatalogRepository(db),
		propertyRepo.NewMessageRepository(db),
		images,
	)

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(authUsecaseInstance, propertyUsecaseInstance, images, loginLimiter, cfg)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown. The steps run in order: in-flight requests may still
	// queue mail and touch the database until the server has drained.
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"application": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return shutdownInOrder(ctx,
					shutdownStep{"http-server", server.Shutdown},
					shutdownStep{"mail-dispatcher", dispatcher.Stop},
					shutdownStep{"account-sweeper", sweeper.Stop},
					shutdownStep{"login-limiter", closeLimiter},
					shutdownStep{"database", func(context.Context) error { return database.Close(db) }},
				)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

type shutdownStep struct {
	name string
	stop func(context.Context) error
}

// shutdownInOrder runs every step even when an earlier one fails and returns
// the first error.
func shutdownInOrder(ctx context.Context, steps ...shutdownStep) error {
	var firstErr error
	for _, step := range steps {
		if err := step.stop(ctx); err != nil {
			log.Printf("[Shutdown] %s: %v", step.name, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("[Shutdown] %s stopped", step.name)
	}
	return firstErr
}

// newLoginLimiter uses Redis when REDIS_ADDR is set and reachable, and an
// in-process limiter otherwise. The returned func releases it.
func newLoginLimiter(cfg *config.Config) (ratelimit.Limiter, func(context.Context) error) {
	if cfg.RedisAddr == "" {
		log.Println("[RateLimit] REDIS_ADDR not set, using in-memory login limiter")
		return newMemoryLimiter(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[RateLimit] Redis at %s unreachable, using in-memory login limiter: %v", cfg.RedisAddr, err)
		_ = client.Close()
		return newMemoryLimiter(cfg)
	}

	log.Printf("[RateLimit] Using Redis at %s for login limiting", cfg.RedisAddr)
	return ratelimit.NewRedisLimiter(client, "propertyhub:ratelimit:"), func(context.Context) error {
		return client.Close()
	}
}

func newMemoryLimiter(cfg *config.Config) (ratelimit.Limiter, func(context.Context) error) {
	limiter := ratelimit.NewMemoryLimiter()
	limiter.StartJanitor(cfg.LoginRateWindow)
	return limiter, limiter.Stop
}
