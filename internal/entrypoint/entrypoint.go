package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/readinglists"
	"github.com/mrlokans/bookshelf/internal/database/tokens"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	// Initialize database
	db, err := database.Open(cfg.Database.Path, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	files, err := storage.NewOSClient(cfg.Storage.MediaDir)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}
	log.Printf("Book files stored under %s", cfg.Storage.MediaDir)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	authService, limiter := newAuthService(db, auditService, cfg.Auth)
	defer limiter.Stop()

	paginator := services.NewPaginator(cfg.Pagination)
	bookRepo := books.NewRepository(db.DB)
	bookService := services.NewBookService(bookRepo, files, paginator, auditService)
	readingListService := services.NewReadingListService(readinglists.NewRepository(db.DB), bookRepo, auditService)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPurgeRevokedTokensQueue(tokens.NewRepository(db.DB), auditService),
			tasks.NewCleanupAuditEventsQueue(auditService, auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance, cfg.Audit.RetentionDays)
		if err := maintenance.Start(taskCtx); err != nil {
			log.Printf("WARNING: maintenance scheduler not started: %v", err)
		}
	} else {
		log.Printf("Task queue disabled; revoked tokens and old audit events will not be pruned")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		AuthService:        authService,
		BookService:        bookService,
		ReadingListService: readingListService,
		AuditService:       auditService,
		Paginator:          paginator,
		HSTSMaxAge:         cfg.HTTP.HSTSMaxAge,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// newAuthService wires the account service. A missing JWT secret is
// replaced by a random one, which invalidates every token on restart.
func newAuthService(db *database.Database, auditor auth.Auditor, cfg config.Auth) (*auth.Service, *auth.RateLimiter) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		secret = generated
		log.Printf("WARNING: AUTH_JWT_SECRET is not set. Generated a temporary secret; issued tokens will not survive a restart.")
	}

	limiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
	})
	issuer := auth.NewTokenIssuer(secret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	service := auth.NewService(users.NewRepository(db.DB), tokens.NewRepository(db.DB), issuer, limiter, auditor, cfg)
	return service, limiter
}
