package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blogmodapk-backend/internal/background"
	"blogmodapk-backend/internal/config"
	"blogmodapk-backend/internal/handlers"
	"blogmodapk-backend/internal/middleware"
	"blogmodapk-backend/internal/repository"
	"blogmodapk-backend/internal/service"
	"blogmodapk-backend/pkg/cache"
	"blogmodapk-backend/pkg/logger"
)

const gaugeRefreshInterval = time.Minute

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	rateLimiter *middleware.RateLimitManager
	scheduler   *background.Scheduler
	cancel      context.CancelFunc

	router *gin.Engine
	server *http.Server
}

type repositoryContainer struct {
	User     repository.UserRepository
	Category repository.CategoryRepository
	Post     repository.PostRepository
	Tag      repository.TagRepository
	Comment  repository.CommentRepository
	Media    repository.MediaRepository
	Download repository.DownloadRepository
	Setting  repository.SettingRepository
}

type serviceContainer struct {
	Auth     *service.AuthService
	Post     *service.PostService
	Counter  *service.CounterService
	Comment  *service.CommentService
	Category *service.CategoryService
	Tag      *service.TagService
	Media    *service.MediaService
	User     *service.UserService
	Setting  *service.SettingService
	Stats    *service.StatsService
}

type handlerContainer struct {
	Auth      *handlers.AuthHandler
	Post      *handlers.PostHandler
	AdminPost *handlers.AdminPostHandler
	Comment   *handlers.CommentHandler
	Category  *handlers.CategoryHandler
	Tag       *handlers.TagHandler
	Media     *handlers.MediaHandler
	User      *handlers.UserHandler
	Setting   *handlers.SettingHandler
	Stats     *handlers.StatisticsHandler
}

// New connects to Postgres and Redis, migrates the schema and builds the router.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	cacheService, err := cache.NewCache(cfg.RedisURL, cfg.EnableCache, cfg.CacheTTL)
	if err != nil {
		logger.Warn("Cache unavailable, continuing without it", map[string]interface{}{"error": err.Error()})
		cacheService, _ = cache.NewCache("", false, cfg.CacheTTL)
	}

	app := newApplication(cfg, db, cacheService)
	app.startBackgroundJobs()
	return app, nil
}

// newApplication wires every layer on top of an already migrated database.
func newApplication(cfg *config.Config, db *gorm.DB, cacheService *cache.Cache) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	app := &Application{
		cfg:         cfg,
		db:          db,
		cache:       cacheService,
		cancel:      cancel,
		rateLimiter: middleware.NewRateLimitManager(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst),
		scheduler:   background.NewScheduler(background.SchedulerConfig{WorkerCount: 1, QueueSize: 8}),
	}
	app.scheduler.Start(ctx)

	app.initRepositories()
	app.initServices()
	app.initHandlers()
	app.initRouter()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return app
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("background jobs: %w", err))
		}
	}
	if a.rateLimiter != nil {
		_ = a.rateLimiter.Shutdown()
	}
	if a.cancel != nil {
		a.cancel()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		User:     repository.NewUserRepository(a.db),
		Category: repository.NewCategoryRepository(a.db),
		Post:     repository.NewPostRepository(a.db),
		Tag:      repository.NewTagRepository(a.db),
		Comment:  repository.NewCommentRepository(a.db),
		Media:    repository.NewMediaRepository(a.db),
		Download: repository.NewDownloadRepository(a.db),
		Setting:  repository.NewSettingRepository(a.db),
	}
}

func (a *Application) initServices() {
	r := a.repositories
	a.services = serviceContainer{
		Auth:     service.NewAuthService(r.User, a.cfg.JWTSecret, a.cfg.JWTTTL),
		Post:     service.NewPostService(r.Post, r.Category, r.Tag, r.Comment, a.cache, a.cfg.DefaultPageSize, a.cfg.MaxPageSize),
		Counter:  service.NewCounterService(r.Post, r.Download),
		Comment:  service.NewCommentService(r.Comment, r.Post, service.NewCommentGuard(a.cfg.CommentRatePerMinute), a.cfg.CommentMaxLength, a.cfg.MaxPageSize),
		Category: service.NewCategoryService(r.Category, a.cache),
		Tag:      service.NewTagService(r.Tag),
		Media:    service.NewMediaService(r.Media, a.cfg.MaxPageSize),
		User:     service.NewUserService(r.User, a.cfg.MaxPageSize),
		Setting:  service.NewSettingService(r.Setting, a.cache),
		Stats:    service.NewStatsService(r.Post, r.Category, r.Tag, r.Comment, r.User, r.Media, r.Download),
	}
}

func (a *Application) initHandlers() {
	s := a.services
	a.handlers = handlerContainer{
		Auth:      handlers.NewAuthHandler(s.Auth, a.cfg.JWTTTL),
		Post:      handlers.NewPostHandler(s.Post, s.Counter),
		AdminPost: handlers.NewAdminPostHandler(s.Post),
		Comment:   handlers.NewCommentHandler(s.Comment),
		Category:  handlers.NewCategoryHandler(s.Category, s.Post),
		Tag:       handlers.NewTagHandler(s.Tag),
		Media:     handlers.NewMediaHandler(s.Media),
		User:      handlers.NewUserHandler(s.User),
		Setting:   handlers.NewSettingHandler(s.Setting),
		Stats:     handlers.NewStatisticsHandler(s.Stats),
	}
}

func (a *Application) startBackgroundJobs() {
	err := a.scheduler.Every(gaugeRefreshInterval, background.Job{
		Name:        "refresh-content-gauges",
		Run:         a.services.Stats.RefreshGauges,
		Timeout:     10 * time.Second,
		RetryPolicy: background.RetryPolicy{MaxRetries: 2, Backoff: 5 * time.Second},
	})
	if err != nil {
		logger.Error(err, "Failed to schedule background job", map[string]interface{}{"job": "refresh-content-gauges"})
	}
}
