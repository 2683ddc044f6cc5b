package container

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"bookreview-backend/internal/config"
	infraCache "bookreview-backend/internal/infrastructure/cache"
	"bookreview-backend/internal/infrastructure/database"
	"bookreview-backend/internal/infrastructure/metrics"
	"bookreview-backend/migrations"
	"bookreview-backend/pkg/cache"
	"bookreview-backend/pkg/jwt"

	bookHandler "bookreview-backend/internal/domains/book/handler"
	bookRepo "bookreview-backend/internal/domains/book/repository"
	bookService "bookreview-backend/internal/domains/book/service"
	reviewHandler "bookreview-backend/internal/domains/review/handler"
	reviewRepo "bookreview-backend/internal/domains/review/repository"
	reviewService "bookreview-backend/internal/domains/review/service"
	"bookreview-backend/internal/domains/user"
	userHandler "bookreview-backend/internal/domains/user/handler"
	userRepo "bookreview-backend/internal/domains/user/repository"
	userService "bookreview-backend/internal/domains/user/service"
)

// Container is the root of the dependency graph. Every collaborator is
// built here once and injected; nothing below reaches for a global.
type Container struct {
	// Infrastructure
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Registry   *prometheus.Registry
	TxMetrics  *metrics.TxMetrics

	// Repositories
	UserRepo    user.Repository
	BookRepo    bookRepo.Repository
	ReviewStore reviewRepo.Store

	// Services
	UserService   user.Service
	BookService   bookService.ServiceInterface
	ReviewService reviewService.ServiceInterface

	// Handlers
	UserHandler   *userHandler.UserHandler
	BookHandler   *bookHandler.BookHandler
	ReviewHandler *reviewHandler.ReviewHandler

	redis *infraCache.RedisCache
}

// NewContainer builds the graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer(cfg *config.Config) (*Container, error) {
	log.Info().Msg("initializing container")

	c := &Container{Config: cfg}

	if err := c.initDatabase(); err != nil {
		return nil, err
	}

	c.initCache()
	c.initMetrics()
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("container initialized")
	return c, nil
}

func (c *Container) initDatabase() error {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return fmt.Errorf("database health check failed: %w", err)
	}
	if err := database.RunMigrations(ctx, db.Pool, migrations.FS); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = db
	log.Info().Str("host", dbConfig.Host).Str("db", dbConfig.DBName).Msg("database ready")
	return nil
}

// initCache connects Redis. The cache is advisory, so a failed connection
// is logged and the service keeps serving from the database.
func (c *Container) initCache() {
	c.redis = infraCache.NewRedisCache(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Str("addr", c.Config.Redis.Host).Msg("redis unavailable, continuing without warm cache")
	}

	c.Cache = c.redis
}

func (c *Container) initMetrics() {
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewPoolStatsCollector(c.DB.Pool),
	)
	c.TxMetrics = metrics.NewTxMetrics(c.Registry)
}

func (c *Container) initRepositories() {
	c.UserRepo = userRepo.NewPostgresRepository(c.DB.Pool)
	c.BookRepo = bookRepo.NewPostgresRepository(c.DB.Pool)
	c.ReviewStore = reviewRepo.NewPostgresStore(c.DB.Pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo)

	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache, bookService.Config{
		BookTTL:     c.Config.Cache.BookTTL,
		BookListTTL: c.Config.Cache.BookListTTL,
		MaxAttempts: c.Config.Review.MaxTxAttempts,
	})

	c.ReviewService = reviewService.NewReviewService(c.ReviewStore, c.Cache, c.TxMetrics, reviewService.Config{
		MaxAttempts:    c.Config.Review.MaxTxAttempts,
		InitialBackoff: c.Config.Review.TxInitialBackoff,
		MaxBackoff:     c.Config.Review.TxMaxBackoff,
		ReviewListTTL:  c.Config.Cache.ReviewListTTL,
	})
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
}

// Cleanup releases the pool and the Redis client. Called on shutdown.
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
		log.Info().Msg("database pool closed")
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		} else {
			log.Info().Msg("redis client closed")
		}
	}
}
