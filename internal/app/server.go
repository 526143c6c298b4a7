// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"crm-insight/internal/cache"
	"crm-insight/internal/config"
	"crm-insight/internal/db"
	authHandler "crm-insight/internal/handlers/auth"
	dashboardHandler "crm-insight/internal/handlers/dashboard"
	"crm-insight/internal/middleware"
	"crm-insight/internal/pkg/jwt"
	"crm-insight/internal/pkg/session"
	"crm-insight/internal/repository/crmapi"
	"crm-insight/internal/repository/postgres"
	dashboardService "crm-insight/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer  *http.Server
	pool        *pgxpool.Pool
	redisClient redis.UniversalClient
}

func NewServer(logger *zap.Logger) *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Start wires every dependency and serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	s.pool = pool

	dbWrapper := postgres.NewDB(pool)
	if err := dbWrapper.Migrate(ctx); err != nil {
		return err
	}
	s.logger.Info("postgres connected")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(ctx, db.RedisConfig{
		ClusterMode: false,
		Addresses:   []string{s.cfg.RedisAddr},
		Password:    s.cfg.RedisPass,
		DB:          s.cfg.RedisDB,
		PoolSize:    10,
	})
	if err != nil {
		return err
	}
	s.redisClient = redisClient
	s.logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- Query cache -----
	table, err := cache.LoadInvalidationTable(s.cfg.CacheInvalidationFile)
	if err != nil {
		return err
	}
	queryCache := cache.NewQueryCache(cache.NewRedisStore(redisClient), s.cfg.CachePrefix, s.cfg.CacheTTL, table, s.logger)

	// ----- Token revocation & rate limiting -----
	revocations := session.NewRevocations(redisClient, s.cfg.CachePrefix)
	rateLimiter := session.NewRateLimiter(redisClient, s.cfg.CachePrefix)

	// ----- JWT -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Repositories -----
	crmClient := crmapi.NewClient(s.cfg.CRMBaseURL, s.cfg.CRMTimeout)
	snapshotRepo := postgres.NewInsightSnapshotRepository(pool)
	aiRunRepo := postgres.NewAIRunRepository(pool)

	// ----- Services -----
	svc := dashboardService.NewDashboardService(crmClient, queryCache, snapshotRepo, aiRunRepo, s.logger).
		WithAIRunLimit(rateLimiter, s.cfg.AIRunLimit, s.cfg.AIRunWindow)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(revocations, s.logger),
		DashboardHandler: dashboardHandler.NewDashboardHandler(svc, s.logger),
		AuthMiddleware:   middleware.NewAuthMiddleware(verifier, revocations),
	}

	s.engine.Use(
		middleware.LoggingMiddleware(s.logger),
		middleware.RecoveryMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)
	SetupRouter(s.engine, s.logger, handlers)

	s.httpServer = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server starting",
		zap.String("addr", s.cfg.HTTPAddr),
		zap.String("crm_api", s.cfg.CRMBaseURL),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the storage clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}
