package container

import (
	"log/slog"

	database "github.com/aura-analytics/aura-backend/app/db"
	"github.com/aura-analytics/aura-backend/config"
	"github.com/aura-analytics/aura-backend/internal/api/auth"
	"github.com/aura-analytics/aura-backend/internal/api/health"
)

// Container holds all application dependencies.
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *database.Manager
	DatabaseURL   string
	TokenService  auth.TokenService
	AuthHandler   *auth.HandlerImpl
	HealthHandler *health.HandlerImpl
}

// NewContainer initializes and returns a new dependency container. The
// database pool is created lazily, so this succeeds even while the database
// is unreachable.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	db, err := database.NewManager(dbConfig.ConnectionURL, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	tokenService := auth.NewTokenService(cfg.JWT)

	authRepo := auth.NewPostgresAuthRepo(db.Pool(), logger)
	authService := auth.NewAuthService(authRepo, tokenService, logger)
	authHandler := auth.NewAuthHandler(authService, logger, cfg.Mode)

	healthHandler := health.NewHealthHandler(db, logger, cfg.Mode, cfg.API.Version)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		DB:            db,
		DatabaseURL:   dbConfig.ConnectionURL,
		TokenService:  tokenService,
		AuthHandler:   authHandler,
		HealthHandler: healthHandler,
	}, nil
}

// Close releases container-owned resources.
func (c *Container) Close() {
	c.DB.Close()
}
