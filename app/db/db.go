package database

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	uuid "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/aura-analytics/aura-backend/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const connectRetries = 5
const connectRetryDelay = 3 * time.Second

type DatabaseConfig struct {
	ConnectionURL string
}

// Manager owns the pgx connection pool. It is created before the database is
// reachable; the pool connects lazily so HTTP handling never blocks on startup.
type Manager struct {
	pool           *pgxpool.Pool
	logger         *slog.Logger
	acquireTimeout time.Duration
}

// NewDatabaseConfig generates the database connection URL from configuration.
// A DATABASE_URL environment variable takes precedence over the assembled parts.
func NewDatabaseConfig(cfg *config.Config, logger *slog.Logger) (*DatabaseConfig, error) {
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		logger.Info("Using DATABASE_URL from environment")
		return &DatabaseConfig{ConnectionURL: raw}, nil
	}

	if cfg == nil || cfg.Repositories.Postgres.Host == "" {
		errMsg := "Postgres configuration is missing or invalid"
		logger.Error(errMsg)
		return nil, fmt.Errorf("%s", errMsg)
	}

	pg := cfg.Repositories.Postgres
	query := url.Values{}
	query.Set("sslmode", pg.SSLMode)
	query.Set("timezone", "utc")

	connURL := url.URL{
		Scheme:   "postgresql", // postgresql:// for migrate compatibility
		User:     url.UserPassword(pg.Username, pg.Password),
		Host:     fmt.Sprintf("%s:%s", pg.Host, pg.Port),
		Path:     pg.DB,
		RawQuery: query.Encode(),
	}

	logger.Info("Database connection URL generated", slog.String("host", connURL.Host), slog.String("database", connURL.Path))
	return &DatabaseConfig{ConnectionURL: connURL.String()}, nil
}

// NewManager initializes the pgxpool connection pool and wraps it in a Manager.
// Pool creation does not dial the database, so this succeeds even when the
// database is down; connections are established on first use.
func NewManager(connectionURL string, cfg *config.Config, logger *slog.Logger) (*Manager, error) {
	logger.Info("Initializing database connection pool...")
	poolCfg, err := pgxpool.ParseConfig(connectionURL)
	if err != nil {
		logger.Error("Failed to parse database config", slog.Any("error", err))
		return nil, fmt.Errorf("failed parsing db config: %w", err)
	}

	pg := cfg.Repositories.Postgres
	if pg.MaxConns > 0 {
		poolCfg.MaxConns = pg.MaxConns
	}
	if pg.MinConns > 0 {
		poolCfg.MinConns = pg.MinConns
	}
	if pg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = pg.MaxConnIdleTime
	}
	if pg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = pg.MaxConnLifetime
	}
	if pg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = pg.ConnectTimeout
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		uuid.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		logger.Error("Failed to create database connection pool", slog.Any("error", err))
		return nil, fmt.Errorf("failed creating db pool: %w", err)
	}

	acquireTimeout := pg.AcquireTimeout
	if acquireTimeout <= 0 {
		acquireTimeout = 5 * time.Second
	}

	logger.Info("Database connection pool initialized",
		slog.Int("max_conns", int(poolCfg.MaxConns)),
		slog.Duration("acquire_timeout", acquireTimeout),
	)
	return &Manager{pool: pool, logger: logger, acquireTimeout: acquireTimeout}, nil
}

// Pool exposes the underlying pgx pool for repositories.
func (m *Manager) Pool() *pgxpool.Pool {
	return m.pool
}

// Close releases all pool resources.
func (m *Manager) Close() {
	m.pool.Close()
}

// WithConnection acquires a connection with a bounded wait and guarantees the
// connection is returned to the pool on every exit path.
func (m *Manager) WithConnection(ctx context.Context, fn func(conn *pgxpool.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, m.acquireTimeout)
	defer cancel()

	conn, err := m.pool.Acquire(acquireCtx)
	if err != nil {
		return fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}

// HealthCheck probes connectivity with a trivial query. It reports the error
// instead of panicking so it can back a liveness probe while the DB is down.
func (m *Manager) HealthCheck(ctx context.Context) error {
	return m.WithConnection(ctx, func(conn *pgxpool.Conn) error {
		var one int
		if err := conn.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("health check query failed: %w", err)
		}
		return nil
	})
}

// WaitForReady pings the database with bounded retries. Exhausting the retries
// returns false without crashing; the pool will keep retrying lazily on use.
func (m *Manager) WaitForReady(ctx context.Context) bool {
	for attempt := 1; attempt <= connectRetries; attempt++ {
		err := m.pool.Ping(ctx)
		if err == nil {
			m.logger.InfoContext(ctx, "Database connection successful", slog.Int("attempt", attempt))
			return true
		}

		m.logger.WarnContext(ctx, "Database ping failed, retrying...",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", connectRetries),
			slog.Duration("retry_delay", connectRetryDelay),
			slog.String("error", err.Error()),
		)
		if attempt < connectRetries {
			select {
			case <-time.After(connectRetryDelay):
			case <-ctx.Done():
				return false
			}
		}
	}
	m.logger.ErrorContext(ctx, "Database connection failed after multiple retries; pool will retry lazily on first use")
	return false
}

// ConnectAndMigrate is the background startup routine: it waits for the
// database and applies migrations once it is reachable. Failures are logged,
// never fatal, so the HTTP server stays up through a DB outage.
func (m *Manager) ConnectAndMigrate(ctx context.Context, databaseURL string) {
	if !m.WaitForReady(ctx) {
		return
	}
	if err := RunMigrations(databaseURL, m.logger); err != nil {
		m.logger.ErrorContext(ctx, "Failed to run database migrations", slog.Any("error", err))
	}
}

// RunMigrations applies database migrations using the embedded filesystem.
func RunMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return fmt.Errorf("invalid database URL scheme for migrate, ensure it starts with postgresql://")
	}

	mig, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrate instance: %w", err)
	}

	err = mig.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, verr := mig.Version()
	switch {
	case verr != nil:
		logger.Warn("Could not determine migration version", slog.Any("error", verr))
	case dirty:
		logger.Error("DATABASE MIGRATION STATE IS DIRTY!", slog.Uint64("version", uint64(version)))
	default:
		logger.Info("Database migrations up to date", slog.Uint64("version", uint64(version)))
	}

	srcErr, dbErr := mig.Close()
	if srcErr != nil {
		logger.Warn("Error closing migration source", slog.Any("error", srcErr))
	}
	if dbErr != nil {
		logger.Warn("Error closing migration database connection", slog.Any("error", dbErr))
	}

	return nil
}
