package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aura-analytics/aura-backend/internal/api"
	"github.com/aura-analytics/aura-backend/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo defines the contract for credential persistence.
type AuthRepo interface {
	// CreateUser inserts a new user row. Returns api.ErrConflict when the
	// unique index on lower(email) rejects a duplicate registration.
	CreateUser(ctx context.Context, email, passwordHash string, name *string) (*types.User, error)

	// GetUserByEmail retrieves a user by normalized email.
	// Returns api.ErrNotFound when no row matches.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID retrieves a user by ID. Returns api.ErrNotFound when the
	// row no longer exists.
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
}

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     DB
}

func NewPostgresAuthRepo(db DB, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

const userColumns = "id, email, password_hash, name, is_active, created_at, updated_at"

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, email, passwordHash string, name *string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, name)
         VALUES ($1, $2, $3)
         RETURNING `+userColumns,
		email, passwordHash, name).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// The unique index on lower(email) is the authoritative guard against
		// the check-then-insert race between concurrent registrations.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: email already registered", api.ErrConflict)
		}
		return nil, fmt.Errorf("create user: db insert failed: %w", err)
	}

	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user with email not found", api.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}

	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user not found", api.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}

	return &user, nil
}
