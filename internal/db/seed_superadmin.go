package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/user"
	"github.com/presslane/newsdesk/internal/security"
)

// EnsureSuperadminUser seeds the configured superadmin principal once.
// A no-op when the account already exists or when no credentials are set.
func EnsureSuperadminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SuperadminEmail == "" || cfg.SuperadminPassword == "" {
		return nil
	}

	email := strings.ToLower(cfg.SuperadminEmail)

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SuperadminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         cfg.SuperadminName,
		Role:         user.RoleSuperadmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
