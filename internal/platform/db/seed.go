package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

// Seed creates the bootstrap admin account. It is a no-op when the seed
// credentials are unset or the account already exists.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, user_type)
    VALUES ($1,$2,'System','Admin',$3)
    RETURNING id
  `, email, hash, auth.UserTypeAdmin).Scan(&id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "INSERT INTO admins (user_id) VALUES ($1)", id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
