package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/naturlife/storefront/internal/domain/user"
	"github.com/naturlife/storefront/internal/security"
)

type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

type SeedResult string

const (
	SeedSkipped  SeedResult = "skipped"
	SeedCreated  SeedResult = "created"
	SeedPromoted SeedResult = "promoted"
	SeedExisting SeedResult = "existing"
)

// EnsureAdminUser creates the administrator if the email is unknown, or promotes an existing
// account to admin. An empty email or password is a no-op: there is no default administrator.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, seed AdminSeed) (SeedResult, error) {
	email := user.NormalizeEmail(seed.Email)
	if email == "" || seed.Password == "" {
		return SeedSkipped, nil
	}

	var (
		id   string
		role string
	)
	err := pool.QueryRow(ctx, `SELECT id, role FROM users WHERE email = $1`, email).Scan(&id, &role)
	if err == nil {
		if user.Role(role) == user.RoleAdmin {
			return SeedExisting, nil
		}
		if _, err := pool.Exec(ctx,
			`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
			id, string(user.RoleAdmin),
		); err != nil {
			return "", fmt.Errorf("promote admin: %w", err)
		}
		return SeedPromoted, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(seed.Password)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	name := seed.Name
	if name == "" {
		name = "Administrator"
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), email, hash, name, string(user.RoleAdmin), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert admin: %w", err)
	}

	return SeedCreated, nil
}
