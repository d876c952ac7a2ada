package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/models"

	"github.com/rs/zerolog"
)

// UserID derives the users document id from an email, so lookups at login
// are a single Get.
func UserID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SeedAdmin creates the first admin account when it does not exist yet.
func SeedAdmin(ctx context.Context, store Store, email, password string, log zerolog.Logger) error {
	return SeedUser(ctx, store, models.User{
		Email:      email,
		Name:       "Portal Admin",
		Role:       models.RoleAdmin,
		Department: "Administration",
	}, password, log)
}

// SeedUser creates an account unless one with the same email exists.
func SeedUser(ctx context.Context, store Store, user models.User, password string, log zerolog.Logger) error {
	if user.Email == "" || password == "" {
		return errors.New("seed: email and password are required")
	}
	switch user.Role {
	case models.RoleAdmin, models.RoleHR, models.RoleEmployee:
	default:
		return fmt.Errorf("seed: unknown role %q", user.Role)
	}
	id := UserID(user.Email)

	var existing models.User
	err := store.Get(ctx, models.CollectionUsers, id, &existing)
	if err == nil {
		log.Info().Str("email", id).Msg("user already exists, seeding skipped")
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("seed: hash password: %w", err)
	}
	user.Email = id
	user.Password = hashed
	if user.Name == "" {
		user.Name = id
	}
	if user.Status == "" {
		user.Status = "active"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if err := store.Set(ctx, models.CollectionUsers, id, user); err != nil {
		return err
	}
	log.Info().Str("email", id).Str("role", user.Role).Msg("user seeded")
	return nil
}
