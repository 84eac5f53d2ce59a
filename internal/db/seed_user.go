package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/validation"
)

type Registrar interface {
	Register(ctx context.Context, reg validation.Registration) (user.User, error)
}

// EnsureSeedUser creates the configured bootstrap account when SEED_EMAIL and
// SEED_PASSWORD are set. An existing account with that email is left alone.
func EnsureSeedUser(ctx context.Context, accounts Registrar, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedPassword == "" {
		return nil
	}

	req := user.RegisterRequest{Email: cfg.SeedEmail, Password: cfg.SeedPassword}
	if cfg.SeedName != "" {
		name := cfg.SeedName
		req.Name = &name
	}

	reg, err := validation.Register(req)
	if err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	_, err = accounts.Register(ctx, reg)
	if err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return fmt.Errorf("seed user: %w", err)
	}

	return nil
}
