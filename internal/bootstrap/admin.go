package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alexindevs/orgbase/internal/config"
	"github.com/alexindevs/orgbase/internal/domain"
	"github.com/alexindevs/orgbase/internal/password"
	"github.com/alexindevs/orgbase/internal/repository"
)

// EnsureAdmin seeds an admin account for dev/e2e when ADMIN_EMAIL and
// ADMIN_PASSWORD are set. Without them it is a no-op.
func EnsureAdmin(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, registrations repository.RegistrationStore, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureAdmin(ctx, cfg, users, registrations, logger)
		},
	})
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, registrations repository.RegistrationStore, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || strings.TrimSpace(cfg.AdminPassword) == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("bootstrap lookup admin: %w", err)
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		PasswordHash: hashed,
	}
	org := domain.Organisation{
		ID:   uuid.NewString(),
		Name: domain.DefaultOrganisationName(user.FirstName),
	}

	created, createdOrg, err := registrations.CreateRegistration(ctx, user, org)
	if err != nil {
		// Lost the race to a concurrent replica; the account exists.
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return fmt.Errorf("bootstrap create admin: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap admin user created",
			zap.String("email", created.Email),
			zap.String("user_id", created.ID),
			zap.String("org_id", createdOrg.ID),
		)
	}
	return nil
}
