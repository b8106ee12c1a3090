package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/coursehub/internal/app/models"
	appRepos "github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/auth"
)

// Default administrator created on first start.
const (
	DefaultAdminName     = "Administrator"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "Admin@12345"
)

// CreateDefaultData creates the default administrator if no account uses its email.
// It reports whether a user was created.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, hasher auth.Hasher, lgr zerolog.Logger) (bool, error) {
	exists, err := userRepo.EmailExists(ctx, DefaultAdminEmail)
	if err != nil {
		return false, fmt.Errorf("check default admin: %w", err)
	}
	if exists {
		lgr.Debug().Str("email", DefaultAdminEmail).Msg("Default admin already present")
		return false, nil
	}

	hash, err := hasher.Hash(DefaultAdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash default admin password: %w", err)
	}

	id, err := userRepo.Create(ctx, &appModels.User{
		Name:     DefaultAdminName,
		Email:    DefaultAdminEmail,
		Password: hash,
		Role:     appModels.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}

	lgr.Warn().Int64("userID", id).Str("email", DefaultAdminEmail).Msg("Default admin created; change its password")
	return true, nil
}
