package bootstrap

import (
	"context"
	"strings"

	"anoa.com/newsportal/internal/entity"
	"anoa.com/newsportal/internal/modules/user/dto"
	userRepo "anoa.com/newsportal/internal/modules/user/repository"
	userService "anoa.com/newsportal/internal/modules/user/service"
	"anoa.com/newsportal/internal/rbac"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.Models()...)
}

// SeedGroups makes sure one group exists per role.
func SeedGroups(ctx context.Context, repo userRepo.UserRepository) error {
	names := make([]string, 0, len(rbac.Roles))
	for _, role := range rbac.Roles {
		names = append(names, role.GroupName())
	}
	return repo.EnsureGroups(ctx, names...)
}

// SeedAdminUser creates the administrator once. It is opt-in: without a
// password nothing is seeded.
func SeedAdminUser(ctx context.Context, repo userRepo.UserRepository, users userService.UserService, email, password string, log zerolog.Logger) error {
	if password == "" {
		log.Debug().Msg("SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		log.Info().Str("email", email).Msg("admin user already exists, skipping seed")
		return nil
	}

	username, _, _ := strings.Cut(email, "@")
	if _, err := users.CreateAccount(ctx, dto.AdminCreateRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     rbac.RoleAdmin.String(),
	}); err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("admin user seeded")
	return nil
}
