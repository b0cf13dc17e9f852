package services

import (
	"context"

	"go.uber.org/zap"

	"tenantadmin/internal/domain"
	"tenantadmin/internal/domain/models"
)

// SeedConfig names the bootstrap tenant and super user.
type SeedConfig struct {
	TenantName        string
	TenantDomain      string
	SuperUser         string
	SuperUserPassword string
}

// Seeder creates the default tenant and the super user when they are missing.
type Seeder struct {
	Tenants TenantService
	Users   UserService
	Logger  *zap.Logger
}

func (s Seeder) Seed(ctx context.Context, cfg SeedConfig) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	_, err := s.Tenants.GetByName(ctx, cfg.TenantName)
	switch {
	case domain.IsNotFound(err):
		created, err := s.Tenants.create(ctx, NewTenant{Name: cfg.TenantName, Domain: cfg.TenantDomain})
		if err != nil {
			return err
		}
		logger.Info("default tenant created", zap.String("tenant_id", created.ID), zap.String("domain", cfg.TenantDomain))
	case err != nil:
		return err
	}

	exists, err := s.Users.SuperRoleExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if cfg.SuperUser == "" || cfg.SuperUserPassword == "" {
		logger.Warn("super user not seeded: SUPER_USER and SUPER_USER_PASSWORD are empty")
		return nil
	}
	id, err := s.Users.create(ctx, models.NewUser{
		Username:  cfg.SuperUser,
		Password:  cfg.SuperUserPassword,
		Firstname: "super",
		Lastname:  "user",
		Role:      domain.RoleSuperUser,
	})
	if err != nil {
		return err
	}
	logger.Info("super user created", zap.String("user_id", id))
	return nil
}
