package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/reciclamais/waste-service/internal/config"
	"github.com/reciclamais/waste-service/internal/domain"
)

const (
	adminName    = "Administrador"
	testUserName = "Usuário de Teste"
	testEmail    = "test@example.com"
	testPassword = "password123"
)

// Bootstrap creates the admin account, and the test account when enabled,
// if they do not exist yet.
func (s *AuthService) Bootstrap(ctx context.Context, cfg config.BootstrapConfig) error {
	created, err := s.EnsureUser(ctx, adminName, cfg.AdminEmail, cfg.AdminInitialPassword, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("admin account created", zap.String("email", cfg.AdminEmail))
	} else {
		s.logger.Info("admin account already present", zap.String("email", cfg.AdminEmail))
	}

	if cfg.SeedTestUser {
		created, err = s.EnsureUser(ctx, testUserName, testEmail, testPassword, domain.RoleUser)
		if err != nil {
			return err
		}
		if created {
			s.logger.Info("test account created", zap.String("email", testEmail))
		}
	}

	if total, err := s.users.Count(ctx); err == nil {
		s.logger.Info("accounts registered", zap.Int("total", total))
	}
	return nil
}
