package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/cache"
	"project-management-api/internal/models"
)

// RoleService serves the fixed role catalog.
type RoleService interface {
	List(ctx context.Context) ([]models.Role, error)
}

type roleService struct {
	db     *gorm.DB
	cache  *cache.Cache[string, []models.Role]
	ttl    time.Duration
	logger *zap.Logger
}

// NewRoleService caches the catalog for ttl. Roles are seed data, so the
// cache never needs invalidating; it holds no per-user decisions.
func NewRoleService(db *gorm.DB, ttl time.Duration, logger *zap.Logger) RoleService {
	return &roleService{
		db:     db,
		cache:  cache.New[string, []models.Role](),
		ttl:    ttl,
		logger: logger.Named("role-service"),
	}
}

var _ RoleService = (*roleService)(nil)

const rolesKey = "roles"

func (s *roleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.cache.GetOrLoad(rolesKey, s.ttl, func() ([]models.Role, error) {
		var roles []models.Role
		if err := s.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		s.logger.Debug("Role catalog loaded", zap.Int("count", len(roles)))
		return roles, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Role(nil), roles...), nil
}
