package user

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// AdminSeeder 启动时确保管理员账号存在
type AdminSeeder struct {
	repo        user.Repository
	userService user.Service
	admin       config.AdminConfig
}

// NewAdminSeeder 创建管理员初始化器
func NewAdminSeeder(repo user.Repository, userService user.Service, cfg *config.Config) *AdminSeeder {
	return &AdminSeeder{repo: repo, userService: userService, admin: cfg.Admin}
}

// Seed 未配置邮箱时跳过，账号已存在时不做修改
func (s *AdminSeeder) Seed(ctx context.Context) error {
	if s.admin.Email == "" {
		return nil
	}
	_, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(s.admin.Email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return err
	}

	u, err := s.userService.Register(ctx, s.admin.Email, s.admin.Password, s.admin.Nickname, user.RoleAdmin)
	if err != nil {
		// 多实例同时启动时可能已被其他实例创建
		if errors.Is(err, apperrors.ErrEmailDuplicate) {
			return nil
		}
		return err
	}
	log.WithFields(log.Fields{"user_id": u.ID, "email": u.Email}).Info("已创建管理员账号")
	return nil
}
