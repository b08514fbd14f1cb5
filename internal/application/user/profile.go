package user

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/patch"
)

// ProfileUseCase 个人资料与用户管理
type ProfileUseCase struct {
	repo        user.Repository
	userService user.Service
	updater     patch.Updater[user.User]
}

// NewProfileUseCase 创建用户资料用例
func NewProfileUseCase(repo user.Repository, userService user.Service) *ProfileUseCase {
	return &ProfileUseCase{
		repo:        repo,
		userService: userService,
		updater: patch.Updater[user.User]{
			Find:     repo.FindByID,
			Validate: validateProfile,
			Save:     repo.Update,
		},
	}
}

// UpdateProfileRequest 只更新非nil的字段
type UpdateProfileRequest struct {
	Nickname *string
	Password *string
	Role     *string // 仅管理员可改
}

// Get 查询用户
func (uc *ProfileUseCase) Get(ctx context.Context, id string) (*UserInfo, error) {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}

// Update 部分更新用户
func (uc *ProfileUseCase) Update(ctx context.Context, id string, req UpdateProfileRequest) (*UserInfo, error) {
	u, err := uc.updater.Update(ctx, id, func(u *user.User) error {
		if patch.Set(&u.Nickname, req.Nickname) {
			u.Nickname = strings.TrimSpace(u.Nickname)
		}
		if req.Password != nil {
			hashed, err := uc.userService.HashPassword(*req.Password)
			if err != nil {
				return err
			}
			u.Password = hashed
		}
		if req.Role != nil {
			u.Role = user.Role(*req.Role)
		}
		u.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(u)
	return &info, nil
}

// List 分页查询用户（管理员）
func (uc *ProfileUseCase) List(ctx context.Context, page, pageSize int) ([]UserInfo, int64, error) {
	users, total, err := uc.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	list := make([]UserInfo, len(users))
	for i, u := range users {
		list[i] = ToUserInfo(u)
	}
	return list, total, nil
}

// Delete 删除用户（管理员）
func (uc *ProfileUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func validateProfile(u *user.User) error {
	if n := len([]rune(u.Nickname)); n < 2 || n > 50 {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}
	if !u.Role.Valid() {
		return apperrors.New(apperrors.ErrCodeInvalidParams, "未知的用户角色")
	}
	return nil
}
