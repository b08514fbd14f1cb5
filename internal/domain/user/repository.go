package user

import (
	"context"
)

// Repository 用户仓储接口
// 实现需要保证：
// 1. 邮箱唯一，Create重复邮箱时返回errors.ErrEmailDuplicate
// 2. 查询不到时返回errors.ErrUserNotFound
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int) ([]*User, int64, error)
}
