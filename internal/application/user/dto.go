package user

import (
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
)

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ToUserInfo 实体转DTO
func ToUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
