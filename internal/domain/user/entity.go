package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User 用户实体（聚合根）
// 设计说明：
// 1. 密码只保存bcrypt哈希值
// 2. 领域实体不依赖GORM tag（映射在infrastructure层处理）
type User struct {
	ID        string
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
