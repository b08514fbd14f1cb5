package dto

// RegisterRequest HTTP层注册请求
// 说明：HTTP层的DTO，包含参数验证tag；密码强度由领域层校验
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=20"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新Access Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改资料，role只有管理员可以修改
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" binding:"omitempty,min=2,max=50"`
	Password *string `json:"password" binding:"omitempty,min=8,max=20"`
	Role     *string `json:"role" binding:"omitempty,oneof=CUSTOMER ADMIN"`
}

// PageQuery 通用分页参数
type PageQuery struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}
