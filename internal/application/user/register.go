package user

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
)

// RegisterUseCase 用户注册用例，公开注册一律是CUSTOMER
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// Execute 执行注册，邮箱重复时返回ErrEmailDuplicate(409)
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname, user.RoleCustomer)
	if err != nil {
		return nil, err
	}
	log.WithField("user_id", u.ID).Info("新用户注册")
	info := ToUserInfo(u)
	return &info, nil
}
