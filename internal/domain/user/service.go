package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// Service 用户领域服务
// 负责密码加密与校验、注册规则；不处理HTTP请求
type Service interface {
	// Register 用户注册，role为空时按CUSTOMER处理
	Register(ctx context.Context, email, password, nickname string, role Role) (*User, error)

	// Login 校验邮箱和密码
	Login(ctx context.Context, email, password string) (*User, error)

	// ValidatePassword 验证密码
	ValidatePassword(hashedPassword, plainPassword string) error

	// HashPassword 校验强度并加密
	HashPassword(password string) (string, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务，cost<=0时使用bcrypt.DefaultCost
func NewService(repo Repository, cost int) Service {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 邮箱格式校验
// 2. 密码强度校验（8-20位，包含字母和数字）
// 3. 邮箱唯一性由存储层保证
func (s *service) Register(ctx context.Context, email, password, nickname string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	}

	nickname = strings.TrimSpace(nickname)
	if n := len([]rune(nickname)); n < 2 || n > 50 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")
	}

	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "未知的用户角色")
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  hashed,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 用户登录
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.ValidatePassword(u.Password, password); err != nil {
		return nil, err
	}
	return u, nil
}

// ValidatePassword 验证明文密码与哈希值是否匹配
func (s *service) ValidatePassword(hashedPassword, plainPassword string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

// HashPassword 校验密码强度后加密
func (s *service) HashPassword(password string) (string, error) {
	if err := validatePasswordStrength(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	letter       = regexp.MustCompile(`[a-zA-Z]`)
	digit        = regexp.MustCompile(`[0-9]`)
)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validatePasswordStrength 8-20位，必须包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !letter.MatchString(password) || !digit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
