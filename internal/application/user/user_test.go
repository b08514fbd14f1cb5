package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/user"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/jwt"
)

type fixture struct {
	repo     *memory.UserRepository
	sessions *memory.SessionStore
	service  user.Service
	jwt      *jwt.Manager
}

func newFixture() *fixture {
	repo := memory.NewUserRepository()
	return &fixture{
		repo:     repo,
		sessions: memory.NewSessionStore(),
		service:  user.NewService(repo, 4), // 测试中降低bcrypt成本
		jwt:      jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	info, err := NewRegisterUseCase(f.service).Execute(ctx, RegisterRequest{
		Email: "Alice@Example.com", Password: "secret123", Nickname: "爱丽丝",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Equal(t, "CUSTOMER", info.Role)

	_, err = NewRegisterUseCase(f.service).Execute(ctx, RegisterRequest{
		Email: "alice@example.com", Password: "secret123", Nickname: "另一个",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	assert.Equal(t, 409, apperrors.GetAppError(err).HTTPStatus())

	login := NewLoginUseCase(f.service, f.jwt, f.sessions, time.Hour)
	resp, err := login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := f.jwt.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, info.ID, claims.UserID)
	assert.Equal(t, "CUSTOMER", claims.Role)

	_, err = login.Execute(ctx, LoginRequest{Email: "alice@example.com", Password: "wrong1234"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
	assert.Equal(t, 401, apperrors.GetAppError(err).HTTPStatus())
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := NewRegisterUseCase(f.service).Execute(ctx, RegisterRequest{Email: "bob@x.com", Password: "secret123", Nickname: "鲍勃"})
	require.NoError(t, err)
	resp, err := NewLoginUseCase(f.service, f.jwt, f.sessions, time.Hour).Execute(ctx, LoginRequest{Email: "bob@x.com", Password: "secret123"})
	require.NoError(t, err)

	claims, err := f.jwt.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	require.NoError(t, NewLogoutUseCase(f.sessions).Execute(ctx, claims))

	revoked, err := f.sessions.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	refreshed, err := NewRefreshUseCase(f.jwt, f.sessions).Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = NewRefreshUseCase(f.jwt, f.sessions).Execute(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "Access Token不能用来刷新")
}

func TestProfileUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	info, err := NewRegisterUseCase(f.service).Execute(ctx, RegisterRequest{Email: "c@x.com", Password: "secret123", Nickname: "卡罗尔"})
	require.NoError(t, err)
	uc := NewProfileUseCase(f.repo, f.service)

	nick := "  新昵称 "
	updated, err := uc.Update(ctx, info.ID, UpdateProfileRequest{Nickname: &nick})
	require.NoError(t, err)
	assert.Equal(t, "新昵称", updated.Nickname)
	assert.Equal(t, "c@x.com", updated.Email, "未提供的字段保持不变")

	weak := "short"
	_, err = uc.Update(ctx, info.ID, UpdateProfileRequest{Password: &weak})
	assert.ErrorIs(t, err, apperrors.ErrWeakPassword)

	bad := "ROOT"
	_, err = uc.Update(ctx, info.ID, UpdateProfileRequest{Role: &bad})
	assert.Error(t, err)

	got, err := uc.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOMER", got.Role, "校验失败时不保存")

	_, err = uc.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestAdminSeeder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cfg := config.Default()
	cfg.Admin = config.AdminConfig{Email: "Admin@Shop.com", Password: "admin1234", Nickname: "管理员"}

	seeder := NewAdminSeeder(f.repo, f.service, cfg)
	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx), "重复执行不报错")

	list, total, err := NewProfileUseCase(f.repo, f.service).List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ADMIN", list[0].Role)

	cfg.Admin.Email = ""
	assert.NoError(t, NewAdminSeeder(f.repo, f.service, cfg).Seed(ctx))
}
