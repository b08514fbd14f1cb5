package user

import (
	"context"
	"time"
)

// SessionStore 登录会话与Token吊销
// JWT无状态，登出后通过吊销jti让尚未过期的Token失效
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID string) error
	// Revoke 吊销tokenID，ttl为Token剩余有效期
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
