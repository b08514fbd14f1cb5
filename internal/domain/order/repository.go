package order

import (
	"context"
	"time"
)

// Repository 订单仓储接口
// 订单一旦写入只追加,之后只有状态字段会变化
type Repository interface {
	// Save 保存订单及全部订单行(同一事务)
	Save(ctx context.Context, order *Order) error

	// FindByID 查询订单(含订单行),不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByUserID 查询用户的全部订单,按创建时间倒序
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)

	// FindAll 查询全部订单,按创建时间倒序
	FindAll(ctx context.Context) ([]*Order, error)

	// UpdateStatus 条件更新状态:仅当当前状态为from时改为to
	// 当前状态不是from时返回ErrInvalidStatusTransition,不存在返回ErrOrderNotFound
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error
}
