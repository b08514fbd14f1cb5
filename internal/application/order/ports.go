package order

import (
	"context"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
)

// Reserver 库存预占（由inventory.Service实现）
type Reserver interface {
	Reserve(ctx context.Context, bookID string, quantity int) (*inventory.Reservation, error)
	Release(ctx context.Context, r *inventory.Reservation) error
}

// Restocker 取消订单时归还库存（由inventory.Service实现）
// 归还不受库存上限限制
type Restocker interface {
	ReturnStock(ctx context.Context, bookID string, quantity int) error
}

// EventPublisher 订单事件
type EventPublisher interface {
	OrderPlaced(ctx context.Context, o *order.Order) error
	OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error
}

// Transactor 事务边界
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
