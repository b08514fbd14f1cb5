package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
)

// OrderRepository 内存订单仓储
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

var _ order.Repository = (*OrderRepository)(nil)

// NewOrderRepository 创建内存订单仓储
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*order.Order)}
}

// Save 保存订单
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return errDuplicate
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

// FindByID 查询订单
func (r *OrderRepository) FindByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

// FindByUserID 用户订单，按创建时间倒序
func (r *OrderRepository) FindByUserID(_ context.Context, userID string) ([]*order.Order, error) {
	return r.collect(func(o *order.Order) bool { return o.UserID == userID }), nil
}

// FindAll 全部订单，按创建时间倒序
func (r *OrderRepository) FindAll(_ context.Context) ([]*order.Order, error) {
	return r.collect(func(*order.Order) bool { return true }), nil
}

// UpdateStatus 当前状态等于from时才更新
func (r *OrderRepository) UpdateStatus(_ context.Context, id string, from, to order.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	if o.Status != from {
		return order.ErrInvalidStatusTransition
	}
	o.Status = to
	o.UpdatedAt = at
	return nil
}

func (r *OrderRepository) collect(keep func(*order.Order) bool) []*order.Order {
	r.mu.RLock()
	result := make([]*order.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			result = append(result, copyOrder(o))
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.LineItem(nil), o.Items...)
	return &cp
}
