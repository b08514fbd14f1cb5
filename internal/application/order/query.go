package order

import (
	"context"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
)

// QueryOrdersUseCase 订单查询
type QueryOrdersUseCase struct {
	orderRepo order.Repository
}

// NewQueryOrdersUseCase 创建订单查询用例
func NewQueryOrdersUseCase(orderRepo order.Repository) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{orderRepo: orderRepo}
}

// ListAll 全部订单，新的在前
func (uc *QueryOrdersUseCase) ListAll(ctx context.Context) ([]*OrderResponse, error) {
	orders, err := uc.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return toOrderResponses(orders), nil
}

// History 用户的订单，新的在前；一单都没有时返回ErrNoOrderHistory
func (uc *QueryOrdersUseCase) History(ctx context.Context, userID string) ([]*OrderResponse, error) {
	orders, err := uc.orderRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, order.ErrNoOrderHistory
	}
	return toOrderResponses(orders), nil
}

// Get 单个订单
func (uc *QueryOrdersUseCase) Get(ctx context.Context, id string) (*OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}
