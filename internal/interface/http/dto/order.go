package dto

import (
	apporder "github.com/xiebiao/bookstore-orderengine/internal/application/order"
)

// PlaceOrderRequest 下单请求
// 订单行的合法性（非空、数量为正）由应用层统一校验，保证在触碰库存前拒绝
type PlaceOrderRequest struct {
	UserID string             `json:"user_id"`
	Lines  []OrderLineRequest `json:"lines"`
}

// OrderLineRequest 订单行
type OrderLineRequest struct {
	BookID   string `json:"book_id"`
	Quantity int    `json:"quantity"`
}

// ToUseCase 转换为应用层请求
func (r *PlaceOrderRequest) ToUseCase() apporder.PlaceOrderRequest {
	lines := make([]apporder.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = apporder.LineRequest{BookID: l.BookID, Quantity: l.Quantity}
	}
	return apporder.PlaceOrderRequest{UserID: r.UserID, Lines: lines}
}

// UpdateOrderStatusRequest 修改订单状态
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PROCESSING SHIPPED DELIVERED CANCELLED"`
}
