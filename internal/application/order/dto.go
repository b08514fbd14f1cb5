package order

import (
	"time"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/pkg/money"
)

// OrderResponse 订单响应DTO
// 金额同时给出整数"分"和两位小数的字符串
type OrderResponse struct {
	ID          string             `json:"id"`
	UserID      string             `json:"user_id"`
	Items       []LineItemResponse `json:"items"`
	TotalAmount int64              `json:"total_amount"`
	Total       string             `json:"total"`
	Status      string             `json:"status"`
	CreatedAt   string             `json:"created_at"`
	UpdatedAt   string             `json:"updated_at"`
}

// LineItemResponse 订单行
type LineItemResponse struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// ToOrderResponse 实体转响应
func ToOrderResponse(o *order.Order) *OrderResponse {
	items := make([]LineItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemResponse{
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Price:     money.Format(item.UnitPrice),
			Quantity:  item.Quantity,
			Subtotal:  money.Format(item.Subtotal()),
		}
	}
	return &OrderResponse{
		ID:          o.ID,
		UserID:      o.UserID,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Total:       money.Format(o.TotalAmount),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   o.UpdatedAt.Format(time.RFC3339),
	}
}

func toOrderResponses(orders []*order.Order) []*OrderResponse {
	list := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = ToOrderResponse(o)
	}
	return list
}
