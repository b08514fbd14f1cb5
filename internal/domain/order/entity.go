package order

import (
	"math"
	"time"
)

// Status 订单状态
type Status string

const (
	StatusPending    Status = "PENDING"    // 初始状态,只能由下单时设置
	StatusProcessing Status = "PROCESSING" // 处理中
	StatusShipped    Status = "SHIPPED"    // 已发货
	StatusDelivered  Status = "DELIVERED"  // 已送达(终态)
	StatusCancelled  Status = "CANCELLED"  // 已取消(终态)
)

// transitions 合法的状态流转
// PENDING → PROCESSING → SHIPPED → DELIVERED
// PENDING / PROCESSING → CANCELLED
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ParseStatus 解析状态字符串
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", ErrUnknownStatus
	}
	return st, nil
}

// IsTerminal 是否终态
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransitionTo 检查s能否流转到target
// 任何状态都不能流转到PENDING
func (s Status) CanTransitionTo(target Status) bool {
	if target == StatusPending {
		return false
	}
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// LineItem 订单行
// 书名和单价是下单时刻的快照,之后图书改名或改价都不影响历史订单
type LineItem struct {
	BookID    string
	Title     string
	UnitPrice int64 // 单价(分)
	Quantity  int
}

// Subtotal 行小计(分)
func (li LineItem) Subtotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Order 订单实体(聚合根)
// 1. LineItem不是独立聚合,只能随Order读写
// 2. TotalAmount由行项目计算得出,从不接受客户端传值
// 3. CreatedAt创建后不可变
type Order struct {
	ID          string
	UserID      string
	Items       []LineItem // 与提交顺序一致
	TotalAmount int64      // 总金额(分)
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrder 创建待处理订单,总金额由行项目计算
func NewOrder(id, userID string, items []LineItem, now time.Time) *Order {
	o := &Order{
		ID:        id,
		UserID:    userID,
		Items:     items,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.TotalAmount = o.CalculateTotal()
	return o
}

// CalculateTotal 按行项目计算总金额
func (o *Order) CalculateTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Subtotal()
	}
	return total
}

// SumTotal 按行项目计算总金额,超出int64范围时ok为false
// 单价和数量都不为负
func SumTotal(items []LineItem) (total int64, ok bool) {
	for _, item := range items {
		qty := int64(item.Quantity)
		if qty > 0 && item.UnitPrice > math.MaxInt64/qty {
			return 0, false
		}
		sub := item.UnitPrice * qty
		if total > math.MaxInt64-sub {
			return 0, false
		}
		total += sub
	}
	return total, true
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition.WithDetails(map[string]interface{}{
			"from": o.Status,
			"to":   target,
		})
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

// IsOwnedBy 订单是否属于指定用户
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}
