package order

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
)

// UpdateStatusUseCase 订单状态流转（管理员）
// 取消订单时在同一事务中把每行的数量归还库存
type UpdateStatusUseCase struct {
	orderRepo order.Repository
	restocker Restocker
	tx        Transactor
	events    EventPublisher
	now       func() time.Time
}

// NewUpdateStatusUseCase 创建状态流转用例
func NewUpdateStatusUseCase(orderRepo order.Repository, restocker Restocker, tx Transactor, events EventPublisher) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		orderRepo: orderRepo,
		restocker: restocker,
		tx:        tx,
		events:    events,
		now:       time.Now,
	}
}

// Execute 把订单流转到target
func (uc *UpdateStatusUseCase) Execute(ctx context.Context, id string, target order.Status) (*OrderResponse, error) {
	var (
		o    *order.Order
		from order.Status
	)
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = uc.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := o.TransitionTo(target, uc.now()); err != nil {
			return err
		}
		// 条件更新：并发的两次取消只有一次成功，库存不会重复归还
		if err := uc.orderRepo.UpdateStatus(ctx, id, from, target, o.UpdatedAt); err != nil {
			return err
		}
		if target == order.StatusCancelled {
			return uc.restock(ctx, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id": o.ID,
		"from":     from,
		"to":       o.Status,
	}).Info("订单状态已更新")

	if err := uc.events.OrderStatusChanged(ctx, o, from); err != nil {
		log.WithError(err).WithField("order_id", o.ID).Warn("发布订单状态事件失败")
	}
	return ToOrderResponse(o), nil
}

func (uc *UpdateStatusUseCase) restock(ctx context.Context, o *order.Order) error {
	for _, item := range o.Items {
		err := uc.restocker.ReturnStock(ctx, item.BookID, item.Quantity)
		if err == nil {
			continue
		}
		// 图书已下架时无处归还，跳过
		var nf *inventory.BookNotFoundError
		if errors.As(err, &nf) {
			log.WithFields(log.Fields{
				"order_id": o.ID,
				"book_id":  item.BookID,
				"quantity": item.Quantity,
			}).Warn("取消订单时图书已不存在，跳过库存归还")
			continue
		}
		return err
	}
	return nil
}
