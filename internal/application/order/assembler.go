package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/pkg/saga"
)

// LineRequest 下单请求中的一行，只有图书和数量，价格永远取目录价
type LineRequest struct {
	BookID   string
	Quantity int
}

// PricedOrder 全部订单行预占成功后的结果
// 在订单写库成功之前，它持有的库存都可以通过Release归还
type PricedOrder struct {
	UserID       string
	Items        []order.LineItem
	Reservations []*inventory.Reservation
	TotalAmount  int64

	saga *saga.Saga
}

// Release 逆序归还全部预占，重复调用只归还一次
func (p *PricedOrder) Release(ctx context.Context) error {
	if p.saga == nil {
		return nil
	}
	return p.saga.Rollback(context.WithoutCancel(ctx))
}

// Assembler 校验请求并逐行预占库存
type Assembler struct {
	reserver    Reserver
	sagaTimeout time.Duration
	maxLines    int
}

// NewAssembler 创建订单组装器；maxLines<=0表示不限制行数
func NewAssembler(reserver Reserver, sagaTimeout time.Duration, maxLines int) *Assembler {
	return &Assembler{reserver: reserver, sagaTimeout: sagaTimeout, maxLines: maxLines}
}

// Assemble 按提交顺序预占每一行
//
// 任意一行失败时，之前已预占的行按逆序归还，返回该行的具体错误
// (*inventory.BookNotFoundError / *inventory.InsufficientStockError)。
// 请求不合法时返回*order.ValidationError，此时不会触碰库存。
func (a *Assembler) Assemble(ctx context.Context, userID string, lines []LineRequest) (*PricedOrder, error) {
	if err := a.validate(userID, lines); err != nil {
		return nil, err
	}

	reservations := make([]*inventory.Reservation, len(lines))
	s := saga.NewSaga(a.sagaTimeout)
	for i, line := range lines {
		s.AddStep(
			fmt.Sprintf("reserve[%d]:%s", i, line.BookID),
			func(ctx context.Context) error {
				r, err := a.reserver.Reserve(ctx, line.BookID, line.Quantity)
				if err != nil {
					return err
				}
				reservations[i] = r
				return nil
			},
			func(ctx context.Context) error {
				return a.reserver.Release(ctx, reservations[i])
			},
		)
	}

	if err := s.Execute(ctx); err != nil {
		var stepErr *saga.StepError
		if errors.As(err, &stepErr) {
			err = stepErr.Err
		}
		if errors.Is(err, saga.ErrTimeout) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, storageFailure(err)
		}
		return nil, err
	}

	priced := &PricedOrder{
		UserID:       userID,
		Items:        make([]order.LineItem, len(reservations)),
		Reservations: reservations,
		saga:         s,
	}
	for i, r := range reservations {
		priced.Items[i] = order.LineItem{
			BookID:    r.BookID,
			Title:     r.Title,
			UnitPrice: r.UnitPrice,
			Quantity:  r.Quantity,
		}
	}

	total, ok := order.SumTotal(priced.Items)
	if !ok {
		if err := priced.Release(ctx); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("订单金额溢出，归还库存失败")
		}
		return nil, order.NewValidationError("lines", "订单金额超出范围")
	}
	priced.TotalAmount = total
	return priced, nil
}

func (a *Assembler) validate(userID string, lines []LineRequest) error {
	if strings.TrimSpace(userID) == "" {
		return order.NewValidationError("user_id", "用户ID不能为空")
	}
	if len(lines) == 0 {
		return order.NewValidationError("lines", "订单行不能为空")
	}
	if a.maxLines > 0 && len(lines) > a.maxLines {
		return order.NewValidationError("lines", fmt.Sprintf("订单行不能超过%d行", a.maxLines))
	}
	for i, line := range lines {
		if strings.TrimSpace(line.BookID) == "" {
			return order.NewValidationError(fmt.Sprintf("lines[%d].book_id", i), "图书ID不能为空")
		}
		if line.Quantity <= 0 {
			return order.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "购买数量必须大于0")
		}
		if line.Quantity > inventory.MaxStock {
			return order.NewValidationError(fmt.Sprintf("lines[%d].quantity", i), "购买数量超过库存上限")
		}
	}
	return nil
}
