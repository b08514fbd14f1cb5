package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-orderengine/pkg/metrics"
	"github.com/xiebiao/bookstore-orderengine/pkg/tracing"
)

// PlaceOrderUseCase 下单用例
//
// 流程：
//  1. Assembler校验请求并逐行预占库存（任一行失败则已预占的行全部归还）
//  2. 生成订单（PENDING，总金额由预占时的单价计算）
//  3. 经熔断器写库，写库有独立超时
//  4. 写库失败/超时/熔断时归还全部预占，返回ErrStorage
//  5. 写库成功后发布order.placed事件，发布失败只记录日志
type PlaceOrderUseCase struct {
	assembler      *Assembler
	orderRepo      order.Repository
	breaker        *circuitbreaker.CircuitBreaker
	events         EventPublisher
	persistTimeout time.Duration
	now            func() time.Time
	newID          func() string
}

// Option 可选配置（测试中替换时钟和ID生成）
type Option func(*PlaceOrderUseCase)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(uc *PlaceOrderUseCase) { uc.now = now }
}

// WithIDGenerator 替换订单ID生成
func WithIDGenerator(newID func() string) Option {
	return func(uc *PlaceOrderUseCase) { uc.newID = newID }
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	assembler *Assembler,
	orderRepo order.Repository,
	breaker *circuitbreaker.CircuitBreaker,
	events EventPublisher,
	persistTimeout time.Duration,
	opts ...Option,
) *PlaceOrderUseCase {
	uc := &PlaceOrderUseCase{
		assembler:      assembler,
		orderRepo:      orderRepo,
		breaker:        breaker,
		events:         events,
		persistTimeout: persistTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	UserID string
	Lines  []LineRequest
}

// Execute 执行下单
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	start := time.Now()
	metrics.OrdersInProgress.Inc()
	defer func() {
		metrics.OrdersInProgress.Dec()
		metrics.OrderPlacementDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracing.StartSpan(ctx, "order.place")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.user_id", req.UserID),
		attribute.Int("order.lines", len(req.Lines)),
	)

	o, err := uc.place(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		metrics.OrdersFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	span.SetAttributes(attribute.String("order.id", o.ID))
	metrics.OrdersPlacedTotal.Inc()
	log.WithFields(log.Fields{
		"order_id": o.ID,
		"user_id":  o.UserID,
		"total":    o.TotalAmount,
		"lines":    len(o.Items),
	}).Info("订单创建成功")

	if err := uc.events.OrderPlaced(ctx, o); err != nil {
		log.WithError(err).WithField("order_id", o.ID).Warn("发布下单事件失败")
	}
	return ToOrderResponse(o), nil
}

func (uc *PlaceOrderUseCase) place(ctx context.Context, req PlaceOrderRequest) (*order.Order, error) {
	priced, err := uc.assembler.Assemble(ctx, req.UserID, req.Lines)
	if err != nil {
		return nil, err
	}

	o := order.NewOrder(uc.newID(), priced.UserID, priced.Items, uc.now())

	// 写库超时只作用于req内部，熔断器据此把慢库计为失败，调用方取消则不计
	err = uc.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		if uc.persistTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, uc.persistTimeout)
			defer cancel()
		}
		return uc.orderRepo.Save(ctx, o)
	})
	if err != nil {
		entry := log.WithError(err).WithFields(log.Fields{
			"order_id": o.ID,
			"user_id":  o.UserID,
		})
		if rerr := priced.Release(ctx); rerr != nil {
			entry.WithField("release_error", rerr).Error("订单写库失败，且库存归还不完整")
		} else {
			entry.Warn("订单写库失败，已归还预占库存")
		}
		return nil, storageFailure(err)
	}
	return o, nil
}
