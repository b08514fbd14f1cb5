package inventory

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/xiebiao/bookstore-orderengine/pkg/metrics"
)

// DefaultMaxAttempts 单次预占的CAS最大尝试次数
const DefaultMaxAttempts = 1000

// Service 库存预占单元
type Service struct {
	store       StockStore
	now         func() time.Time
	maxAttempts int
}

// Option 可选配置
type Option func(*Service)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxAttempts 设置CAS最大尝试次数
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewService 创建库存预占单元
func NewService(store StockStore, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reserve 原子地检查并扣减库存
//
// 失败时不产生任何修改：
//   - quantity<=0 返回ErrInvalidQuantity
//   - 图书不存在返回*BookNotFoundError
//   - 库存不足返回*InsufficientStockError
func (s *Service) Reserve(ctx context.Context, bookID string, quantity int) (*Reservation, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item, err := s.store.GetStock(ctx, bookID)
		if err != nil {
			var nf *BookNotFoundError
			if errors.As(err, &nf) {
				metrics.ObserveReservation(metrics.ResultNotFound)
				return nil, err
			}
			metrics.ObserveReservation(metrics.ResultError)
			return nil, fmt.Errorf("读取库存失败: %w", err)
		}

		if item.Stock < quantity {
			metrics.ObserveReservation(metrics.ResultInsufficient)
			return nil, &InsufficientStockError{BookID: bookID, Requested: quantity, Available: item.Stock}
		}

		ok, err := s.store.CompareAndSetStock(ctx, bookID, item.Stock, item.Stock-quantity)
		if err != nil {
			metrics.ObserveReservation(metrics.ResultError)
			return nil, fmt.Errorf("扣减库存失败: %w", err)
		}
		if ok {
			metrics.ObserveReservation(metrics.ResultSuccess)
			return &Reservation{
				BookID:     bookID,
				Title:      item.Title,
				UnitPrice:  item.Price,
				Quantity:   quantity,
				ReservedAt: s.now(),
			}, nil
		}

		// 其他请求抢先修改了库存，重新读取
		metrics.StockCASConflictsTotal.Inc()
		if attempt >= s.maxAttempts {
			metrics.ObserveReservation(metrics.ResultError)
			return nil, ErrContention
		}
		runtime.Gosched()
	}
}

// Release 归还预占的数量，每个Reservation只能释放一次(由调用方保证)
func (s *Service) Release(ctx context.Context, r *Reservation) error {
	if r == nil || r.Quantity <= 0 {
		return nil
	}
	if err := s.store.ReleaseStock(ctx, r.BookID, r.Quantity); err != nil {
		metrics.StockReleasesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("释放库存失败[book=%s qty=%d]: %w", r.BookID, r.Quantity, err)
	}
	metrics.StockReleasesTotal.WithLabelValues("success").Inc()
	return nil
}

// ReturnStock 取消订单时归还已售出的数量
// 和Release一样不检查上限：归还量不超过售出量
func (s *Service) ReturnStock(ctx context.Context, bookID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.store.ReleaseStock(ctx, bookID, quantity); err != nil {
		metrics.StockReleasesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.StockReleasesTotal.WithLabelValues("success").Inc()
	return nil
}

// Restock 补货
func (s *Service) Restock(ctx context.Context, bookID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > MaxStock {
		return ErrStockOverflow
	}
	return s.store.AddStock(ctx, bookID, quantity)
}

// Available 当前可用库存
func (s *Service) Available(ctx context.Context, bookID string) (int, error) {
	item, err := s.store.GetStock(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return item.Stock, nil
}
