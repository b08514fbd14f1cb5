package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/book"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/inventory"
	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookstore-orderengine/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingEvents 记录发布的事件
type recordingEvents struct {
	mu      sync.Mutex
	placed  []string
	changed []string
	err     error
}

func (r *recordingEvents) OrderPlaced(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed = append(r.placed, o.ID)
	return r.err
}

func (r *recordingEvents) OrderStatusChanged(_ context.Context, o *order.Order, from order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, fmt.Sprintf("%s:%s->%s", o.ID, from, o.Status))
	return r.err
}

// mockOrderRepo 用于模拟写库失败
type mockOrderRepo struct {
	mock.Mock
	order.Repository
}

func (m *mockOrderRepo) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

// blockingOrderRepo Save一直阻塞到ctx结束
type blockingOrderRepo struct {
	order.Repository
}

func (blockingOrderRepo) Save(ctx context.Context, _ *order.Order) error {
	<-ctx.Done()
	return ctx.Err()
}

type OrderSuite struct {
	suite.Suite

	ctx       context.Context
	catalog   *memory.Catalog
	inventory *inventory.Service
	orders    *memory.OrderRepository
	events    *recordingEvents
	breaker   *circuitbreaker.CircuitBreaker
	now       time.Time
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderSuite))
}

func (s *OrderSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.catalog = memory.NewCatalog()
	s.inventory = inventory.NewService(s.catalog)
	s.orders = memory.NewOrderRepository()
	s.events = &recordingEvents{}
	s.breaker = circuitbreaker.NewCircuitBreaker("order-store-test", circuitbreaker.Config{
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(3),
		Timeout:     time.Minute,
	})

	s.addBook("b1", "Go语言圣经", 1000, 5)
	s.addBook("b2", "三体", 2500, 2)
}

func (s *OrderSuite) addBook(id, title string, price int64, stock int) {
	s.Require().NoError(s.catalog.Create(s.ctx, &book.Book{
		ID: id, Title: title, Author: "作者", Price: price, Stock: stock,
	}))
}

func (s *OrderSuite) stock(id string) int {
	n, err := s.inventory.Available(s.ctx, id)
	s.Require().NoError(err)
	return n
}

func (s *OrderSuite) placeOrder(repo order.Repository, persistTimeout time.Duration) *PlaceOrderUseCase {
	var seq int64
	return NewPlaceOrderUseCase(
		NewAssembler(s.inventory, time.Second, 100),
		repo,
		s.breaker,
		s.events,
		persistTimeout,
		WithClock(func() time.Time { return s.now }),
		WithIDGenerator(func() string { return fmt.Sprintf("o-%d", atomic.AddInt64(&seq, 1)) }),
	)
}

func (s *OrderSuite) TestPlaceOrder_Success() {
	uc := s.placeOrder(s.orders, time.Second)

	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines: []LineRequest{
			{BookID: "b1", Quantity: 3},
			{BookID: "b2", Quantity: 1},
		},
	})
	s.Require().NoError(err)

	s.Equal("o-1", resp.ID)
	s.Equal("PENDING", resp.Status)
	s.Equal(int64(5500), resp.TotalAmount)
	s.Equal("55.00", resp.Total)
	s.Require().Len(resp.Items, 2)
	s.Equal("b1", resp.Items[0].BookID, "订单行保持提交顺序")
	s.Equal("10.00", resp.Items[0].Price)
	s.Equal(s.now.Format(time.RFC3339), resp.CreatedAt)

	s.Equal(2, s.stock("b1"))
	s.Equal(1, s.stock("b2"))
	s.Equal([]string{"o-1"}, s.events.placed)

	saved, err := s.orders.FindByID(s.ctx, "o-1")
	s.Require().NoError(err)
	s.Equal(order.StatusPending, saved.Status)
}

func (s *OrderSuite) TestPlaceOrder_InsufficientStockReleasesEarlierLines() {
	uc := s.placeOrder(s.orders, time.Second)

	_, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines: []LineRequest{
			{BookID: "b1", Quantity: 2},
			{BookID: "b2", Quantity: 3},
		},
	})

	var insufficient *inventory.InsufficientStockError
	s.Require().ErrorAs(err, &insufficient)
	s.Equal("b2", insufficient.BookID)
	s.Equal(3, insufficient.Requested)
	s.Equal(2, insufficient.Available)

	appErr := apperrors.GetAppError(err)
	s.Equal(400, appErr.HTTPStatus())
	s.Equal(2, appErr.Details["available"])

	s.Equal(5, s.stock("b1"), "第一行的预占必须归还")
	s.Equal(2, s.stock("b2"))
	all, _ := s.orders.FindAll(s.ctx)
	s.Empty(all)
	s.Empty(s.events.placed)
}

func (s *OrderSuite) TestPlaceOrder_UnknownBook() {
	uc := s.placeOrder(s.orders, time.Second)

	_, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines: []LineRequest{
			{BookID: "b1", Quantity: 1},
			{BookID: "ghost", Quantity: 1},
		},
	})

	var nf *inventory.BookNotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal("ghost", nf.BookID)
	s.Equal(apperrors.ErrCodeUnknownBook, apperrors.GetAppError(err).Code)
	s.Equal(5, s.stock("b1"))
}

func (s *OrderSuite) TestPlaceOrder_ValidationTouchesNoStock() {
	uc := s.placeOrder(s.orders, time.Second)

	cases := map[string]PlaceOrderRequest{
		"user_id":           {UserID: " ", Lines: []LineRequest{{BookID: "b1", Quantity: 1}}},
		"lines":             {UserID: "alice"},
		"lines[1].quantity": {UserID: "alice", Lines: []LineRequest{{BookID: "b1", Quantity: 1}, {BookID: "b2", Quantity: 0}}},
		"lines[0].book_id":  {UserID: "alice", Lines: []LineRequest{{BookID: "", Quantity: 1}}},
		"lines[0].quantity": {UserID: "alice", Lines: []LineRequest{{BookID: "b1", Quantity: inventory.MaxStock + 1}}},
	}
	for field, req := range cases {
		_, err := uc.Execute(s.ctx, req)
		var ve *order.ValidationError
		s.Require().ErrorAs(err, &ve, field)
		s.Equal(field, ve.Field)
	}
	s.Equal(5, s.stock("b1"))
	s.Equal(2, s.stock("b2"))
}

func (s *OrderSuite) TestPlaceOrder_TotalOverflowIsRejected() {
	// 绕过图书校验直接写入超大单价，200本的金额超出int64
	s.addBook("rare", "孤本", 90_000_000_000_000_000, 200)
	uc := NewPlaceOrderUseCase(NewAssembler(s.inventory, time.Second, 0), s.orders, s.breaker, s.events, time.Second)

	_, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 1}, {BookID: "rare", Quantity: 200}},
	})

	var ve *order.ValidationError
	s.Require().ErrorAs(err, &ve)
	s.Equal("lines", ve.Field)
	s.Equal(400, apperrors.GetAppError(err).HTTPStatus())
	s.Equal(200, s.stock("rare"))
	s.Equal(5, s.stock("b1"))

	all, err := s.orders.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
	s.Empty(s.events.placed)
}

func (s *OrderSuite) TestPlaceOrder_StorageFailureReleasesEverything() {
	repo := &mockOrderRepo{}
	repo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(errors.New("disk full"))
	uc := s.placeOrder(repo, time.Second)

	_, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 4}, {BookID: "b2", Quantity: 2}},
	})

	s.ErrorIs(err, order.ErrStorage)
	s.Equal(500, apperrors.GetAppError(err).HTTPStatus())
	s.Equal(5, s.stock("b1"))
	s.Equal(2, s.stock("b2"))
	s.Empty(s.events.placed)
	repo.AssertNumberOfCalls(s.T(), "Save", 1)
}

func (s *OrderSuite) TestPlaceOrder_PersistTimeoutIsStorageFailure() {
	uc := s.placeOrder(blockingOrderRepo{}, 20*time.Millisecond)

	_, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 5}},
	})

	s.ErrorIs(err, order.ErrStorage)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Equal(5, s.stock("b1"))
}

func (s *OrderSuite) TestPlaceOrder_CallerCancelDuringSave() {
	uc := s.placeOrder(blockingOrderRepo{}, time.Minute)
	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	_, err := uc.Execute(ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 2}},
	})

	s.ErrorIs(err, order.ErrStorage)
	s.Equal(5, s.stock("b1"), "调用方超时后补偿仍然要完成")
	s.Equal(circuitbreaker.StateClosed, s.breaker.State(), "调用方取消不计入熔断统计")
}

func (s *OrderSuite) TestPlaceOrder_OpenBreakerFailsFastAndReleases() {
	repo := &mockOrderRepo{}
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	uc := s.placeOrder(repo, time.Second)
	req := PlaceOrderRequest{UserID: "alice", Lines: []LineRequest{{BookID: "b1", Quantity: 1}}}

	for i := 0; i < 3; i++ {
		_, err := uc.Execute(s.ctx, req)
		s.ErrorIs(err, order.ErrStorage)
	}
	s.Equal(circuitbreaker.StateOpen, s.breaker.State())

	_, err := uc.Execute(s.ctx, req)
	s.ErrorIs(err, order.ErrStorage)
	s.ErrorIs(err, circuitbreaker.ErrOpenState)
	repo.AssertNumberOfCalls(s.T(), "Save", 3)
	s.Equal(5, s.stock("b1"))
}

func (s *OrderSuite) TestPlaceOrder_EventFailureDoesNotFailOrder() {
	s.events.err = errors.New("broker down")
	uc := s.placeOrder(s.orders, time.Second)

	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 1}},
	})
	s.Require().NoError(err)
	s.Equal("PENDING", resp.Status)
}

// 已下的订单不受之后改价影响
func (s *OrderSuite) TestPlaceOrder_PriceIsSnapshotted() {
	uc := s.placeOrder(s.orders, time.Second)
	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 2}},
	})
	s.Require().NoError(err)

	b, _ := s.catalog.FindByID(s.ctx, "b1")
	b.Price = 9900
	b.Title = "改名了"
	s.Require().NoError(s.catalog.Update(s.ctx, b))

	saved, err := s.orders.FindByID(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal(int64(2000), saved.TotalAmount)
	s.Equal("Go语言圣经", saved.Items[0].Title)
}

// 并发下单：卖出的数量加剩余库存等于初始库存，订单数与成功数一致
func (s *OrderSuite) TestPlaceOrder_ConcurrentNoOversell() {
	s.addBook("hot", "爆款", 100, 30)
	uc := s.placeOrder(s.orders, time.Second)

	var (
		wg        sync.WaitGroup
		succeeded int64
		sold      int64
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			qty := i%2 + 1
			// 同时带上b1，验证多行订单失败时的整体回滚
			_, err := uc.Execute(s.ctx, PlaceOrderRequest{
				UserID: fmt.Sprintf("user-%d", i),
				Lines:  []LineRequest{{BookID: "hot", Quantity: qty}, {BookID: "b1", Quantity: 1}},
			})
			if err == nil {
				atomic.AddInt64(&succeeded, 1)
				atomic.AddInt64(&sold, int64(qty))
			}
		}(i)
	}
	wg.Wait()

	all, err := s.orders.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(int(succeeded), len(all))
	s.Equal(int64(30), sold+int64(s.stock("hot")))
	s.Equal(int64(5), succeeded+int64(s.stock("b1")))
	s.GreaterOrEqual(s.stock("hot"), 0)
}

func (s *OrderSuite) TestQuery_History() {
	uc := s.placeOrder(s.orders, time.Second)
	query := NewQueryOrdersUseCase(s.orders)

	_, err := query.History(s.ctx, "alice")
	s.ErrorIs(err, order.ErrNoOrderHistory)
	s.Equal(404, apperrors.GetAppError(err).HTTPStatus())

	_, err = uc.Execute(s.ctx, PlaceOrderRequest{UserID: "alice", Lines: []LineRequest{{BookID: "b1", Quantity: 1}}})
	s.Require().NoError(err)
	s.now = s.now.Add(time.Minute)
	_, err = uc.Execute(s.ctx, PlaceOrderRequest{UserID: "alice", Lines: []LineRequest{{BookID: "b2", Quantity: 1}}})
	s.Require().NoError(err)
	_, err = uc.Execute(s.ctx, PlaceOrderRequest{UserID: "bob", Lines: []LineRequest{{BookID: "b1", Quantity: 1}}})
	s.Require().NoError(err)

	history, err := query.History(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal("o-2", history[0].ID, "新的订单在前")

	all, err := query.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 3)

	_, err = query.Get(s.ctx, "missing")
	s.ErrorIs(err, order.ErrOrderNotFound)
}

func (s *OrderSuite) TestUpdateStatus_CancelRestocksOnce() {
	uc := s.placeOrder(s.orders, time.Second)
	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 3}, {BookID: "b2", Quantity: 2}},
	})
	s.Require().NoError(err)
	s.Equal(2, s.stock("b1"))

	update := NewUpdateStatusUseCase(s.orders, s.inventory, memory.NewTransactor(), s.events)

	var (
		wg   sync.WaitGroup
		wins int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := update.Execute(s.ctx, resp.ID, order.StatusCancelled); err == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins)
	s.Equal(5, s.stock("b1"))
	s.Equal(2, s.stock("b2"))
	s.Equal([]string{resp.ID + ":PENDING->CANCELLED"}, s.events.changed)
}

func (s *OrderSuite) TestUpdateStatus_CancelReturnsStockAboveCeiling() {
	uc := s.placeOrder(s.orders, time.Second)
	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{
		UserID: "alice",
		Lines:  []LineRequest{{BookID: "b1", Quantity: 2}, {BookID: "b2", Quantity: 1}},
	})
	s.Require().NoError(err)
	s.Equal(3, s.stock("b1"))

	// 售出之后b2被补满
	s.Require().NoError(s.inventory.Restock(s.ctx, "b2", inventory.MaxStock-1))
	s.Equal(inventory.MaxStock, s.stock("b2"))

	update := NewUpdateStatusUseCase(s.orders, s.inventory, memory.NewTransactor(), s.events)
	got, err := update.Execute(s.ctx, resp.ID, order.StatusCancelled)
	s.Require().NoError(err)
	s.Equal(string(order.StatusCancelled), got.Status)

	stored, err := s.orders.FindByID(s.ctx, resp.ID)
	s.Require().NoError(err)
	s.Equal(order.StatusCancelled, stored.Status)
	s.Equal(5, s.stock("b1"))
	s.Equal(inventory.MaxStock+1, s.stock("b2"))
}

func (s *OrderSuite) TestUpdateStatus_Transitions() {
	uc := s.placeOrder(s.orders, time.Second)
	resp, err := uc.Execute(s.ctx, PlaceOrderRequest{UserID: "alice", Lines: []LineRequest{{BookID: "b1", Quantity: 1}}})
	s.Require().NoError(err)
	update := NewUpdateStatusUseCase(s.orders, s.inventory, memory.NewTransactor(), s.events)

	_, err = update.Execute(s.ctx, resp.ID, order.StatusShipped)
	s.ErrorIs(err, order.ErrInvalidStatusTransition)

	for _, st := range []order.Status{order.StatusProcessing, order.StatusShipped, order.StatusDelivered} {
		got, err := update.Execute(s.ctx, resp.ID, st)
		s.Require().NoError(err)
		s.Equal(string(st), got.Status)
	}

	_, err = update.Execute(s.ctx, resp.ID, order.StatusPending)
	s.ErrorIs(err, order.ErrInvalidStatusTransition)
	_, err = update.Execute(s.ctx, resp.ID, order.StatusCancelled)
	s.ErrorIs(err, order.ErrInvalidStatusTransition)
	s.Equal(4, s.stock("b1"), "送达的订单不会归还库存")

	_, err = update.Execute(s.ctx, "missing", order.StatusCancelled)
	s.ErrorIs(err, order.ErrOrderNotFound)
}
