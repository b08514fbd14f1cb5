// Package messaging 订单领域事件发布
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/internal/domain/order"
	"github.com/xiebiao/bookstore-orderengine/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-orderengine/pkg/mq"
)

// 事件主题
const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status_changed"
)

// publishTimeout 异步发布时单条消息的超时
const publishTimeout = 5 * time.Second

// OrderLine 事件中的订单行
type OrderLine struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// OrderPlacedEvent 下单成功
type OrderPlacedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	TotalAmount int64       `json:"total_amount"`
	Items       []OrderLine `json:"items"`
	PlacedAt    time.Time   `json:"placed_at"`
}

// OrderStatusChangedEvent 订单状态变化
type OrderStatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

// OrderEventPublisher 把订单事件投递到消息队列
// publisher为nil时只写日志
type OrderEventPublisher struct {
	publisher mq.Publisher
	async     bool
	wg        sync.WaitGroup
}

// NewOrderEventPublisher 按mq.driver创建事件发布者
func NewOrderEventPublisher(cfg *config.Config) (*OrderEventPublisher, func(), error) {
	var (
		pub mq.Publisher
		err error
	)
	switch cfg.MQ.Driver {
	case "", "none":
	case "rabbitmq":
		pub, err = mq.NewRabbitPublisher(cfg.MQ.RabbitMQ.URL, cfg.MQ.RabbitMQ.Exchange, cfg.MQ.RabbitMQ.ExchangeType)
		if err != nil {
			return nil, nil, err
		}
	case "kafka":
		pub = mq.NewKafkaPublisher(cfg.MQ.Kafka.Brokers, cfg.MQ.Kafka.Topic)
	default:
		return nil, nil, fmt.Errorf("未知的消息队列驱动: %s", cfg.MQ.Driver)
	}

	p := NewPublisher(pub, cfg.MQ.PublishAsync)
	return p, p.Close, nil
}

// NewPublisher 用已有的mq.Publisher创建
func NewPublisher(pub mq.Publisher, async bool) *OrderEventPublisher {
	return &OrderEventPublisher{publisher: pub, async: async}
}

// OrderPlaced 发布下单事件
func (p *OrderEventPublisher) OrderPlaced(ctx context.Context, o *order.Order) error {
	lines := make([]OrderLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = OrderLine{
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return p.publish(ctx, TopicOrderPlaced, o.ID, OrderPlacedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Items:       lines,
		PlacedAt:    o.CreatedAt,
	})
}

// OrderStatusChanged 发布状态变化事件
func (p *OrderEventPublisher) OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	return p.publish(ctx, TopicOrderStatusChanged, o.ID, OrderStatusChangedEvent{
		OrderID:   o.ID,
		UserID:    o.UserID,
		From:      string(from),
		To:        string(o.Status),
		ChangedAt: o.UpdatedAt,
	})
}

func (p *OrderEventPublisher) publish(ctx context.Context, topic, key string, event interface{}) error {
	entry := log.WithFields(log.Fields{"topic": topic, "order_id": key})
	if p.publisher == nil {
		entry.Debug("未配置消息队列，跳过事件发布")
		return nil
	}

	if !p.async {
		return p.publisher.Publish(ctx, topic, key, event)
	}

	// 异步发布不受请求结束影响
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.publisher.Publish(pctx, topic, key, event); err != nil {
			entry.WithError(err).Warn("订单事件发布失败")
		}
	}()
	return nil
}

// Close 等待异步发布完成后关闭连接
func (p *OrderEventPublisher) Close() {
	p.wg.Wait()
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Close(); err != nil {
		log.WithError(err).Warn("关闭消息队列连接失败")
	}
}
