// Package mq 消息发布
//
// 订单领域事件（order.placed / order.status_changed）通过Publisher投递，
// 支持RabbitMQ（topic交换机）和Kafka两种实现，由配置选择。
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/xiebiao/bookstore-orderengine/pkg/metrics"
)

// Publisher 消息发布者
//
// key在RabbitMQ中作为routing key，在Kafka中作为消息key（同一订单落在同一分区）。
type Publisher interface {
	Publish(ctx context.Context, topic, key string, message interface{}) error
	Close() error
}

// Encode 消息统一使用JSON
func Encode(message interface{}) ([]byte, error) {
	if raw, ok := message.([]byte); ok {
		return raw, nil
	}
	body, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("消息序列化失败: %w", err)
	}
	return body, nil
}

func observe(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MessagesPublishedTotal.WithLabelValues(topic, result).Inc()
}

// =========================================
// RabbitMQ
// =========================================

// RabbitPublisher RabbitMQ发布者，topic即routing key
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitPublisher 连接RabbitMQ并声明持久化交换机
func NewRabbitPublisher(url, exchange, exchangeType string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange,
		exchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明Exchange失败: %w", err)
	}

	log.WithFields(log.Fields{"exchange": exchange, "type": exchangeType}).Info("RabbitMQ发布者已创建")

	return &RabbitPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Publish 发布持久化消息
func (p *RabbitPublisher) Publish(ctx context.Context, topic, key string, message interface{}) error {
	body, err := Encode(message)
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    key,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	observe(topic, err)
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	return nil
}

// Close 关闭Channel和连接
func (p *RabbitPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// =========================================
// Kafka
// =========================================

// KafkaPublisher Kafka发布者，topic为空时使用默认topic
type KafkaPublisher struct {
	w     *kafka.Writer
	topic string
}

// NewKafkaPublisher 创建同步写入的Kafka发布者
func NewKafkaPublisher(brokers []string, defaultTopic string) *KafkaPublisher {
	log.WithFields(log.Fields{"brokers": brokers, "topic": defaultTopic}).Info("Kafka发布者已创建")
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		topic: defaultTopic,
	}
}

// Publish 按key哈希分区写入
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, message interface{}) error {
	body, err := Encode(message)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(key),
		Value: body,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(topic)},
		},
	}
	if msg.Topic == "" {
		msg.Topic = topic
	}

	err = p.w.WriteMessages(ctx, msg)
	observe(topic, err)
	if err != nil {
		return fmt.Errorf("写入Kafka失败: %w", err)
	}
	return nil
}

// Close 刷新并关闭Writer
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
