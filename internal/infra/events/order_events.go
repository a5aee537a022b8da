package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/segmentio/kafka-go"
)

// OrderEvent 訂單狀態變化事件, 發到 kafka 給下游 (通知/報表) 消費
type OrderEvent struct {
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uint              `json:"user_id"`
	Previous    model.OrderStatus `json:"previous_status"`
	Current     model.OrderStatus `json:"current_status"`
	Total       string            `json:"total"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

type Publisher interface {
	PublishOrderStatusChanged(ctx context.Context, event OrderEvent) error
	Close() error
}

// KafkaPublisher kafka-go Writer 的薄封裝
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

var _ Publisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		// 同一張訂單的事件進同一個 partition, 保序
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: value,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher 沒有設定 broker 時使用
type NopPublisher struct{}

func (NopPublisher) PublishOrderStatusChanged(ctx context.Context, event OrderEvent) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
