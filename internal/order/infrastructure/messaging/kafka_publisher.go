package messaging

import (
	"context"

	"github.com/teleshop/storefront/internal/order/domain"
	"github.com/teleshop/storefront/pkg/mq"
)

// kafkaPublisher 基于 Kafka 的订单事件发布实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建 Kafka 事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}
