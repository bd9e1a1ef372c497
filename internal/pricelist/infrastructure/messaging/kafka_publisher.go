package messaging

import (
	"context"

	"github.com/teleshop/storefront/internal/pricelist/application"
	"github.com/teleshop/storefront/pkg/mq"
)

// kafkaPublisher 基于 Kafka 的价格事件发布实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建 Kafka 事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) application.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}
