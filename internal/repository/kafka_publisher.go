package repository

import (
	"context"

	"NewsSignal/internal/domain/models"
	"NewsSignal/internal/domain/repository"
	pkgkafka "NewsSignal/pkg/kafka"
)

// producer is the subset of pkg/kafka.Producer the publisher needs.
type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher implements Publisher for Kafka. Records are keyed by
// headline ID so retries of one headline land on one partition.
type KafkaPublisher struct {
	producer producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.PredictionRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.HeadlineID), r)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, records []*models.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(r.HeadlineID), Value: r})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ repository.Publisher = (*KafkaPublisher)(nil)
