package repository

import (
	"context"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	pkgkafka "github.com/saiuppala9/ai-forex-trader/pkg/kafka"
)

// KafkaSignalPublisher fans consensus records onto the signals topic,
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) domrepo.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, rec *models.ConsensusRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.Symbol), rec)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaQuotePublisher fans raw quotes onto the quotes topic for the
// candle aggregation pipeline.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) *KafkaQuotePublisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) Publish(ctx context.Context, q *models.Quote) error {
	return p.producer.Publish(ctx, p.topic, []byte(q.Symbol), q)
}

func (p *KafkaQuotePublisher) PublishBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(quotes))
	for i, q := range quotes {
		msgs[i] = pkgkafka.Message{Key: []byte(q.Symbol), Value: q}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaQuotePublisher) Close() error {
	// Producer shared with the signal publisher; closed there.
	return nil
}
