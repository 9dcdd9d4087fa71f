package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/saiuppala9/ai-forex-trader/internal/domain/models"
	domrepo "github.com/saiuppala9/ai-forex-trader/internal/domain/repository"
	pkgkafka "github.com/saiuppala9/ai-forex-trader/pkg/kafka"
)

// KafkaSignalsHandler consumes published consensus records from the
// signals topic and lands them in the durable archive.
type KafkaSignalsHandler struct {
	topic   string
	archive domrepo.SignalArchive
	metrics domrepo.Metrics
}

func NewKafkaSignalsHandler(topic string, archive domrepo.SignalArchive, metrics domrepo.Metrics) *KafkaSignalsHandler {
	return &KafkaSignalsHandler{topic: topic, archive: archive, metrics: metrics}
}

func (h *KafkaSignalsHandler) Topic() string { return h.topic }

func (h *KafkaSignalsHandler) Handle(ctx context.Context, b []byte) error {
	var rec models.ConsensusRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	// E2E latency from consensus time to archive write (approx).
	h.metrics.RecordLatency("archive_e2e_seconds", time.Since(rec.Timestamp).Seconds())

	start := time.Now()
	if err := h.archive.Store(ctx, &rec); err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordLatency("archive_insert_seconds", time.Since(start).Seconds())
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSignalsHandler)(nil)
