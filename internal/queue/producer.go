package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tienda-be/internal/logger"
)

// Enqueuer is what the webhook handler needs: a synchronous handoff that
// only returns nil once the broker has acknowledged the job.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, job ReconcileJob) error
}

type Producer struct {
	w *kafka.Writer
}

// NewProducer builds a synchronous writer. Writes block until the broker
// acks; the caller must not report success to the gateway before that.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) EnqueueReconcile(ctx context.Context, job ReconcileJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := p.Publish(ctx, []byte(job.PaymentID), b); err != nil {
		logger.FromCtx(ctx).Error("failed to enqueue reconcile job",
			zap.String("payment_id", job.PaymentID),
			zap.Int64("event_id", job.EventID),
			zap.Error(err))
		return err
	}
	return nil
}

func (p *Producer) Close() error { return p.w.Close() }
