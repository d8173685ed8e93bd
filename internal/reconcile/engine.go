package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"
	"tienda-be/internal/order"
	"tienda-be/internal/payment"
	"tienda-be/internal/queue"
)

// Engine turns a queued notification into an order state transition. It
// fetches the authoritative payment from the gateway, never the payload,
// so a forged or stale notification can at worst trigger a harmless
// re-read.
type Engine struct {
	gateway payment.Gateway
	orders  order.Service
	audit   payment.Repository
}

func NewEngine(gateway payment.Gateway, orders order.Service, audit payment.Repository) *Engine {
	return &Engine{gateway: gateway, orders: orders, audit: audit}
}

// Process applies one reconcile job. A nil return commits the offset.
// Permanent defects (missing order reference, unknown order) are marked
// failed in the audit trail and swallowed; retrying cannot fix them.
// Transient errors propagate so the message is redelivered.
func (e *Engine) Process(ctx context.Context, job queue.ReconcileJob) error {
	timer := metrics.StartTimer()
	log := logger.FromCtx(ctx).With(
		zap.String("payment_id", job.PaymentID),
		zap.Int64("event_id", job.EventID),
	)

	details, err := e.gateway.GetPayment(ctx, job.PaymentID)
	if err != nil {
		log.Warn("failed to fetch payment from gateway, will retry", zap.Error(err))
		return err
	}

	if details.ExternalReference == "" {
		metrics.ReconcilesFailed.Inc()
		log.Error("payment has no external reference, cannot match an order",
			zap.String("status", details.Status))
		e.markFailed(ctx, job, "payment has no external reference")
		return nil
	}

	orderID, err := uuid.Parse(details.ExternalReference)
	if err != nil {
		metrics.ReconcilesFailed.Inc()
		log.Error("external reference is not a valid order id",
			zap.String("external_reference", details.ExternalReference))
		e.markFailed(ctx, job, fmt.Sprintf("bad external reference %q", details.ExternalReference))
		return nil
	}

	if err := e.orders.ApplyPaymentStatus(ctx, orderID, details.Status); err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			metrics.ReconcilesFailed.Inc()
			log.Error("payment references an unknown order",
				zap.String("order_id", orderID.String()))
			e.markFailed(ctx, job, "order not found")
			return nil
		}
		log.Warn("failed to apply payment status, will retry", zap.Error(err))
		return err
	}

	// Bookkeeping after the order transition committed. Neither write can
	// change the outcome, so failures are logged, not retried.
	if err := e.audit.UpdatePaymentStatus(ctx, orderID.String(), details.Status); err != nil {
		log.Warn("failed to record payment status", zap.Error(err))
	}
	if job.EventID != 0 {
		if err := e.audit.MarkWebhookProcessed(ctx, job.EventID); err != nil {
			log.Warn("failed to mark webhook event processed", zap.Error(err))
		}
	}

	metrics.ReconcilesProcessed.Inc()
	log.Info("payment reconciled",
		zap.String("order_id", orderID.String()),
		zap.String("gateway_status", details.Status),
		zap.Duration("elapsed", timer.Duration()))
	return nil
}

func (e *Engine) markFailed(ctx context.Context, job queue.ReconcileJob, reason string) {
	if job.EventID == 0 {
		return
	}
	if err := e.audit.MarkWebhookFailed(ctx, job.EventID, reason); err != nil {
		logger.FromCtx(ctx).Warn("failed to mark webhook event failed",
			zap.Int64("event_id", job.EventID), zap.Error(err))
	}
}

// HandleMessage adapts Process to the consumer's handler signature.
func (e *Engine) HandleMessage(ctx context.Context, m kafka.Message) error {
	var job queue.ReconcileJob
	if err := json.Unmarshal(m.Value, &job); err != nil {
		// Malformed jobs can never succeed; commit past them.
		logger.L().Error("dropping malformed reconcile job", zap.Error(err))
		return nil
	}
	return e.Process(ctx, job)
}
