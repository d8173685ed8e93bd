package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"
	"tienda-be/internal/payment"
	"tienda-be/internal/queue"
)

// Handler receives Mercado Pago notifications. It never trusts the payload
// beyond the payment id: the worker fetches the authoritative state from
// the gateway before touching any order. The handler's only jobs are to
// record the event and hand it off to the queue, then ack fast.
type Handler struct {
	Jobs  queue.Enqueuer
	Audit payment.Repository
}

func NewWebhookHandler(jobs queue.Enqueuer, audit payment.Repository) *Handler {
	return &Handler{Jobs: jobs, Audit: audit}
}

func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	log := logger.FromCtx(r.Context())
	metrics.WebhooksReceived.Inc()

	var payload payment.Notification
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Mercado Pago also posts merchant_order and plan notifications to the
	// same URL. Only payment events carry state we act on; ack the rest so
	// the gateway stops retrying them.
	if payload.Type != "payment" {
		metrics.WebhooksIgnored.Inc()
		log.Info("ignoring non-payment notification", zap.String("type", payload.Type))
		w.WriteHeader(http.StatusOK)
		return
	}

	if payload.Data.ID == "" {
		http.Error(w, "missing payment id", http.StatusBadRequest)
		return
	}

	// Audit trail only. A failed insert must not lose the notification, so
	// log and keep going.
	eventID, err := h.Audit.SaveWebhookEvent(r.Context(), payload.Type, payload.Data.ID, body)
	if err != nil {
		log.Error("failed to record webhook event",
			zap.String("payment_id", payload.Data.ID),
			zap.Error(err))
	}

	job := queue.ReconcileJob{
		PaymentID:  payload.Data.ID,
		EventID:    eventID,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.Jobs.EnqueueReconcile(r.Context(), job); err != nil {
		// Not acked; the gateway will retry the notification.
		http.Error(w, "failed to queue notification", http.StatusInternalServerError)
		return
	}

	log.Info("payment notification queued",
		zap.String("payment_id", payload.Data.ID),
		zap.String("action", payload.Action),
		zap.Int64("event_id", eventID))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
