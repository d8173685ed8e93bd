package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error

	// UpdatePaymentStatus records the gateway's authoritative status on the
	// payment row so operators can correlate it with the order's state.
	UpdatePaymentStatus(ctx context.Context, orderID, status string) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)

	// SaveWebhookEvent records every syntactically valid notification for
	// operator visibility. It is an audit trail, not the idempotency
	// mechanism; that lives in the order state machine.
	SaveWebhookEvent(ctx context.Context, eventType, paymentID string, payload json.RawMessage) (int64, error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, preference_id, status, amount)
		VALUES ($1, $2, $3, $4)
	`, p.OrderID, p.PreferenceID, p.Status, p.Amount)
	return err
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = now() WHERE order_id = $2
	`, status, orderID)
	return err
}

func (r *repository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, preference_id, status, amount, created_at, updated_at
		FROM payments WHERE order_id = $1
	`, orderID)

	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.PreferenceID, &p.Status, &p.Amount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SaveWebhookEvent(ctx context.Context, eventType, paymentID string, payload json.RawMessage) (int64, error) {
	const q = `
	INSERT INTO payment_webhooks (event_type, payment_id, payload)
	VALUES ($1, $2, $3)
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, eventType, paymentID, payload).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
