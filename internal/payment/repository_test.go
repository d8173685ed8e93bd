package payment

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SavePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`INSERT INTO payments`).
		WithArgs("ord-123", "pref-1", "created", 55.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SavePayment(context.Background(), &Payment{
		OrderID:      "ord-123",
		PreferenceID: "pref-1",
		Status:       "created",
		Amount:       55.0,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetPaymentByOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	rows := sqlmock.NewRows([]string{"id", "order_id", "preference_id", "status", "amount", "created_at", "updated_at"}).
		AddRow(1, "ord-123", "pref-1", "created", 55.0, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT id, order_id, preference_id, status, amount, .* FROM payments WHERE order_id = \$1`).
		WithArgs("ord-123").
		WillReturnRows(rows)

	p, err := repo.GetPaymentByOrder(context.Background(), "ord-123")
	require.NoError(t, err)
	assert.Equal(t, "pref-1", p.PreferenceID)

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, order_id, preference_id, status, amount, .* FROM payments WHERE order_id = \$1`).
			WithArgs("ord-missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "preference_id", "status", "amount", "created_at", "updated_at"}))

		_, err := repo.GetPaymentByOrder(context.Background(), "ord-missing")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestRepository_UpdatePaymentStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE payments SET status = \$1, updated_at = now\(\) WHERE order_id = \$2`).
		WithArgs("approved", "ord-123").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdatePaymentStatus(context.Background(), "ord-123", "approved")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_WebhookAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	payload := json.RawMessage(`{"type":"payment","data":{"id":"12345"}}`)

	t.Run("SaveWebhookEvent", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO payment_webhooks`).
			WithArgs("payment", "12345", []byte(payload)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		id, err := repo.SaveWebhookEvent(ctx, "payment", "12345", payload)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("MarkProcessed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks\s+SET processed_at = now\(\)`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookProcessed(ctx, 7))
	})

	t.Run("MarkFailed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE payment_webhooks\s+SET process_error = \$2`).
			WithArgs(int64(7), "missing external reference").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookFailed(ctx, 7, "missing external reference"))
	})
}
