package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tienda-be/internal/payment"
	"tienda-be/internal/queue"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueReconcile(ctx context.Context, job queue.ReconcileJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentByOrder(ctx context.Context, orderID string) (*payment.Payment, error) {
	args := m.Called(ctx, orderID)
	if p, ok := args.Get(0).(*payment.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentRepository) SaveWebhookEvent(ctx context.Context, eventType, paymentID string, payload json.RawMessage) (int64, error) {
	args := m.Called(ctx, eventType, paymentID, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	args := m.Called(ctx, webhookID, reason)
	return args.Error(0)
}

func postNotification(t *testing.T, h *Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	h.PaymentWebhookHandler(w, req)
	return w
}

func TestHandler_PaymentWebhookHandler(t *testing.T) {
	t.Run("Success_Enqueues", func(t *testing.T) {
		mockJobs := new(MockEnqueuer)
		mockRepo := new(MockPaymentRepository)
		h := NewWebhookHandler(mockJobs, mockRepo)

		body, _ := json.Marshal(map[string]interface{}{
			"type":   "payment",
			"action": "payment.updated",
			"data":   map[string]string{"id": "12345"},
		})

		mockRepo.On("SaveWebhookEvent", mock.Anything, "payment", "12345", mock.Anything).
			Return(int64(9), nil)
		mockJobs.On("EnqueueReconcile", mock.Anything, mock.MatchedBy(func(j queue.ReconcileJob) bool {
			return j.PaymentID == "12345" && j.EventID == 9
		})).Return(nil)

		w := postNotification(t, h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		mockJobs.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("IgnoresMerchantOrderNotifications", func(t *testing.T) {
		mockJobs := new(MockEnqueuer)
		mockRepo := new(MockPaymentRepository)
		h := NewWebhookHandler(mockJobs, mockRepo)

		body, _ := json.Marshal(map[string]interface{}{
			"type": "merchant_order",
			"data": map[string]string{"id": "777"},
		})

		w := postNotification(t, h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		mockJobs.AssertNotCalled(t, "EnqueueReconcile")
		mockRepo.AssertNotCalled(t, "SaveWebhookEvent")
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		h := NewWebhookHandler(new(MockEnqueuer), new(MockPaymentRepository))

		w := postNotification(t, h, []byte("{not-json"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingPaymentID", func(t *testing.T) {
		mockJobs := new(MockEnqueuer)
		h := NewWebhookHandler(mockJobs, new(MockPaymentRepository))

		body, _ := json.Marshal(map[string]interface{}{
			"type": "payment",
			"data": map[string]string{"id": ""},
		})

		w := postNotification(t, h, body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockJobs.AssertNotCalled(t, "EnqueueReconcile")
	})

	t.Run("EnqueueFailureReturns500", func(t *testing.T) {
		mockJobs := new(MockEnqueuer)
		mockRepo := new(MockPaymentRepository)
		h := NewWebhookHandler(mockJobs, mockRepo)

		body, _ := json.Marshal(map[string]interface{}{
			"type": "payment",
			"data": map[string]string{"id": "12345"},
		})

		mockRepo.On("SaveWebhookEvent", mock.Anything, "payment", "12345", mock.Anything).
			Return(int64(9), nil)
		mockJobs.On("EnqueueReconcile", mock.Anything, mock.Anything).
			Return(errors.New("broker down"))

		w := postNotification(t, h, body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("AuditFailureStillEnqueues", func(t *testing.T) {
		mockJobs := new(MockEnqueuer)
		mockRepo := new(MockPaymentRepository)
		h := NewWebhookHandler(mockJobs, mockRepo)

		body, _ := json.Marshal(map[string]interface{}{
			"type": "payment",
			"data": map[string]string{"id": "12345"},
		})

		mockRepo.On("SaveWebhookEvent", mock.Anything, "payment", "12345", mock.Anything).
			Return(int64(0), errors.New("db down"))
		mockJobs.On("EnqueueReconcile", mock.Anything, mock.Anything).Return(nil)

		w := postNotification(t, h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		mockJobs.AssertExpectations(t)
	})
}
