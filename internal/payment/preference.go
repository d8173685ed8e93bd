package payment

import (
	"context"
	"fmt"

	"tienda-be/internal/config"
	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"

	"go.uber.org/zap"
)

// Redirect targets appended to the configured base URL. The notification URL
// is where the gateway delivers webhooks.
const (
	successPath      = "/checkout/success"
	failurePath      = "/checkout/failure"
	pendingPath      = "/checkout/pending"
	notificationPath = "/webhooks/payment"
)

// PreferenceService shapes and issues preference-creation requests. A failed
// creation leaves the order untouched; the same order id can be retried.
type PreferenceService interface {
	CreateForOrder(ctx context.Context, orderID string, items []PreferenceItem) (*Preference, error)
}

type preferenceService struct {
	gateway Gateway
	repo    Repository
	cfg     config.MercadoPago
}

func NewPreferenceService(gateway Gateway, repo Repository, cfg config.MercadoPago) PreferenceService {
	return &preferenceService{
		gateway: gateway,
		repo:    repo,
		cfg:     cfg,
	}
}

func (s *preferenceService) CreateForOrder(ctx context.Context, orderID string, items []PreferenceItem) (*Preference, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateForOrder"),
		zap.String("order_id", orderID),
	)

	if orderID == "" {
		return nil, ErrMissingOrderID
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidLineItem)
	}

	var total float64
	for i := range items {
		item := &items[i]
		if item.Title == "" {
			return nil, fmt.Errorf("%w: item %d has no title", ErrInvalidLineItem, i)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q has non-positive quantity", ErrInvalidLineItem, item.Title)
		}
		if item.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: item %q has no unit price", ErrInvalidLineItem, item.Title)
		}
		if item.CurrencyID == "" {
			item.CurrencyID = s.cfg.Currency
		}
		total += item.UnitPrice * float64(item.Quantity)
	}

	req := &PreferenceRequest{
		Items: items,
		BackURLs: BackURLs{
			Success: s.cfg.BaseURL + successPath,
			Failure: s.cfg.BaseURL + failurePath,
			Pending: s.cfg.BaseURL + pendingPath,
		},
		NotificationURL:   s.cfg.BaseURL + notificationPath,
		ExternalReference: orderID,
		AutoReturn:        "approved",
	}

	pref, err := s.gateway.CreatePreference(ctx, req)
	if err != nil {
		log.Error("preference creation failed", zap.Error(err))
		return nil, err
	}

	p := &Payment{
		OrderID:      orderID,
		PreferenceID: pref.ID,
		Status:       "created",
		Amount:       total,
	}
	if err := s.repo.SavePayment(ctx, p); err != nil {
		// The preference exists at the gateway; losing the local record is an
		// operator problem, not a buyer-facing failure.
		log.Error("failed to save payment record",
			zap.String("preference_id", pref.ID),
			zap.Error(err),
		)
	}

	metrics.PreferencesCreated.Inc()
	log.Info("preference created", zap.String("preference_id", pref.ID))

	return pref, nil
}
