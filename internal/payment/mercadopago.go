package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tienda-be/internal/config"
	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

type mercadoPagoGateway struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewMercadoPagoGateway builds the gateway client. Construction fails fast
// when credentials are absent so callers never reach the API with an empty
// token.
func NewMercadoPagoGateway(cfg config.MercadoPago) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("mercadopago configuration: %w", err)
	}

	return &mercadoPagoGateway{
		accessToken: cfg.AccessToken,
		baseURL:     mercadoPagoBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (g *mercadoPagoGateway) CreatePreference(ctx context.Context, prefReq *PreferenceRequest) (*Preference, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("external_reference", prefReq.ExternalReference),
		zap.Int("items", len(prefReq.Items)),
	)

	jsonBody, err := json.Marshal(prefReq)
	if err != nil {
		log.Error("Failed to marshal preference request", zap.Error(err))
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/checkout/preferences", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+g.accessToken)
	req.Header.Add("Content-Type", "application/json")

	log.Info("Creating Mercado Pago preference")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Mercado Pago request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read mercadopago response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Mercado Pago returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, string(bodyBytes))
	}

	var pref Preference
	if err := json.Unmarshal(bodyBytes, &pref); err != nil {
		log.Error("Failed decoding Mercado Pago response", zap.Error(err))
		return nil, err
	}

	log.Info("Mercado Pago preference created", zap.String("preference_id", pref.ID))

	return &pref, nil
}

func (g *mercadoPagoGateway) GetPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	log := logger.FromCtx(ctx).With(zap.String("payment_id", paymentID))

	url := fmt.Sprintf("%s/v1/payments/%s", g.baseURL, paymentID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		log.Error("Failed building request", zap.Error(err))
		return nil, err
	}

	req.Header.Add("Authorization", "Bearer "+g.accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Error("Request to Mercado Pago failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read mercadopago response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("Mercado Pago returned error",
			zap.Int("http_status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: %s", ErrGatewayUnavailable, string(bodyBytes))
	}

	var details PaymentDetails
	if err := json.Unmarshal(bodyBytes, &details); err != nil {
		log.Error("Failed decoding payment details", zap.Error(err))
		return nil, err
	}

	log.Info("Payment details fetched",
		zap.String("status", details.Status),
		zap.String("external_reference", details.ExternalReference),
		zap.Float64("transaction_amount", details.TransactionAmount),
	)

	return &details, nil
}
