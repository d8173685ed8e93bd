package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tienda-be/internal/article"
	"tienda-be/internal/auth"
	"tienda-be/internal/cart"
	"tienda-be/internal/logger"
	"tienda-be/internal/order"
	"tienda-be/internal/payment"
	"tienda-be/internal/payment/webhook"
)

type Handler struct {
	Orders   order.Service
	Prefs    payment.PreferenceService
	Payments payment.Repository
	Carts    cart.Store
	Articles article.Repository
	Webhook  *webhook.Handler
}

func (h *Handler) Register(r *chi.Mux) {
	r.Get("/articles", h.listArticles)
	r.Get("/cart", h.getCart)
	r.Put("/cart", h.putCart)
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/cancel", h.cancelOrder)
	r.Get("/orders/{id}/payment", h.getOrderPayment)
	r.Post("/payment-preferences", h.createPreference)
	r.Post("/webhooks/payment", h.Webhook.PaymentWebhookHandler)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *order.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "insufficient stock",
			"articles": insufficient.Articles,
		})
	case errors.Is(err, order.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order can no longer be cancelled"})
	case errors.Is(err, order.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
	case errors.Is(err, payment.ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no payment recorded for order"})
	case errors.Is(err, cart.ErrCartNotFound), errors.Is(err, order.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, payment.ErrInvalidLineItem),
		errors.Is(err, payment.ErrMissingOrderID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, order.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	case errors.Is(err, payment.ErrGatewayUnavailable):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway unavailable"})
	default:
		logger.FromCtx(r.Context()).Error("unhandled request error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// ownedOrder loads the order and hides it from anyone but its creator. The
// mismatch case reads as not-found so order ids cannot be probed.
func (h *Handler) ownedOrder(r *http.Request, id uuid.UUID) (*order.Order, error) {
	o, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if uid := auth.UserFromContext(r.Context()); uid == "" || uid != o.UserID {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

// sessionID resolves the cart session from the X-Session-ID header first,
// then the cart_session cookie set by the storefront.
func sessionID(r *http.Request) string {
	if sid := r.Header.Get("X-Session-ID"); sid != "" {
		return sid
	}
	if c, err := r.Cookie("cart_session"); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.Articles.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return
	}
	c, err := h.Carts.Get(r.Context(), sid)
	if errors.Is(err, cart.ErrCartNotFound) {
		writeJSON(w, http.StatusOK, &cart.Cart{SessionID: sid, Items: []cart.Item{}})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) putCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return
	}

	var body struct {
		Items []cart.Item `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	c := &cart.Cart{SessionID: sid, Items: body.Items}
	if err := h.Carts.Save(r.Context(), c); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return
	}

	o, err := h.Orders.CreateFromCart(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	o, err := h.ownedOrder(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	if _, err := h.ownedOrder(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Orders.Cancel(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(order.StatusCancelled)})
}

// getOrderPayment reports the last gateway status recorded for the order, so
// the checkout page can poll while the webhook is still in flight.
func (h *Handler) getOrderPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	if _, err := h.ownedOrder(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Payments.GetPaymentByOrder(r.Context(), id.String())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createPreference(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	id, err := uuid.Parse(body.OrderID)
	if err != nil {
		writeError(w, r, payment.ErrMissingOrderID)
		return
	}

	// Line items come from the stored order, never the request body, so the
	// buyer pays the prices snapshotted at order time.
	o, err := h.ownedOrder(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if o.Status != order.StatusPending {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is not pending"})
		return
	}

	items := make([]payment.PreferenceItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, payment.PreferenceItem{
			Title:     it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	pref, err := h.Prefs.CreateForOrder(r.Context(), o.ID.String(), items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pref)
}
