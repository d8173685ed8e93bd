package order

import (
	"context"
	"time"

	"tienda-be/internal/article"
	"tienda-be/internal/auth"
	"tienda-be/internal/cart"
	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// CreateFromCart materializes the session's cart into a pending order with
	// its items, then clears the cart.
	CreateFromCart(ctx context.Context, sessionID string) (*Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)

	// ApplyPaymentStatus runs the payment state machine for an order given the
	// authoritative gateway status. Safe to call any number of times with the
	// same inputs: stock is decremented only on the first transition into paid.
	ApplyPaymentStatus(ctx context.Context, orderID uuid.UUID, gatewayStatus string) error

	// Cancel is the buyer-initiated cancellation, permitted only while pending.
	Cancel(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo     Repository
	articles article.Repository
	carts    cart.Store
}

func NewService(repo Repository, articles article.Repository, carts cart.Store) Service {
	return &service{
		repo:     repo,
		articles: articles,
		carts:    carts,
	}
}

func (s *service) CreateFromCart(ctx context.Context, sessionID string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateFromCart"),
		zap.String("session_id", sessionID),
	)

	userID := auth.UserFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	// Best-effort stock pre-check. Stock can still change between this check
	// and the payment, so the decrement on approval is clamped regardless.
	var short []string
	for _, item := range c.Items {
		a, err := s.articles.GetByID(ctx, item.ArticleID)
		if err != nil {
			log.Error("failed to check article stock",
				zap.Int64("article_id", item.ArticleID),
				zap.Error(err),
			)
			return nil, err
		}
		if item.Quantity > a.Stock {
			short = append(short, a.Name)
		}
	}
	if len(short) > 0 {
		log.Warn("insufficient stock", zap.Strings("articles", short))
		return nil, &InsufficientStockError{Articles: short}
	}

	o := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    StatusPending,
		Total:     c.Total(),
		CreatedAt: time.Now(),
	}
	for _, item := range c.Items {
		o.Items = append(o.Items, Item{
			OrderID:   o.ID,
			ArticleID: item.ArticleID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}

	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	// The order exists; a stale cart is only a nuisance, not a correctness
	// problem, so a failed clear is logged and swallowed.
	if err := s.carts.Clear(ctx, sessionID); err != nil {
		log.Warn("failed to clear cart after order creation",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Float64("total", o.Total),
		zap.Int("items", len(o.Items)),
	)

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrderWithItems(ctx, id)
}

func (s *service) ApplyPaymentStatus(ctx context.Context, orderID uuid.UUID, gatewayStatus string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ApplyPaymentStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("gateway_status", gatewayStatus),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	target := TargetStatus(gatewayStatus)

	// Self-loop: nothing to write, no side effects. This is also what makes
	// redelivered notifications for an already-paid order harmless.
	if target == o.Status {
		log.Info("order already in target status, no-op")
		return nil
	}

	// A terminal order is never re-transitioned; a conflicting late
	// notification is acknowledged and dropped.
	if o.Status.Terminal() {
		log.Warn("ignoring notification for terminal order",
			zap.String("current_status", string(o.Status)),
			zap.String("target_status", string(target)),
		)
		return nil
	}

	// Compare-and-set against the status we read: if a concurrent delivery
	// transitioned the order in the meantime, we lose the race and do
	// nothing. The winner owns the side effects.
	ok, err := s.repo.TransitionStatus(ctx, orderID, o.Status, target)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return err
	}
	if !ok {
		log.Info("order status changed concurrently, no-op",
			zap.String("read_status", string(o.Status)),
			zap.String("target_status", string(target)),
		)
		return nil
	}

	log.Info("order status updated",
		zap.String("previous_status", string(o.Status)),
		zap.String("new_status", string(target)),
	)

	// Reached only on the first transition into paid: the row moved off the
	// non-paid status we read, and only one writer can win that move.
	if target == StatusPaid {
		s.decrementStock(ctx, orderID)
	}

	return nil
}

// decrementStock reduces inventory for every item of a newly paid order. A
// failure on one article must not abort the remaining lines; the paid status
// has already committed independently of this bookkeeping.
func (s *service) decrementStock(ctx context.Context, orderID uuid.UUID) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "decrementStock"),
		zap.String("order_id", orderID.String()),
	)

	items, err := s.repo.GetItems(ctx, orderID)
	if err != nil {
		metrics.StockDecrementErrors.Inc()
		log.Error("failed to load order items for stock decrement", zap.Error(err))
		return
	}

	for _, item := range items {
		newStock, err := s.articles.DecrementStock(ctx, item.ArticleID, item.Quantity)
		if err != nil {
			metrics.StockDecrementErrors.Inc()
			log.Error("failed to decrement stock",
				zap.Int64("article_id", item.ArticleID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}

		log.Info("stock decremented",
			zap.Int64("article_id", item.ArticleID),
			zap.Int("quantity", item.Quantity),
			zap.Int("new_stock", newStock),
		)
	}
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Cancel"),
		zap.String("order_id", orderID.String()),
	)

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status != StatusPending {
		log.Warn("cancellation rejected", zap.String("status", string(o.Status)))
		return ErrInvalidTransition
	}

	ok, err := s.repo.TransitionStatus(ctx, orderID, StatusPending, StatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		// A payment landed between the read and the write.
		log.Warn("cancellation lost to a concurrent transition")
		return ErrInvalidTransition
	}

	log.Info("order cancelled by buyer")
	return nil
}
