package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status admits no further transitions. A
// rejected payment is deliberately not terminal: the order stays pending so
// the buyer may retry payment.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Gateway payment statuses as reported by Mercado Pago.
const (
	PaymentApproved  = "approved"
	PaymentRejected  = "rejected"
	PaymentPending   = "pending"
	PaymentCancelled = "cancelled"
)

// TargetStatus maps a gateway payment status onto the order status it should
// produce. Unrecognized statuses leave the order pending.
func TargetStatus(gatewayStatus string) Status {
	switch gatewayStatus {
	case PaymentApproved:
		return StatusPaid
	case PaymentCancelled:
		return StatusCancelled
	default:
		// rejected, pending, and anything unknown
		return StatusPending
	}
}

type Order struct {
	ID        uuid.UUID
	UserID    string
	Total     float64
	Status    Status
	CreatedAt time.Time
	Items     []Item
}

// Item snapshots the article's name and price at order time; article records
// mutate independently afterwards.
type Item struct {
	ID        int64
	OrderID   uuid.UUID
	ArticleID int64
	Name      string
	UnitPrice float64
	Quantity  int
	Subtotal  float64
}
