package article

import "time"

// Article is an inventory record. Stock never goes below zero; decrements are
// clamped at the store level.
type Article struct {
	ID        int64
	Name      string
	Price     float64
	Stock     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
