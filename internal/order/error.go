package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// InsufficientStockError names every cart line whose requested quantity
// exceeds the article's current stock. The whole creation is rejected.
type InsufficientStockError struct {
	Articles []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for: %s", strings.Join(e.Articles, ", "))
}
