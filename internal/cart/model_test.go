package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotal(t *testing.T) {
	t.Run("Sums line subtotals", func(t *testing.T) {
		c := &Cart{
			SessionID: "sess-1",
			Items: []Item{
				{ArticleID: 1, Name: "Yerba Mate 1kg", UnitPrice: 10, Quantity: 3},
				{ArticleID: 2, Name: "Alfajor", UnitPrice: 25, Quantity: 1},
			},
		}

		assert.Equal(t, 55.0, c.Total())
		assert.Equal(t, 30.0, c.Items[0].Subtotal())
	})

	t.Run("Empty cart", func(t *testing.T) {
		c := &Cart{SessionID: "sess-2"}
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 0.0, c.Total())
	})
}
