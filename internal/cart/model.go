package cart

// Item is a cart line. Name and UnitPrice are snapshots of the article at the
// time the line was added; the order keeps its own copy at creation.
type Item struct {
	ArticleID int64   `json:"article_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

func (i Item) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart is the session-scoped list of items a buyer intends to purchase. It is
// cleared only after an order has been durably created from it.
type Cart struct {
	SessionID string `json:"session_id"`
	Items     []Item `json:"items"`
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
