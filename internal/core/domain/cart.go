package domain

import "github.com/shopspring/decimal"

// CartLine is one product's snapshot inside a cart or an order.
type CartLine struct {
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Items map[string]CartLine `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

func NewCart() Cart {
	return Cart{Items: map[string]CartLine{}, Total: decimal.Zero}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the sum of quantities over all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// Add accumulates quantity onto the product's line. Name and price are
// snapshotted only when the line is new; an existing line keeps its
// original snapshot.
func (c *Cart) Add(p Product, quantity int) {
	if c.Items == nil {
		c.Items = map[string]CartLine{}
	}
	line, ok := c.Items[p.ID]
	if !ok {
		line = CartLine{ProductName: p.Name, UnitPrice: p.Price}
	}
	line.Quantity += quantity
	c.Items[p.ID] = line
	c.Recalculate()
}

// SetQuantity replaces a line's quantity, removing the line when
// quantity <= 0. It reports false when the line does not exist.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	line, ok := c.Items[productID]
	if !ok {
		return false
	}
	if quantity <= 0 {
		delete(c.Items, productID)
	} else {
		line.Quantity = quantity
		c.Items[productID] = line
	}
	c.Recalculate()
	return true
}

// Recalculate recomputes Total from scratch over the current lines and
// drops any line whose quantity is not positive.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for id, l := range c.Items {
		if l.Quantity <= 0 {
			delete(c.Items, id)
			continue
		}
		total = total.Add(l.Subtotal())
	}
	c.Total = total
}

// Clone returns a deep copy, independent of later mutation of c.
func (c Cart) Clone() Cart {
	out := Cart{Items: make(map[string]CartLine, len(c.Items)), Total: c.Total}
	for id, l := range c.Items {
		out.Items[id] = l
	}
	return out
}
