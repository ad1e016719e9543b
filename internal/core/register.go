package core

import (
	"github.com/shopspring/decimal"
)

// CartLine is one product in an in-progress sale. Price is captured when the
// line is first added, so later catalog price changes do not affect an open
// cart.
type CartLine struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart accumulates lines for a point-of-sale checkout. The zero value is an
// empty cart ready for use. Cart is not safe for concurrent use; each
// register session owns its own cart.
type Cart struct {
	Lines []CartLine
}

// Add puts one unit of the product into the cart. Adding a product already
// in the cart increments its line instead of appending a duplicate.
func (c *Cart) Add(p Product) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			c.Lines[i].Quantity++
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// SetQuantity adjusts a line's quantity. Zero or negative removes the line.
func (c *Cart) SetQuantity(productID, quantity int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return
	}
}

// Remove drops a product's line from the cart.
func (c *Cart) Remove(productID int) {
	c.SetQuantity(productID, 0)
}

// Total returns the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
