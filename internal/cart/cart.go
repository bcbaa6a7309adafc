// internal/cart/cart.go

// Package cart holds the shopping cart aggregate. A cart contains at most one
// line per variant and is owned by the client between requests.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/kisanexport/storefront/internal/models"
)

type Cart struct {
	Items []models.CartItem `json:"items"`
}

// New returns a cart holding a copy of items, merging duplicate variants.
func New(items []models.CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i := c.indexOf(item.VariantID); i >= 0 {
			c.Items[i].Quantity += item.Quantity
			continue
		}
		c.Items = append(c.Items, item)
	}
	return c
}

func (c *Cart) indexOf(variantID string) int {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// Add puts one unit of item in the cart. An existing line for the same variant
// is incremented; otherwise a new line is appended with quantity 1. The
// quantity carried by item is ignored.
func (c *Cart) Add(item models.CartItem) {
	if i := c.indexOf(item.VariantID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	item.Quantity = 1
	c.Items = append(c.Items, item)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes it. Unknown variants are ignored. It reports whether the cart changed.
func (c *Cart) UpdateQuantity(variantID string, quantity int) bool {
	i := c.indexOf(variantID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		c.removeAt(i)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// Remove drops the line for variantID and reports whether it existed.
func (c *Cart) Remove(variantID string) bool {
	i := c.indexOf(variantID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = nil
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return models.ItemsTotal(c.Items)
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns an independent copy of the lines for embedding in an order.
func (c *Cart) Snapshot() []models.CartItem {
	out := make([]models.CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
