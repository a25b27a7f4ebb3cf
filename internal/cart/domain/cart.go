package domain

import "github.com/shopspring/decimal"

// Cart is an ordered list of items holding at most one entry per id.
type Cart struct {
	items []Item
}

// NewCart rebuilds a cart from a stored list. Duplicate ids collapse onto the
// first position with the last value.
func NewCart(items []Item) Cart {
	var c Cart
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Add appends item, or replaces the entry with the same id in place.
// It reports whether an existing entry was replaced.
func (c *Cart) Add(item Item) bool {
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return true
		}
	}
	c.items = append(c.items, item)
	return false
}

// Remove deletes the entry with id and reports whether one existed.
func (c *Cart) Remove(id string) bool {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total sums item prices without conversion, taxes or fees.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price)
	}
	return total
}

// Items returns a copy of the entries in cart order.
func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c Cart) Len() int {
	return len(c.items)
}

func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}
