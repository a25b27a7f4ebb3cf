package domain_test

import (
	"testing"

	"github.com/dejobratic/skygate/internal/cart/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(id string, price int64) domain.Item {
	return domain.Item{
		ID:       id,
		Name:     "item " + id,
		Price:    decimal.NewFromInt(price),
		Category: domain.CategoryPackage,
	}
}

func ids(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.ID)
	}
	return out
}

func TestCartAddReplacesInPlace(t *testing.T) {
	var cart domain.Cart
	assert.False(t, cart.Add(item("1", 10)))
	assert.False(t, cart.Add(item("2", 20)))

	replaced := cart.Add(item("1", 15))

	assert.True(t, replaced)
	assert.Equal(t, []string{"1", "2"}, ids(cart.Items()))
	assert.True(t, cart.Items()[0].Price.Equal(decimal.NewFromInt(15)))
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(35)))
}

func TestCartRemove(t *testing.T) {
	cart := domain.NewCart([]domain.Item{item("1", 10), item("2", 20), item("3", 30)})

	assert.True(t, cart.Remove("2"))
	assert.False(t, cart.Remove("missing"))
	assert.Equal(t, []string{"1", "3"}, ids(cart.Items()))
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(40)))
}

func TestCartItemsReturnsCopy(t *testing.T) {
	cart := domain.NewCart([]domain.Item{item("1", 10)})

	items := cart.Items()
	items[0].Name = "mutated"

	assert.Equal(t, "item 1", cart.Items()[0].Name)
}

func TestNewCartCollapsesDuplicates(t *testing.T) {
	cart := domain.NewCart([]domain.Item{item("1", 10), item("2", 20), item("1", 5)})

	assert.Equal(t, []string{"1", "2"}, ids(cart.Items()))
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(25)))
}

// Any sequence of operations keeps ids unique and the total equal to the sum
// of the current prices.
func TestCartInvariantsOverOperationSequence(t *testing.T) {
	var cart domain.Cart
	ops := []struct {
		add    bool
		id     string
		price  int64
		remove bool
		clear  bool
	}{
		{add: true, id: "a", price: 1},
		{add: true, id: "b", price: 2},
		{add: true, id: "a", price: 3},
		{remove: true, id: "b"},
		{add: true, id: "c", price: 4},
		{clear: true},
		{add: true, id: "c", price: 5},
		{add: true, id: "d", price: 6},
		{add: true, id: "c", price: 7},
		{remove: true, id: "zzz"},
	}

	for _, op := range ops {
		switch {
		case op.add:
			cart.Add(item(op.id, op.price))
		case op.remove:
			cart.Remove(op.id)
		case op.clear:
			cart.Clear()
		}

		seen := map[string]bool{}
		sum := decimal.Zero
		for _, it := range cart.Items() {
			assert.False(t, seen[it.ID], "duplicate id %s", it.ID)
			seen[it.ID] = true
			sum = sum.Add(it.Price)
		}
		assert.True(t, cart.Total().Equal(sum))
	}

	assert.Equal(t, []string{"c", "d"}, ids(cart.Items()))
	assert.True(t, cart.Total().Equal(decimal.NewFromInt(13)))
}

func TestCartClear(t *testing.T) {
	cart := domain.NewCart([]domain.Item{item("1", 10)})
	cart.Clear()
	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.True(t, cart.Total().IsZero())
}
