package cart

import (
	"github.com/shopspring/decimal"
)

// Item is one cart line. The product id is unique within a cart.
type Item struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	PrimaryImageURL string          `json:"primaryImageUrl,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	Quantity        int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// State is what listeners and callers see: the items plus the values derived from them.
type State struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

func deriveState(items []Item) State {
	state := State{
		Items: make([]Item, len(items)),
		Total: decimal.Zero,
	}
	copy(state.Items, items)
	for _, item := range items {
		state.ItemCount += item.Quantity
		state.Total = state.Total.Add(item.Subtotal())
	}
	return state
}
