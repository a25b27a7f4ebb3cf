package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category identifies the kind of offering a cart item represents.
type Category string

const (
	CategoryFlight  Category = "flight"
	CategoryHotel   Category = "hotel"
	CategoryPackage Category = "package"
	CategoryVisa    Category = "visa"
	CategoryCargo   Category = "cargo"
)

var (
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrUnknownCategory = errors.New("unknown category")
)

// Valid reports whether c is one of the closed set of categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFlight, CategoryHotel, CategoryPackage, CategoryVisa, CategoryCargo:
		return true
	default:
		return false
	}
}

// Item is a single line in the cart. Price is in the reference currency.
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Category Category
	Image    string
	Details  Details
}

// Validate ensures the item can be stored in a cart.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidItem)
	}
	if !i.Category.Valid() {
		return fmt.Errorf("%w: %w %q", ErrInvalidItem, ErrUnknownCategory, i.Category)
	}
	if i.Details != nil && i.Details.Category() != i.Category {
		return fmt.Errorf("%w: %s details on a %s item", ErrInvalidItem, i.Details.Category(), i.Category)
	}
	return nil
}

type itemJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    json.Number     `json:"price"`
	Category Category        `json:"category"`
	Image    string          `json:"image"`
	Details  json.RawMessage `json:"details,omitempty"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	out := itemJSON{
		ID:       i.ID,
		Name:     i.Name,
		Price:    json.Number(i.Price.String()),
		Category: i.Category,
		Image:    i.Image,
	}
	if i.Details != nil {
		raw, err := json.Marshal(i.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal %s details: %w", i.Category, err)
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes details into the variant selected by category.
func (i *Item) UnmarshalJSON(data []byte) error {
	var in itemJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	price := decimal.Zero
	if in.Price != "" {
		parsed, err := decimal.NewFromString(in.Price.String())
		if err != nil {
			return fmt.Errorf("parse price: %w", err)
		}
		price = parsed
	}

	details, err := decodeDetails(in.Category, in.Details)
	if err != nil {
		return err
	}

	*i = Item{
		ID:       in.ID,
		Name:     in.Name,
		Price:    price,
		Category: in.Category,
		Image:    in.Image,
		Details:  details,
	}
	return nil
}
