package domain

import (
	"errors"
	"fmt"
	"strings"

	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrPaymentUnavailable  = errors.New("payment provider not configured")
	ErrProviderFailure     = errors.New("payment provider request failed")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrMissingCartSession  = errors.New("payment event does not reference a cart session")
	ErrMissingPaymentToken = errors.New("payment session id is required")
)

// Currency is the ISO code line items are charged in.
const Currency = "usd"

const (
	MetadataOrderID     = "order_id"
	MetadataCartSession = "cart_session"
	MetadataCategory    = "category"
)

// EventCheckoutCompleted is the provider event that marks a paid session.
const EventCheckoutCompleted = "checkout.session.completed"

type LineItem struct {
	ID              string
	Name            string
	UnitAmountCents int64
	Image           string
	Category        string
}

// SessionRequest is what the payment provider needs to open a hosted
// checkout page.
type SessionRequest struct {
	OrderID       string
	CartSessionID string
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	// IdempotencyKey, when set, makes the provider return the first session
	// opened under the same key.
	IdempotencyKey string
}

func (r SessionRequest) Metadata() map[string]string {
	return map[string]string{
		MetadataOrderID:     r.OrderID,
		MetadataCartSession: r.CartSessionID,
	}
}

type SessionHandle struct {
	ID  string
	URL string
}

// Event is a verified provider notification.
type Event struct {
	ID               string
	Type             string
	PaymentSessionID string
	Metadata         map[string]string
}

func (e Event) CartSessionID() string {
	return e.Metadata[MetadataCartSession]
}

func (e Event) OrderID() string {
	return e.Metadata[MetadataOrderID]
}

// ToCents converts a USD amount to whole cents, rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// LineItemsFromCart maps cart items one to one onto payment line items.
func LineItemsFromCart(items []cartdomain.Item) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, LineItem{
			ID:              item.ID,
			Name:            item.Name,
			UnitAmountCents: ToCents(item.Price),
			Image:           item.Image,
			Category:        string(item.Category),
		})
	}
	return out, nil
}

// ReturnURLs builds the success and cancel redirects for siteURL. The
// provider substitutes {CHECKOUT_SESSION_ID} on success.
func ReturnURLs(siteURL string) (success, cancel string) {
	base := strings.TrimRight(siteURL, "/")
	return fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", base),
		fmt.Sprintf("%s/checkout/cancel", base)
}
