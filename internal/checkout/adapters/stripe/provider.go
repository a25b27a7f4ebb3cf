// Package stripe opens hosted checkout sessions with Stripe and verifies its
// webhook signatures.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dejobratic/skygate/internal/checkout/domain"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type Config struct {
	SecretKey     string
	WebhookSecret string
	HTTPClient    *http.Client
	// BaseURL overrides the API endpoint; empty uses Stripe's.
	BaseURL string
}

type Provider struct {
	api           *client.API
	webhookSecret string
}

func NewProvider(cfg Config) *Provider {
	backendConfig := &stripego.BackendConfig{
		HTTPClient:        cfg.HTTPClient,
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelNull},
		MaxNetworkRetries: stripego.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendConfig.URL = stripego.String(cfg.BaseURL)
	}

	api := client.New(cfg.SecretKey, &stripego.Backends{
		API:     stripego.GetBackendWithConfig(stripego.APIBackend, backendConfig),
		Connect: stripego.GetBackendWithConfig(stripego.ConnectBackend, backendConfig),
		Uploads: stripego.GetBackendWithConfig(stripego.UploadsBackend, backendConfig),
	})

	return &Provider{api: api, webhookSecret: cfg.WebhookSecret}
}

func (p *Provider) CreateSession(ctx context.Context, req domain.SessionRequest) (domain.SessionHandle, error) {
	params := &stripego.CheckoutSessionParams{
		Mode:              stripego.String(string(stripego.CheckoutSessionModePayment)),
		SuccessURL:        stripego.String(req.SuccessURL),
		CancelURL:         stripego.String(req.CancelURL),
		ClientReferenceID: stripego.String(req.OrderID),
		PaymentMethodTypes: stripego.StringSlice([]string{
			"card",
		}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	for _, item := range req.LineItems {
		product := &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:     stripego.String(item.Name),
			Metadata: map[string]string{"item_id": item.ID, domain.MetadataCategory: item.Category},
		}
		if item.Image != "" {
			product.Images = stripego.StringSlice([]string{item.Image})
		}
		params.LineItems = append(params.LineItems, &stripego.CheckoutSessionLineItemParams{
			PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripego.String(domain.Currency),
				ProductData: product,
				UnitAmount:  stripego.Int64(item.UnitAmountCents),
			},
			Quantity: stripego.Int64(1),
		})
	}
	for k, v := range req.Metadata() {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return domain.SessionHandle{}, fmt.Errorf("%w: %w", domain.ErrProviderFailure, describe(err))
	}

	return domain.SessionHandle{ID: session.ID, URL: session.URL}, nil
}

// ParseEvent verifies signature against the webhook secret. Events from
// other API versions are accepted; only the session object is read.
func (p *Provider) ParseEvent(payload []byte, signature string) (domain.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	out := domain.Event{ID: event.ID, Type: string(event.Type)}
	if out.Type != domain.EventCheckoutCompleted || event.Data == nil {
		return out, nil
	}

	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.Event{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.PaymentSessionID = session.ID
	out.Metadata = session.Metadata
	return out, nil
}

func describe(err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%s (status %d, code %s)", stripeErr.Msg, stripeErr.HTTPStatusCode, stripeErr.Code)
	}
	return err
}
