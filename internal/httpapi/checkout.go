package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dejobratic/skygate/internal/checkout/domain"
	"github.com/dejobratic/skygate/internal/checkout/ports"
)

// Stripe caps webhook payloads well below this.
const maxWebhookBytes = 64 << 10

const signatureHeader = "Stripe-Signature"

// createCheckoutSession opens a payment session for the visitor's cart. When
// an Idempotency-Key is sent, the first successful response for that key is
// replayed to later requests from the same session, and concurrent requests
// with the key share one provider call.
func (h *Handler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := sessionIDFrom(ctx)

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		response, err := h.openCheckoutSession(ctx, sessionID, "")
		if err != nil {
			writeCheckoutError(w, err)
			return
		}
		writeStored(w, response, false)
		return
	}

	storeKey := sessionID + ":" + idemKey
	v, err, _ := h.checkoutGroup.Do(storeKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		stored, err := h.deps.Checkout.GetIdempotentResponse(ctx, storeKey)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			return idempotentOutcome{response: *stored, replayed: true}, nil
		}

		response, err := h.openCheckoutSession(ctx, sessionID, storeKey)
		if err != nil {
			return nil, err
		}
		if err := h.deps.Checkout.SaveIdempotentResponse(ctx, storeKey, response); err != nil {
			return nil, err
		}
		return idempotentOutcome{response: response}, nil
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	outcome := v.(idempotentOutcome)
	writeStored(w, outcome.response, outcome.replayed)
}

type idempotentOutcome struct {
	response ports.StoredResponse
	replayed bool
}

func (h *Handler) openCheckoutSession(ctx context.Context, sessionID, idempotencyKey string) (ports.StoredResponse, error) {
	result, err := h.deps.Checkout.CreateSession(ctx, sessionID, idempotencyKey)
	if err != nil {
		return ports.StoredResponse{}, err
	}

	body, err := json.Marshal(map[string]any{
		"orderId":   result.OrderID,
		"sessionId": result.Session.ID,
		"url":       result.Session.URL,
	})
	if err != nil {
		return ports.StoredResponse{}, err
	}

	return ports.StoredResponse{
		StatusCode:       http.StatusCreated,
		Body:             body,
		PaymentSessionID: result.Session.ID,
	}, nil
}

func writeStored(w http.ResponseWriter, response ports.StoredResponse, replayed bool) {
	if replayed {
		for key, values := range restoreHeaders() {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(response.StatusCode)
	_, _ = w.Write(response.Body)
}

func (h *Handler) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.deps.Checkout.ConfirmReturn(r.Context(), sessionIDFrom(r.Context()), payload.SessionID); err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "completed"})
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	if err := h.deps.Checkout.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		writeCheckoutError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingPaymentToken),
		errors.Is(err, domain.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPaymentUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrProviderFailure):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
