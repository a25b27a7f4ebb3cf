package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dejobratic/skygate/internal/currency"
)

type currencyView struct {
	Currency  currency.Currency   `json:"currency"`
	Supported []currency.Currency `json:"supported"`
}

func (h *Handler) getCurrency(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, currencyView{Currency: sess.Currency.Get(), Supported: currency.Supported()})
}

func (h *Handler) setCurrency(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Currency string `json:"currency"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := currency.ParseCurrency(payload.Currency)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	sess.Currency.Set(r.Context(), c)
	writeJSON(w, http.StatusOK, currencyView{Currency: c, Supported: currency.Supported()})
}

// convertCurrency renders a USD-or-from amount in the requested currency,
// defaulting to the session preference.
func (h *Handler) convertCurrency(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	amount, err := decimal.NewFromString(strings.TrimSpace(query.Get("amount")))
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	from := currency.Reference
	if raw := query.Get("from"); raw != "" {
		if from, err = currency.ParseCurrency(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var to currency.Currency
	if raw := query.Get("to"); raw != "" {
		if to, err = currency.ParseCurrency(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		sess, ok := h.currentSession(w, r)
		if !ok {
			return
		}
		to = sess.Currency.Get()
	}

	converted := currency.Convert(amount, from, to)
	inReference := currency.Convert(amount, from, currency.Reference)
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":    json.Number(amount.String()),
		"from":      from,
		"to":        to,
		"converted": number(converted.Round(2)),
		"formatted": currency.Format(inReference, to),
	})
}
