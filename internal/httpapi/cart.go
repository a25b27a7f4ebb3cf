package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
	"github.com/dejobratic/skygate/internal/currency"
	"github.com/dejobratic/skygate/internal/session"
)

type summaryView struct {
	Subtotal json.Number `json:"subtotal"`
	Fees     json.Number `json:"fees"`
	Total    json.Number `json:"total"`
}

type cartView struct {
	Items        []cartdomain.Item `json:"items"`
	Count        int               `json:"count"`
	Total        json.Number       `json:"total"`
	Currency     currency.Currency `json:"currency"`
	DisplayTotal string            `json:"displayTotal"`
	Summary      summaryView       `json:"summary"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newCartView(s *session.Session) cartView {
	items := s.Cart.Snapshot()
	total := s.Cart.GetTotal()
	summary := s.Cart.Summary()
	preferred := s.Currency.Get()
	return cartView{
		Items:        items,
		Count:        len(items),
		Total:        number(total),
		Currency:     preferred,
		DisplayTotal: currency.Format(total, preferred),
		Summary: summaryView{
			Subtotal: number(summary.Subtotal),
			Fees:     number(summary.Fees),
			Total:    number(summary.Total),
		},
	}
}

// currentSession resolves the visitor's session, writing the error response
// itself when that fails.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.deps.Sessions.Get(r.Context(), sessionIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, session.ErrInvalidSessionID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return sess, true
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": newCartView(sess)})
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var item cartdomain.Item
	if err := decodeJSON(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.addToCart(w, r, item)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request, item cartdomain.Item) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := sess.Cart.AddItem(r.Context(), item); err != nil {
		if errors.Is(err, cartdomain.ErrInvalidItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"cart": newCartView(sess)})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	sess.Cart.RemoveItem(r.Context(), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]any{"cart": newCartView(sess)})
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	sess.Cart.ClearCart(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"cart": newCartView(sess)})
}
