package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cargodomain "github.com/dejobratic/skygate/internal/cargo/domain"
	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
)

type quotePayload struct {
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	CargoType    string          `json:"cargoType"`
	Weight       decimal.Decimal `json:"weight"`
	Length       decimal.Decimal `json:"length"`
	Width        decimal.Decimal `json:"width"`
	Height       decimal.Decimal `json:"height"`
	Hazardous    bool            `json:"hazardous"`
	Fragile      bool            `json:"fragile"`
	Refrigerated bool            `json:"refrigerated"`
	AddToCart    bool            `json:"addToCart"`
}

func (p quotePayload) request() (cargodomain.QuoteRequest, error) {
	origin, err := cargodomain.ParseAirport(p.Origin)
	if err != nil {
		return cargodomain.QuoteRequest{}, err
	}
	destination, err := cargodomain.ParseAirport(p.Destination)
	if err != nil {
		return cargodomain.QuoteRequest{}, err
	}
	return cargodomain.QuoteRequest{
		Route:     cargodomain.Route{Origin: origin, Destination: destination},
		CargoType: cargodomain.CargoType(p.CargoType),
		WeightKg:  p.Weight,
		Dimensions: cargodomain.Dimensions{
			LengthCm: p.Length,
			WidthCm:  p.Width,
			HeightCm: p.Height,
		},
		Hazardous:    p.Hazardous,
		Fragile:      p.Fragile,
		Refrigerated: p.Refrigerated,
	}, nil
}

type feeView struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
}

type quoteView struct {
	Route            string      `json:"route"`
	Origin           string      `json:"origin"`
	Destination      string      `json:"destination"`
	CargoType        string      `json:"cargoType"`
	Volume           json.Number `json:"volume"`
	VolumetricWeight json.Number `json:"volumetricWeight"`
	ChargeableWeight json.Number `json:"chargeableWeight"`
	BaseRate         json.Number `json:"baseRate"`
	Fees             []feeView   `json:"fees"`
	Total            json.Number `json:"total"`
}

func newQuoteView(q cargodomain.Quote) quoteView {
	fees := make([]feeView, 0, len(q.Fees))
	for _, fee := range q.Fees {
		fees = append(fees, feeView{Name: fee.Name, Amount: number(fee.Amount)})
	}
	return quoteView{
		Route:            q.Route.String(),
		Origin:           string(q.Route.Origin),
		Destination:      string(q.Route.Destination),
		CargoType:        string(q.CargoType),
		Volume:           number(q.VolumeM3),
		VolumetricWeight: number(q.VolumetricWeight),
		ChargeableWeight: number(q.ChargeableWeight),
		BaseRate:         number(q.BaseRate),
		Fees:             fees,
		Total:            number(q.Total),
	}
}

func quoteCartItem(q cargodomain.Quote, weight decimal.Decimal) cartdomain.Item {
	return cartdomain.Item{
		ID:       "cargo-" + uuid.NewString(),
		Name:     fmt.Sprintf("Air cargo %s (%s)", q.Route, q.CargoType),
		Price:    q.Total,
		Category: cartdomain.CategoryCargo,
		Details: cartdomain.CargoDetails{
			Origin:             string(q.Route.Origin),
			Destination:        string(q.Route.Destination),
			WeightKg:           weight.InexactFloat64(),
			ChargeableWeightKg: q.ChargeableWeight.InexactFloat64(),
		},
	}
}

func (h *Handler) cargoRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := cargodomain.Routes()
	out := make([]map[string]any, 0, len(routes))
	for _, route := range routes {
		rate, _ := cargodomain.RouteRate(route)
		out = append(out, map[string]any{
			"origin":      route.Origin,
			"destination": route.Destination,
			"ratePerKg":   number(rate),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": out})
}

// quoteCargo prices a shipment and, when asked, books the quote into the
// visitor's cart at its rounded total.
func (h *Handler) quoteCargo(w http.ResponseWriter, r *http.Request) {
	var payload quotePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := payload.request()
	if err != nil {
		writeCargoError(w, err)
		return
	}

	quote, err := h.deps.Cargo.Quote(r.Context(), req)
	if err != nil {
		writeCargoError(w, err)
		return
	}

	if payload.AddToCart {
		sess, ok := h.currentSession(w, r)
		if !ok {
			return
		}
		if err := sess.Cart.AddItem(r.Context(), quoteCartItem(quote, req.WeightKg)); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"quote": newQuoteView(quote)})
}

func writeCargoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cargodomain.ErrRouteNotServiced):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cargodomain.ErrInvalidShipment):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
