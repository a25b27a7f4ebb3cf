package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dejobratic/skygate/internal/catalog"
)

func (h *Handler) listHotels(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := catalog.HotelFilter{}

	if raw := query.Get("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			writeError(w, http.StatusBadRequest, "maxPrice must be a positive number")
			return
		}
		filter.MaxPrice = price
	}
	if raw := query.Get("maxDistance"); raw != "" {
		distance, err := strconv.ParseFloat(raw, 64)
		if err != nil || distance <= 0 {
			writeError(w, http.StatusBadRequest, "maxDistance must be a positive number")
			return
		}
		filter.MaxDistanceKm = distance
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"hotels": catalog.Hotels(filter)})
}

func (h *Handler) listPackages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"packages": catalog.Packages()})
}

func (h *Handler) addHotelToCart(w http.ResponseWriter, r *http.Request) {
	hotel, err := catalog.HotelByID(chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	var stay struct {
		CheckIn  string `json:"checkIn"`
		CheckOut string `json:"checkOut"`
		Guests   int    `json:"guests"`
	}
	if err := decodeJSON(w, r, &stay); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if stay.Guests < 1 {
		stay.Guests = 1
	}

	h.addToCart(w, r, hotel.CartItem(stay.CheckIn, stay.CheckOut, stay.Guests))
}

func (h *Handler) addPackageToCart(w http.ResponseWriter, r *http.Request) {
	pkg, err := catalog.PackageByID(chi.URLParam(r, "id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	h.addToCart(w, r, pkg.CartItem())
}

func writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
