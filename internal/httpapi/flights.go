package httpapi

import (
	"errors"
	"net/http"

	flightsapp "github.com/dejobratic/skygate/internal/flights/app"
	"github.com/dejobratic/skygate/internal/flights/domain"
)

func (h *Handler) searchFlights(w http.ResponseWriter, r *http.Request) {
	var params domain.SearchParams
	if err := decodeJSON(w, r, &params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	offers, err := h.deps.Flights.Search(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSearch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, flightsapp.ErrSearchFailed):
			writeError(w, http.StatusBadGateway, flightsapp.ErrSearchFailed.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offers": offers, "count": len(offers)})
}
