package httpapi

import (
	"errors"
	"net/http"

	formsapp "github.com/dejobratic/skygate/internal/forms/app"
	"github.com/dejobratic/skygate/internal/forms/domain"
)

type submissionView struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) submitFlightInquiry(w http.ResponseWriter, r *http.Request) {
	var inquiry domain.FlightInquiry
	if err := decodeJSON(w, r, &inquiry); err != nil {
		writeJSON(w, http.StatusBadRequest, submissionView{Error: err.Error()})
		return
	}
	writeSubmission(w, h.deps.Forms.SubmitFlightInquiry(r.Context(), inquiry))
}

func (h *Handler) submitVisaApplication(w http.ResponseWriter, r *http.Request) {
	var application domain.VisaApplication
	if err := decodeJSON(w, r, &application); err != nil {
		writeJSON(w, http.StatusBadRequest, submissionView{Error: err.Error()})
		return
	}
	writeSubmission(w, h.deps.Forms.SubmitVisaApplication(r.Context(), application))
}

func writeSubmission(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, submissionView{Success: true})
	case errors.Is(err, domain.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, submissionView{Error: err.Error()})
	case errors.Is(err, formsapp.ErrSubmissionFailed):
		writeJSON(w, http.StatusBadGateway, submissionView{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, submissionView{Error: formsapp.ErrSubmissionFailed.Error()})
	}
}
