// Package httpapi exposes the booking services over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/singleflight"

	cargoapp "github.com/dejobratic/skygate/internal/cargo/app"
	checkoutapp "github.com/dejobratic/skygate/internal/checkout/app"
	flightsapp "github.com/dejobratic/skygate/internal/flights/app"
	formsapp "github.com/dejobratic/skygate/internal/forms/app"
	"github.com/dejobratic/skygate/internal/session"
	"github.com/dejobratic/skygate/internal/storage"
)

// Dependencies are the collaborators the handlers need. Readiness, Metrics
// and FormsLimiter are optional.
type Dependencies struct {
	Logger        *slog.Logger
	Metrics       *Metrics
	Sessions      *session.Registry
	Readiness     storage.Pinger
	Cargo         *cargoapp.Service
	Checkout      *checkoutapp.Service
	Forms         *formsapp.Service
	Flights       *flightsapp.Service
	FormsLimiter  *RateLimiter
	CookieName    string
	SecureCookies bool
}

// Handler exposes HTTP endpoints for the booking services.
type Handler struct {
	deps          Dependencies
	checkoutGroup singleflight.Group
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{deps: deps}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(withRecovery(h.deps.Logger), withLogging(h.deps.Logger))
	if h.deps.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler { return WithMetrics(next, h.deps.Metrics) })
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/webhooks/payments", h.paymentWebhook)
		r.Get("/cargo/routes", h.cargoRoutes)
		r.Post("/flights/search", h.searchFlights)
		r.Get("/catalog/hotels", h.listHotels)
		r.Get("/catalog/packages", h.listPackages)

		r.Group(func(r chi.Router) {
			if h.deps.FormsLimiter != nil {
				r.Use(h.deps.FormsLimiter.Handler)
			}
			r.Post("/forms/flight-inquiries", h.submitFlightInquiry)
			r.Post("/forms/visa-applications", h.submitVisaApplication)
		})

		r.Group(func(r chi.Router) {
			r.Use(withSession(h.deps.CookieName, h.deps.SecureCookies))

			r.Get("/cart", h.getCart)
			r.Delete("/cart", h.clearCart)
			r.Post("/cart/items", h.addCartItem)
			r.Delete("/cart/items/{id}", h.removeCartItem)

			r.Get("/currency", h.getCurrency)
			r.Put("/currency", h.setCurrency)
			r.Get("/currency/convert", h.convertCurrency)

			r.Post("/cargo/quotes", h.quoteCargo)

			r.Post("/checkout/sessions", h.createCheckoutSession)
			r.Post("/checkout/confirm", h.confirmCheckout)

			r.Post("/catalog/hotels/{id}/cart", h.addHotelToCart)
			r.Post("/catalog/packages/{id}/cart", h.addPackageToCart)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if h.deps.Readiness != nil {
		if err := h.deps.Readiness.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
