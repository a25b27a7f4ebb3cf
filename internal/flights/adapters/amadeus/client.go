// Package amadeus searches flight offers with the Amadeus self-service API.
package amadeus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dejobratic/skygate/internal/flights/domain"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultBaseURL = "https://test.api.amadeus.com"
	tokenPath      = "/v1/security/oauth2/token"
	offersPath     = "/v2/shopping/flight-offers"
	maxBody        = 8 << 20
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	// HTTPClient carries token and search requests; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client that fetches and refreshes access tokens with
// the client-credentials grant.
func NewClient(ctx context.Context, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	creds := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + tokenPath,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	return &Client{http: creds.Client(ctx), baseURL: baseURL}
}

func (c *Client) Search(ctx context.Context, params domain.SearchParams) ([]domain.Offer, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+offersPath+"?"+query(params).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build flight search request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.amadeus+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read flight search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(body, "errors.0.detail").String()
		if detail == "" {
			detail = gjson.GetBytes(body, "errors.0.title").String()
		}
		return nil, fmt.Errorf("flight search returned %d: %s", resp.StatusCode, detail)
	}

	return ParseOffers(body), nil
}

func query(p domain.SearchParams) url.Values {
	q := url.Values{}
	q.Set("originLocationCode", p.Origin)
	q.Set("destinationLocationCode", p.Destination)
	q.Set("departureDate", p.DepartureDate)
	q.Set("adults", strconv.Itoa(p.Adults))
	q.Set("currencyCode", p.Currency)
	q.Set("max", strconv.Itoa(p.Max))
	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}
	if p.Children > 0 {
		q.Set("children", strconv.Itoa(p.Children))
	}
	if p.Infants > 0 {
		q.Set("infants", strconv.Itoa(p.Infants))
	}
	if p.TravelClass != "" {
		q.Set("travelClass", string(p.TravelClass))
	}
	if p.NonStop {
		q.Set("nonStop", "true")
	}
	if p.MaxPrice > 0 {
		q.Set("maxPrice", strconv.Itoa(p.MaxPrice))
	}
	return q
}

// ParseOffers projects the data array of a flight-offers response. Offers
// without segments are skipped.
func ParseOffers(body []byte) []domain.Offer {
	offers := []domain.Offer{}

	gjson.GetBytes(body, "data").ForEach(func(_, offer gjson.Result) bool {
		segments := offer.Get("itineraries.0.segments").Array()
		if len(segments) == 0 {
			return true
		}
		first, last := segments[0], segments[len(segments)-1]

		carrier := first.Get("carrierCode").String()
		departureAt := first.Get("departure.at").String()
		arrivalAt := last.Get("arrival.at").String()

		price, err := decimal.NewFromString(offer.Get("price.total").String())
		if err != nil {
			price = decimal.Zero
		}

		aircraft := first.Get("aircraft.code").String()
		if aircraft == "" {
			aircraft = "Unknown"
		}

		offers = append(offers, domain.Offer{
			ID:             offer.Get("id").String(),
			Airline:        carrier,
			AirlineLogo:    "/airlines/" + strings.ToLower(carrier) + ".svg",
			FlightNumber:   carrier + first.Get("number").String(),
			Origin:         first.Get("departure.iataCode").String(),
			Destination:    last.Get("arrival.iataCode").String(),
			DepartureTime:  slice(departureAt, 11, 16),
			ArrivalTime:    slice(arrivalAt, 11, 16),
			Duration:       domain.ParseDuration(offer.Get("itineraries.0.duration").String()),
			Stops:          len(segments) - 1,
			Price:          price,
			Currency:       offer.Get("price.currency").String(),
			SeatsAvailable: int(offer.Get("numberOfBookableSeats").Int()),
			Aircraft:       aircraft,
			DepartureDate:  slice(departureAt, 0, 10),
			ReturnDate:     slice(offer.Get("itineraries.1.segments.0.departure.at").String(), 0, 10),
			CabinClass:     offer.Get("travelerPricings.0.fareDetailsBySegment.0.cabin").String(),
		})
		return true
	})

	return offers
}

func slice(s string, from, to int) string {
	if len(s) < to {
		return ""
	}
	return s[from:to]
}
