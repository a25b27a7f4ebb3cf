package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSearch = errors.New("invalid flight search")

const (
	DefaultCurrency = "USD"
	DefaultMax      = 20
	maxResults      = 250
	dateLayout      = "2006-01-02"
)

type TravelClass string

const (
	Economy        TravelClass = "ECONOMY"
	PremiumEconomy TravelClass = "PREMIUM_ECONOMY"
	Business       TravelClass = "BUSINESS"
	First          TravelClass = "FIRST"
)

func (c TravelClass) Valid() bool {
	switch c {
	case Economy, PremiumEconomy, Business, First:
		return true
	default:
		return false
	}
}

type SearchParams struct {
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	ReturnDate    string      `json:"returnDate,omitempty"`
	Adults        int         `json:"adults"`
	Children      int         `json:"children,omitempty"`
	Infants       int         `json:"infants,omitempty"`
	TravelClass   TravelClass `json:"travelClass,omitempty"`
	NonStop       bool        `json:"nonStop,omitempty"`
	Currency      string      `json:"currencyCode,omitempty"`
	MaxPrice      int         `json:"maxPrice,omitempty"`
	Max           int         `json:"max,omitempty"`
}

var iataCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Normalize resolves display names to airport codes and fills defaults.
func (p SearchParams) Normalize() SearchParams {
	p.Origin = strings.ToUpper(ExtractAirportCode(strings.TrimSpace(p.Origin)))
	p.Destination = strings.ToUpper(ExtractAirportCode(strings.TrimSpace(p.Destination)))
	p.TravelClass = TravelClass(strings.ToUpper(string(p.TravelClass)))
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	p.Currency = strings.ToUpper(p.Currency)
	if p.Max == 0 {
		p.Max = DefaultMax
	}
	if p.Adults == 0 {
		p.Adults = 1
	}
	return p
}

func (p SearchParams) Validate() error {
	if !iataCode.MatchString(p.Origin) || !iataCode.MatchString(p.Destination) {
		return fmt.Errorf("%w: origin and destination must be airport codes", ErrInvalidSearch)
	}
	departure, err := time.Parse(dateLayout, p.DepartureDate)
	if err != nil {
		return fmt.Errorf("%w: departureDate must be YYYY-MM-DD", ErrInvalidSearch)
	}
	if p.ReturnDate != "" {
		ret, err := time.Parse(dateLayout, p.ReturnDate)
		if err != nil {
			return fmt.Errorf("%w: returnDate must be YYYY-MM-DD", ErrInvalidSearch)
		}
		if ret.Before(departure) {
			return fmt.Errorf("%w: returnDate is before departureDate", ErrInvalidSearch)
		}
	}
	if p.Adults < 1 || p.Children < 0 || p.Infants < 0 || p.Infants > p.Adults {
		return fmt.Errorf("%w: invalid passenger counts", ErrInvalidSearch)
	}
	if p.TravelClass != "" && !p.TravelClass.Valid() {
		return fmt.Errorf("%w: unknown travel class %q", ErrInvalidSearch, p.TravelClass)
	}
	if p.Max < 1 || p.Max > maxResults {
		return fmt.Errorf("%w: max must be between 1 and %d", ErrInvalidSearch, maxResults)
	}
	if p.MaxPrice < 0 {
		return fmt.Errorf("%w: maxPrice must not be negative", ErrInvalidSearch)
	}
	return nil
}

// Offer is the projection of a provider flight offer shown in results.
type Offer struct {
	ID             string          `json:"id"`
	Airline        string          `json:"airline"`
	AirlineLogo    string          `json:"airlineLogo"`
	FlightNumber   string          `json:"flightNumber"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DepartureTime  string          `json:"departureTime"`
	ArrivalTime    string          `json:"arrivalTime"`
	Duration       string          `json:"duration"`
	Stops          int             `json:"stops"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	SeatsAvailable int             `json:"seatsAvailable"`
	Aircraft       string          `json:"aircraft"`
	DepartureDate  string          `json:"departureDate"`
	ReturnDate     string          `json:"returnDate"`
	CabinClass     string          `json:"cabinClass"`
}

var airportInParens = regexp.MustCompile(`\(([A-Z]{3})\)`)

// ExtractAirportCode returns "ADD" for "Addis Ababa (ADD)" and location
// unchanged when it carries no code.
func ExtractAirportCode(location string) string {
	if m := airportInParens.FindStringSubmatch(location); m != nil {
		return m[1]
	}
	return location
}

var isoDuration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// ParseDuration renders an ISO-8601 flight duration such as "PT5H30M" as
// "5h 30m". Whole hours render as "5h".
func ParseDuration(value string) string {
	m := isoDuration.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
