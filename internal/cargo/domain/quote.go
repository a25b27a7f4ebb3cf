package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrRouteNotServiced = errors.New("route not serviced")
	ErrInvalidShipment  = errors.New("invalid shipment")
)

type Airport string

const (
	AddisAbaba Airport = "ADD"
	Dubai      Airport = "DXB"
	Sharjah    Airport = "SHJ"
)

// CargoType is informational only; it does not affect pricing.
type CargoType string

const (
	CargoGeneral    CargoType = "general"
	CargoPerishable CargoType = "perishable"
	CargoValuable   CargoType = "valuable"
	CargoDocuments  CargoType = "documents"
)

func (t CargoType) Valid() bool {
	switch t {
	case CargoGeneral, CargoPerishable, CargoValuable, CargoDocuments:
		return true
	default:
		return false
	}
}

type Route struct {
	Origin      Airport
	Destination Airport
}

func (r Route) String() string {
	return fmt.Sprintf("%s-%s", r.Origin, r.Destination)
}

// Per-kg rates in USD of chargeable weight.
var routeRates = map[Route]decimal.Decimal{
	{AddisAbaba, Dubai}:   decimal.RequireFromString("5.5"),
	{AddisAbaba, Sharjah}: decimal.RequireFromString("5.7"),
	{Dubai, AddisAbaba}:   decimal.RequireFromString("6.2"),
	{Sharjah, AddisAbaba}: decimal.RequireFromString("6.4"),
}

// RouteRate returns the per-kg rate for r.
func RouteRate(r Route) (decimal.Decimal, error) {
	rate, ok := routeRates[r]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrRouteNotServiced, r)
	}
	return rate, nil
}

// Routes lists the serviced routes in a stable order.
func Routes() []Route {
	return []Route{
		{AddisAbaba, Dubai},
		{AddisAbaba, Sharjah},
		{Dubai, AddisAbaba},
		{Sharjah, AddisAbaba},
	}
}

var (
	// kg per cubic metre
	volumetricFactor = decimal.NewFromInt(167)
	cm3PerM3         = decimal.NewFromInt(1_000_000)

	hazardousRate    = decimal.RequireFromString("0.30")
	fragileRate      = decimal.RequireFromString("0.15")
	refrigeratedRate = decimal.RequireFromString("0.25")
	fuelRate         = decimal.RequireFromString("0.10")
	documentationFee = decimal.NewFromInt(25)
	screeningFee     = decimal.NewFromInt(15)
)

const (
	FeeHazardous     = "Hazardous Material Handling"
	FeeFragile       = "Fragile Item Handling"
	FeeRefrigeration = "Temperature Control"
	FeeDocumentation = "Documentation"
	FeeFuel          = "Fuel Surcharge"
	FeeScreening     = "Security Screening"
)

type Dimensions struct {
	LengthCm decimal.Decimal
	WidthCm  decimal.Decimal
	HeightCm decimal.Decimal
}

// VolumeM3 converts the box dimensions to cubic metres.
func (d Dimensions) VolumeM3() decimal.Decimal {
	return d.LengthCm.Mul(d.WidthCm).Mul(d.HeightCm).Div(cm3PerM3)
}

type QuoteRequest struct {
	Route        Route
	CargoType    CargoType
	WeightKg     decimal.Decimal
	Dimensions   Dimensions
	Hazardous    bool
	Fragile      bool
	Refrigerated bool
}

func (r QuoteRequest) Validate() error {
	if !r.WeightKg.IsPositive() {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidShipment)
	}
	d := r.Dimensions
	if !d.LengthCm.IsPositive() || !d.WidthCm.IsPositive() || !d.HeightCm.IsPositive() {
		return fmt.Errorf("%w: dimensions must be positive", ErrInvalidShipment)
	}
	if r.CargoType != "" && !r.CargoType.Valid() {
		return fmt.Errorf("%w: unknown cargo type %q", ErrInvalidShipment, r.CargoType)
	}
	return nil
}

type Fee struct {
	Name   string
	Amount decimal.Decimal
}

// Quote is the priced shipment. BaseRate and Total are rounded to whole
// dollars; fee amounts are exact.
type Quote struct {
	Route            Route
	CargoType        CargoType
	VolumeM3         decimal.Decimal
	VolumetricWeight decimal.Decimal
	ChargeableWeight decimal.Decimal
	BaseRate         decimal.Decimal
	Fees             []Fee
	Total            decimal.Decimal
}

// CalculateQuote prices req. Fees are listed in a fixed order: conditional
// handling fees first, then documentation, fuel and screening.
func CalculateQuote(req QuoteRequest) (Quote, error) {
	if err := req.Validate(); err != nil {
		return Quote{}, err
	}

	rate, err := RouteRate(req.Route)
	if err != nil {
		return Quote{}, err
	}

	volume := req.Dimensions.VolumeM3()
	volumetric := volume.Mul(volumetricFactor)
	chargeable := decimal.Max(req.WeightKg, volumetric)
	base := chargeable.Mul(rate)

	fees := make([]Fee, 0, 6)
	if req.Hazardous {
		fees = append(fees, Fee{FeeHazardous, base.Mul(hazardousRate)})
	}
	if req.Fragile {
		fees = append(fees, Fee{FeeFragile, base.Mul(fragileRate)})
	}
	if req.Refrigerated {
		fees = append(fees, Fee{FeeRefrigeration, base.Mul(refrigeratedRate)})
	}
	fees = append(fees,
		Fee{FeeDocumentation, documentationFee},
		Fee{FeeFuel, base.Mul(fuelRate)},
		Fee{FeeScreening, screeningFee},
	)

	total := base
	for _, fee := range fees {
		total = total.Add(fee.Amount)
	}

	cargoType := req.CargoType
	if cargoType == "" {
		cargoType = CargoGeneral
	}

	return Quote{
		Route:            req.Route,
		CargoType:        cargoType,
		VolumeM3:         volume,
		VolumetricWeight: volumetric,
		ChargeableWeight: chargeable,
		BaseRate:         base.Round(0),
		Fees:             fees,
		Total:            total.Round(0),
	}, nil
}

// ParseAirport accepts IATA codes case-insensitively.
func ParseAirport(value string) (Airport, error) {
	a := Airport(strings.ToUpper(strings.TrimSpace(value)))
	switch a {
	case AddisAbaba, Dubai, Sharjah:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown airport %q", ErrRouteNotServiced, value)
	}
}
