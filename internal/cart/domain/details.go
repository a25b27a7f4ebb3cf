package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Details carries the category-specific attributes of an item. Exactly one
// variant exists per category.
type Details interface {
	Category() Category
}

type FlightDetails struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Passengers    int    `json:"passengers"`
	FlightNumber  string `json:"flight_number"`
}

type HotelDetails struct {
	Location     string `json:"location"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Guests       int    `json:"guests"`
	Rating       int    `json:"rating,omitempty"`
}

type PackageDetails struct {
	Location   string `json:"location"`
	Duration   string `json:"duration"`
	Highlights string `json:"highlights,omitempty"`
}

type VisaDetails struct {
	VisaType       string `json:"visa_type"`
	Nationality    string `json:"nationality"`
	Destination    string `json:"destination"`
	ProcessingTime string `json:"processing_time,omitempty"`
}

type CargoDetails struct {
	Origin             string  `json:"origin"`
	Destination        string  `json:"destination"`
	WeightKg           float64 `json:"weight_kg"`
	ChargeableWeightKg float64 `json:"chargeable_weight_kg"`
}

func (FlightDetails) Category() Category  { return CategoryFlight }
func (HotelDetails) Category() Category   { return CategoryHotel }
func (PackageDetails) Category() Category { return CategoryPackage }
func (VisaDetails) Category() Category    { return CategoryVisa }
func (CargoDetails) Category() Category   { return CategoryCargo }

func decodeDetails(category Category, raw json.RawMessage) (Details, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var target Details
	switch category {
	case CategoryFlight:
		target = &FlightDetails{}
	case CategoryHotel:
		target = &HotelDetails{}
	case CategoryPackage:
		target = &PackageDetails{}
	case CategoryVisa:
		target = &VisaDetails{}
	case CategoryCargo:
		target = &CargoDetails{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", category, err)
	}

	return deref(target), nil
}

// deref stores variants by value so type switches on Details stay simple.
func deref(d Details) Details {
	switch v := d.(type) {
	case *FlightDetails:
		return *v
	case *HotelDetails:
		return *v
	case *PackageDetails:
		return *v
	case *VisaDetails:
		return *v
	case *CargoDetails:
		return *v
	}
	return d
}
