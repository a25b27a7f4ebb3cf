// Package catalog serves the static hotel suggestions and package deals shown
// next to flight results.
package catalog

import (
	"errors"
	"strings"

	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("catalog entry not found")

const placeholderImage = "/placeholder.svg?height=200&width=300"

type Hotel struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Image                 string          `json:"image"`
	Rating                int             `json:"rating"`
	Location              string          `json:"location"`
	DistanceFromAirportKm float64         `json:"distanceFromAirport"`
	Price                 decimal.Decimal `json:"price"`
	Amenities             []string        `json:"amenities"`
	Description           string          `json:"description"`
}

// CartItem books the hotel for one stay.
func (h Hotel) CartItem(checkIn, checkOut string, guests int) cartdomain.Item {
	return cartdomain.Item{
		ID:       h.ID,
		Name:     h.Name,
		Price:    h.Price,
		Category: cartdomain.CategoryHotel,
		Image:    h.Image,
		Details: cartdomain.HotelDetails{
			Location:     h.Location,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
			Guests:       guests,
			Rating:       h.Rating,
		},
	}
}

type Package struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Duration   string          `json:"duration"`
	Highlights []string        `json:"highlights"`
	Price      decimal.Decimal `json:"price"`
	Location   string          `json:"location"`
}

func (p Package) CartItem() cartdomain.Item {
	return cartdomain.Item{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: cartdomain.CategoryPackage,
		Image:    p.Image,
		Details: cartdomain.PackageDetails{
			Location:   p.Location,
			Duration:   p.Duration,
			Highlights: strings.Join(p.Highlights, ", "),
		},
	}
}

var hotels = []Hotel{
	{
		ID:                    "hotel1",
		Name:                  "Grand Hyatt Dubai",
		Image:                 placeholderImage,
		Rating:                5,
		Location:              "Dubai Creek",
		DistanceFromAirportKm: 2.5,
		Price:                 decimal.NewFromInt(120),
		Amenities:             []string{"Free WiFi", "Pool", "Spa", "Restaurant"},
		Description:           "Luxury hotel with stunning views of Dubai Creek.",
	},
	{
		ID:                    "hotel2",
		Name:                  "Rove Downtown Dubai",
		Image:                 placeholderImage,
		Rating:                4,
		Location:              "Downtown Dubai",
		DistanceFromAirportKm: 3.2,
		Price:                 decimal.NewFromInt(85),
		Amenities:             []string{"Free WiFi", "Pool", "Gym", "Restaurant"},
		Description:           "Modern hotel in the heart of Downtown Dubai.",
	},
	{
		ID:                    "hotel3",
		Name:                  "Premier Inn Dubai Airport",
		Image:                 placeholderImage,
		Rating:                3,
		Location:              "Dubai Airport",
		DistanceFromAirportKm: 0.8,
		Price:                 decimal.NewFromInt(65),
		Amenities:             []string{"Free WiFi", "Shuttle", "Restaurant"},
		Description:           "Convenient hotel near Dubai International Airport.",
	},
}

var packages = []Package{
	{
		ID:         "package1",
		Name:       "Dubai City Explorer",
		Image:      placeholderImage,
		Duration:   "3 days",
		Highlights: []string{"Burj Khalifa", "Dubai Mall", "Desert Safari"},
		Price:      decimal.NewFromInt(299),
		Location:   "Dubai, UAE",
	},
	{
		ID:         "package2",
		Name:       "Abu Dhabi Highlights",
		Image:      placeholderImage,
		Duration:   "2 days",
		Highlights: []string{"Sheikh Zayed Mosque", "Ferrari World", "Corniche"},
		Price:      decimal.NewFromInt(249),
		Location:   "Abu Dhabi, UAE",
	},
}

// HotelFilter bounds suggestions. Zero values take the defaults: under 150
// USD a night, within 3 km of the airport, at most 3 results.
type HotelFilter struct {
	MaxPrice      decimal.Decimal
	MaxDistanceKm float64
	Limit         int
}

func (f HotelFilter) withDefaults() HotelFilter {
	if f.MaxPrice.IsZero() {
		f.MaxPrice = decimal.NewFromInt(150)
	}
	if f.MaxDistanceKm == 0 {
		f.MaxDistanceKm = 3
	}
	if f.Limit <= 0 {
		f.Limit = 3
	}
	return f
}

// Hotels returns hotels priced strictly below MaxPrice and no further than
// MaxDistanceKm from the airport.
func Hotels(filter HotelFilter) []Hotel {
	filter = filter.withDefaults()
	out := make([]Hotel, 0, len(hotels))
	for _, h := range hotels {
		if h.Price.LessThan(filter.MaxPrice) && h.DistanceFromAirportKm <= filter.MaxDistanceKm {
			out = append(out, h)
		}
		if len(out) == filter.Limit {
			break
		}
	}
	return out
}

func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

func HotelByID(id string) (Hotel, error) {
	for _, h := range hotels {
		if h.ID == id {
			return h, nil
		}
	}
	return Hotel{}, ErrNotFound
}

func PackageByID(id string) (Package, error) {
	for _, p := range packages {
		if p.ID == id {
			return p, nil
		}
	}
	return Package{}, ErrNotFound
}
