package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSubmission = errors.New("invalid submission")

// NotProvided fills optional spreadsheet cells.
const NotProvided = "N/A"

const (
	FlightInquiryRange   = "FlightSearches!A:L"
	VisaApplicationRange = "visa!A:O"
)

type Kind string

const (
	KindFlightInquiry   Kind = "flight_inquiry"
	KindVisaApplication Kind = "visa_application"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FlightInquiry is the flight-search contact form.
type FlightInquiry struct {
	Origin              string `json:"origin"`
	Destination         string `json:"destination"`
	DepartDate          string `json:"departDate"`
	ReturnDate          string `json:"returnDate,omitempty"`
	TripType            string `json:"tripType"`
	Passengers          int    `json:"passengers"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	SpecialRequirements string `json:"specialRequirements,omitempty"`
}

func (f FlightInquiry) Validate() error {
	if err := required(map[string]string{
		"origin":      f.Origin,
		"destination": f.Destination,
		"departDate":  f.DepartDate,
		"tripType":    f.TripType,
		"firstName":   f.FirstName,
		"lastName":    f.LastName,
		"phone":       f.Phone,
	}); err != nil {
		return err
	}
	if f.Passengers < 1 {
		return fmt.Errorf("%w: passengers must be at least 1", ErrInvalidSubmission)
	}
	return validEmail(f.Email)
}

// Row renders the inquiry as columns A..L.
func (f FlightInquiry) Row(now time.Time) []any {
	return []any{
		now.UTC().Format(timestampLayout),
		f.Origin,
		f.Destination,
		f.DepartDate,
		orNotProvided(f.ReturnDate),
		f.TripType,
		strconv.Itoa(f.Passengers),
		f.FirstName,
		f.LastName,
		f.Email,
		f.Phone,
		orNotProvided(f.SpecialRequirements),
	}
}

type UploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Type string `json:"type,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// VisaApplication is the visa application form.
type VisaApplication struct {
	VisaType        string         `json:"visaType"`
	Nationality     string         `json:"nationality"`
	Destination     string         `json:"destination"`
	ProcessingTime  string         `json:"processingTime"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	PassportNumber  string         `json:"passportNumber"`
	PassportExpiry  string         `json:"passportExpiry"`
	TravelDateFrom  string         `json:"travelDateFrom,omitempty"`
	TravelDateTo    string         `json:"travelDateTo,omitempty"`
	UploadedFiles   []UploadedFile `json:"uploadedFiles,omitempty"`
	AdditionalNotes string         `json:"additionalNotes,omitempty"`
}

func (v VisaApplication) Validate() error {
	if err := required(map[string]string{
		"visaType":       v.VisaType,
		"nationality":    v.Nationality,
		"destination":    v.Destination,
		"processingTime": v.ProcessingTime,
		"firstName":      v.FirstName,
		"lastName":       v.LastName,
		"phone":          v.Phone,
		"passportNumber": v.PassportNumber,
		"passportExpiry": v.PassportExpiry,
	}); err != nil {
		return err
	}
	return validEmail(v.Email)
}

// Row renders the application as columns A..O.
func (v VisaApplication) Row(now time.Time) ([]any, error) {
	files := NotProvided
	if len(v.UploadedFiles) > 0 {
		raw, err := json.Marshal(v.UploadedFiles)
		if err != nil {
			return nil, fmt.Errorf("encode uploaded files: %w", err)
		}
		files = string(raw)
	}

	return []any{
		now.UTC().Format(timestampLayout),
		v.VisaType,
		v.Nationality,
		v.Destination,
		v.ProcessingTime,
		v.FirstName,
		v.LastName,
		v.Email,
		v.Phone,
		v.PassportNumber,
		v.PassportExpiry,
		orNotProvided(v.TravelDateFrom),
		orNotProvided(v.TravelDateTo),
		files,
		orNotProvided(v.AdditionalNotes),
	}, nil
}

func required(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("%w: missing %s", ErrInvalidSubmission, strings.Join(missing, ", "))
}

func validEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return fmt.Errorf("%w: email must be valid", ErrInvalidSubmission)
	}
	return nil
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotProvided
	}
	return value
}
