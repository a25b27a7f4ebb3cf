// Package sheets appends form submissions to a Google spreadsheet using a
// service account.
package sheets

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputOption = "USER_ENTERED"

type Config struct {
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string
	// HTTPClient carries token and API requests; nil uses http.DefaultClient.
	HTTPClient *http.Client
}

type Appender struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewAppender authenticates as the service account in cfg.
func NewAppender(ctx context.Context, cfg Config) (*Appender, error) {
	conf := &jwt.Config{
		Email:      cfg.ClientEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	if cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewAppenderWithService(svc, cfg.SpreadsheetID), nil
}

func NewAppenderWithService(svc *sheets.Service, spreadsheetID string) *Appender {
	return &Appender{service: svc, spreadsheetID: spreadsheetID}
}

func (a *Appender) Append(ctx context.Context, rng string, row []any) error {
	body := &sheets.ValueRange{Values: [][]any{row}}

	_, err := a.service.Spreadsheets.Values.
		Append(a.spreadsheetID, rng, body).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", rng, err)
	}
	return nil
}
