package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestAppend(t *testing.T) {
	var (
		gotPath   string
		gotOption string
		gotValues [][]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotOption = r.URL.Query().Get("valueInputOption")

		var body struct {
			Values [][]any `json:"values"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotValues = body.Values

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRows":1}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheets.NewService(ctx,
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	appender := NewAppenderWithService(svc, "sheet-1")
	require.NoError(t, appender.Append(ctx, "visa!A:O", []any{"2026-01-01T00:00:00.000Z", "tourist", "N/A"}))

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-1/values/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ":append"), gotPath)
	assert.Equal(t, "USER_ENTERED", gotOption)
	assert.Equal(t, [][]any{{"2026-01-01T00:00:00.000Z", "tourist", "N/A"}}, gotValues)
}

func TestAppendSurfacesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	err = NewAppenderWithService(svc, "sheet-1").Append(ctx, "FlightSearches!A:L", []any{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FlightSearches!A:L")
}
