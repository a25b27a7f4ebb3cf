package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dejobratic/skygate/internal/events"
	"github.com/dejobratic/skygate/internal/forms/adapters/memory"
	"github.com/dejobratic/skygate/internal/forms/domain"
	"github.com/dejobratic/skygate/internal/forms/metrics"
	"github.com/dejobratic/skygate/internal/forms/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

type failingAppender struct{}

func (failingAppender) Append(context.Context, string, []any) error {
	return errors.New("quota exceeded")
}

func newService(t *testing.T, appender ports.RowAppender, recorder *events.Recorder) *Service {
	t.Helper()
	m, err := metrics.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	svc := NewService(appender, recorder, slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func inquiry() domain.FlightInquiry {
	return domain.FlightInquiry{
		Origin: "ADD", Destination: "DXB", DepartDate: "2026-02-01", TripType: "round-trip",
		ReturnDate: "2026-02-10", Passengers: 1, FirstName: "Liya", LastName: "Haile",
		Email: "liya@example.com", Phone: "+251900000000",
	}
}

func TestSubmitFlightInquiry(t *testing.T) {
	ctx := context.Background()

	t.Run("appends a row and publishes an event", func(t *testing.T) {
		appender := memory.NewAppender()
		recorder := events.NewRecorder()
		svc := newService(t, appender, recorder)

		require.NoError(t, svc.SubmitFlightInquiry(ctx, inquiry()))

		rows := appender.Rows(domain.FlightInquiryRange)
		require.Len(t, rows, 1)
		assert.Equal(t, "2026-01-02T03:04:05.000Z", rows[0][0])
		assert.Equal(t, "2026-02-10", rows[0][4])
		assert.Equal(t, []string{events.TopicFormSubmitted}, recorder.Topics())
	})

	t.Run("invalid submissions never reach the spreadsheet", func(t *testing.T) {
		appender := memory.NewAppender()
		svc := newService(t, appender, events.NewRecorder())

		bad := inquiry()
		bad.Email = ""
		assert.ErrorIs(t, svc.SubmitFlightInquiry(ctx, bad), domain.ErrInvalidSubmission)
		assert.Empty(t, appender.Rows(domain.FlightInquiryRange))
	})

	t.Run("append failures surface as a generic error", func(t *testing.T) {
		recorder := events.NewRecorder()
		svc := newService(t, failingAppender{}, recorder)

		err := svc.SubmitFlightInquiry(ctx, inquiry())
		assert.ErrorIs(t, err, ErrSubmissionFailed)
		assert.Empty(t, recorder.Events())
	})
}

func TestSubmitVisaApplication(t *testing.T) {
	appender := memory.NewAppender()
	svc := newService(t, appender, events.NewRecorder())

	err := svc.SubmitVisaApplication(context.Background(), domain.VisaApplication{
		VisaType: "business", Nationality: "Kenyan", Destination: "UAE", ProcessingTime: "express",
		FirstName: "Amina", LastName: "Otieno", Email: "amina@example.com", Phone: "+254700000000",
		PassportNumber: "AK000111", PassportExpiry: "2031-05-05",
	})
	require.NoError(t, err)

	rows := appender.Rows(domain.VisaApplicationRange)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 15)
	assert.Empty(t, appender.Rows(domain.FlightInquiryRange))
}
