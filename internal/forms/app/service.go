package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dejobratic/skygate/internal/events"
	"github.com/dejobratic/skygate/internal/forms/domain"
	"github.com/dejobratic/skygate/internal/forms/metrics"
	"github.com/dejobratic/skygate/internal/forms/ports"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ErrSubmissionFailed hides collaborator details from callers.
var ErrSubmissionFailed = errors.New("failed to save data")

// Service validates form submissions and appends them to the spreadsheet.
// Failed appends are not retried.
type Service struct {
	appender ports.RowAppender
	events   events.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(appender ports.RowAppender, publisher events.Publisher, logger *slog.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		appender: appender,
		events:   publisher,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *Service) SubmitFlightInquiry(ctx context.Context, inquiry domain.FlightInquiry) error {
	if err := inquiry.Validate(); err != nil {
		s.metrics.RecordSubmission(ctx, string(domain.KindFlightInquiry), "invalid")
		return err
	}
	return s.submit(ctx, domain.KindFlightInquiry, domain.FlightInquiryRange, inquiry.Row(s.now()))
}

func (s *Service) SubmitVisaApplication(ctx context.Context, application domain.VisaApplication) error {
	if err := application.Validate(); err != nil {
		s.metrics.RecordSubmission(ctx, string(domain.KindVisaApplication), "invalid")
		return err
	}
	row, err := application.Row(s.now())
	if err != nil {
		s.metrics.RecordSubmission(ctx, string(domain.KindVisaApplication), "error")
		return err
	}
	return s.submit(ctx, domain.KindVisaApplication, domain.VisaApplicationRange, row)
}

func (s *Service) submit(ctx context.Context, kind domain.Kind, rng string, row []any) error {
	ctx, span := telemetry.StartSpan(ctx, "FormService.Submit")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("form.kind", string(kind)),
		attribute.String("form.range", rng),
	)

	start := time.Now()
	err := s.appender.Append(ctx, rng, row)
	s.metrics.RecordAppendDuration(ctx, string(kind), time.Since(start).Seconds())

	if err != nil {
		telemetry.RecordSpanError(span, err)
		s.metrics.RecordSubmission(ctx, string(kind), "error")
		s.logger.ErrorContext(ctx, "failed to append form submission", "form", kind, "error", err)
		return ErrSubmissionFailed
	}

	s.metrics.RecordSubmission(ctx, string(kind), "success")
	s.logger.InfoContext(ctx, "form submission saved", "form", kind)
	telemetry.SetSpanSuccess(span)

	if err := s.events.Publish(ctx, events.Event{
		Topic:      events.TopicFormSubmitted,
		Key:        string(kind),
		Attributes: map[string]string{"range": rng},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish form submission", "form", kind, "error", err)
	}
	return nil
}
