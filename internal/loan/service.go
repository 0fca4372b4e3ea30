package loan

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the loan service spans.
const TracerName = "github.com/nerrad567/radioloan-core/internal/loan"

// Span names.
const (
	spanCreate     = "loan.create"
	spanReturn     = "loan.return"
	spanFindActive = "loan.find_active"
)

// OutcomeOK is the outcome tag of a successful operation. Failures use the
// Kind name.
const OutcomeOK = "ok"

// Engine is the transition engine the service orchestrates.
// It is satisfied by *Store.
type Engine interface {
	Create(ctx context.Context, deviceID, borrowerName string) (*Loan, error)
	ReturnLoan(ctx context.Context, loanID string, note *string) (*Loan, error)
	FindActive(ctx context.Context, take, skip *int) ([]Loan, error)
}

// EventPublisher announces committed transitions.
type EventPublisher interface {
	PublishLoanEvent(ctx context.Context, event Event) error
}

// MetricsRecorder records one data point per transition attempt.
type MetricsRecorder interface {
	RecordTransition(t Transition)
}

// Transition describes a finished Create or ReturnLoan call for metrics.
type Transition struct {
	Op       string
	Outcome  string
	Cause    string
	DeviceID string
	Duration time.Duration
}

type noopPublisher struct{}

func (noopPublisher) PublishLoanEvent(context.Context, Event) error { return nil }

type noopRecorder struct{}

func (noopRecorder) RecordTransition(Transition) {}

// Service is the entry point for callers outside the package, such as the
// HTTP API. It adds tracing, events and metrics around the engine and holds
// no business rules of its own.
//
// Thread Safety: all methods are safe for concurrent use.
type Service struct {
	engine  Engine
	events  EventPublisher
	metrics MetricsRecorder
	tracer  trace.Tracer
	logger  Logger
}

// NewService creates a loan service.
//
// Parameters:
//   - engine: the transition engine, normally a *Store
//   - events: publisher for committed transitions (may be nil)
//   - metrics: recorder for transition metrics (may be nil)
//   - tracer: tracer for operation spans (nil uses the global provider)
//   - logger: logger instance (may be nil)
func NewService(engine Engine, events EventPublisher, metrics MetricsRecorder, tracer trace.Tracer, logger Logger) *Service {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Service{
		engine:  engine,
		events:  events,
		metrics: metrics,
		tracer:  tracer,
		logger:  logger,
	}
}

// Create borrows a device. See Store.Create.
func (s *Service) Create(ctx context.Context, deviceID, borrowerName string) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, spanCreate, trace.WithAttributes(
		attribute.String("loan.device_id", deviceID),
	))
	defer span.End()

	start := time.Now()
	l, err := s.engine.Create(ctx, deviceID, borrowerName)
	s.finish(span, OpCreate, deviceID, start, err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("loan.id", l.ID))
	s.publish(ctx, EventBorrowed, l)
	return l, nil
}

// ReturnLoan closes a loan. A nil note is stored as NULL. See Store.ReturnLoan.
func (s *Service) ReturnLoan(ctx context.Context, loanID string, note *string) (*Loan, error) {
	ctx, span := s.tracer.Start(ctx, spanReturn, trace.WithAttributes(
		attribute.String("loan.id", loanID),
	))
	defer span.End()

	start := time.Now()
	l, err := s.engine.ReturnLoan(ctx, loanID, note)
	deviceID := ""
	if l != nil {
		deviceID = l.DeviceID
		span.SetAttributes(attribute.String("loan.device_id", deviceID))
	}
	s.finish(span, OpReturn, deviceID, start, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventReturned, l)
	return l, nil
}

// FindActive lists open loans. Omitted paging arguments stay nil so the
// engine applies its own defaults.
func (s *Service) FindActive(ctx context.Context, take, skip *int) ([]Loan, error) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if take != nil {
		attrs = append(attrs, attribute.Int("loan.take", *take))
	}
	if skip != nil {
		attrs = append(attrs, attribute.Int("loan.skip", *skip))
	}
	ctx, span := s.tracer.Start(ctx, spanFindActive, trace.WithAttributes(attrs...))
	defer span.End()

	loans, err := s.engine.FindActive(ctx, take, skip)
	if err != nil {
		setSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("loan.count", len(loans)))
	span.SetStatus(codes.Ok, "")
	return loans, nil
}

// finish records the outcome of a transition on the span and in metrics.
func (s *Service) finish(span trace.Span, op, deviceID string, start time.Time, err error) {
	t := Transition{
		Op:       op,
		Outcome:  OutcomeOK,
		DeviceID: deviceID,
		Duration: time.Since(start),
	}

	if err != nil {
		t.Outcome = KindOf(err).String()
		var le *Error
		if errors.As(err, &le) {
			t.Cause = le.Cause
		}
		setSpanError(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.SetAttributes(attribute.String("loan.outcome", t.Outcome))
	s.metrics.RecordTransition(t)
}

// publish announces a committed transition. The transition already
// happened, so a failed publish is only logged.
func (s *Service) publish(ctx context.Context, eventType string, l *Loan) {
	event := NewEvent(eventType, l, time.Now())
	if err := s.events.PublishLoanEvent(ctx, event); err != nil {
		s.logger.Warn("publishing loan event failed",
			"event", eventType,
			"loan_id", l.ID,
			"error", err,
		)
	}
}

func setSpanError(span trace.Span, err error) {
	var le *Error
	if errors.As(err, &le) {
		span.SetAttributes(attribute.String("loan.error_kind", le.Kind.String()))
		if le.Cause != "" {
			span.SetAttributes(attribute.String("loan.race_cause", le.Cause))
		}
		if le.Kind == KindInternal || le.Kind == KindTimeout {
			span.RecordError(err)
		}
	}
	span.SetStatus(codes.Error, err.Error())
}
