package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/nerrad567/radioloan-core/internal/infrastructure/config"
)

// ServiceName is the service.name resource attribute of every span.
const ServiceName = "radioloan"

// Resource attribute keys identifying the organisation.
const (
	AttrOrganisationID   = attribute.Key("radioloan.organisation.id")
	AttrOrganisationName = attribute.Key("radioloan.organisation.name")
)

// defaultShutdownTimeout bounds the final span flush when the caller's
// context has no deadline.
const defaultShutdownTimeout = 5 * time.Second

// Provider owns the SDK tracer provider installed by Setup.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Setup creates an OTLP/gRPC exporter for cfg.Endpoint, builds a batching
// tracer provider around it and installs the provider and the trace context
// propagator globally.
//
// Returns ErrDisabled when cfg.Enabled is false.
func Setup(ctx context.Context, cfg config.TracingConfig, org config.OrganisationConfig, version string) (*Provider, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	res, err := newResource(ctx, org, version)
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExporterFailed, err)
	}

	p := newProvider(res, cfg.SampleRatio, sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return p, nil
}

// newProvider builds a provider sampling root spans at ratio. Children
// follow the sampling decision of their parent.
func newProvider(res *resource.Resource, ratio float64, opts ...sdktrace.TracerProviderOption) *Provider {
	opts = append(opts,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)
	return &Provider{tp: sdktrace.NewTracerProvider(opts...)}
}

func newResource(ctx context.Context, org config.OrganisationConfig, version string) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(ServiceName),
		semconv.ServiceVersionKey.String(version),
		AttrOrganisationID.String(org.ID),
	}
	if org.Name != "" {
		attrs = append(attrs, AttrOrganisationName.String(org.Name))
	}
	return resource.New(ctx, resource.WithAttributes(attrs...))
}

// Tracer returns a named tracer. On a nil Provider it falls back to the
// global provider.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p == nil || p.tp == nil {
		return otel.Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Shutdown flushes buffered spans and stops the exporter.
// Shutting down a nil Provider is a no-op.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}
