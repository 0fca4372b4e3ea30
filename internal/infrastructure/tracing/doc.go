// Package tracing configures OpenTelemetry trace export for Radio Loan Core.
//
// Setup builds an SDK tracer provider that batches spans to an OTLP/gRPC
// collector, installs it as the global provider and registers the W3C trace
// context propagator. Every span carries a resource naming the service, its
// version and the organisation that owns the radio pool.
//
// Tracing is optional. Setup returns ErrDisabled when it is switched off;
// a nil *Provider is still usable and hands out the global (no-op) tracer.
//
// # Usage
//
//	provider, err := tracing.Setup(ctx, cfg.Tracing, cfg.Organisation, version)
//	if err != nil && !errors.Is(err, tracing.ErrDisabled) {
//	    return err
//	}
//	defer provider.Shutdown(context.Background())
//
//	loans := loan.NewService(store, events, metrics, provider.Tracer(loan.TracerName), log)
package tracing
