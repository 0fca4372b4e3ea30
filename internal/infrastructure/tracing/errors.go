package tracing

import "errors"

var (
	// ErrDisabled is returned by Setup when tracing is disabled in config.
	ErrDisabled = errors.New("tracing: disabled in configuration")

	// ErrExporterFailed wraps failures creating the OTLP exporter.
	ErrExporterFailed = errors.New("tracing: exporter setup failed")
)
