// Package api implements the HTTP REST API for the radio loan service.
//
// This package provides:
//   - Device catalogue endpoints (list, get, create, status override)
//   - Loan endpoints (borrow, return, list active) over the loan engine
//   - Health reporting for the database and optional components
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Error Mapping
//
// Loan engine errors map by kind: not found 404, conflict 409, timeout 504,
// internal 500. The response message is the engine's user-facing text.
// Malformed input is rejected with 400 before the engine is called.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
