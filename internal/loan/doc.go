// Package loan implements the loan transition engine: borrowing a device
// and returning it, with the device status and the loan record changed in
// one transaction.
//
// State machine per loan and device:
//
//	[no loan] ──Create──▶ ACTIVE (device ON_LOAN) ──ReturnLoan──▶ CLOSED (device AVAILABLE)
//
// A closed loan is never reopened; borrowing again creates a new loan.
//
// # Concurrency
//
// No row locks are taken. Each transition is a guarded UPDATE whose WHERE
// clause encodes the expected prior state (status = 'AVAILABLE',
// status = 'ON_LOAN', returned_at IS NULL), and the affected row count
// decides whether this caller won. Of N concurrent Create calls on one
// device exactly one succeeds; the rest get a Conflict. The same holds for
// N concurrent ReturnLoan calls on one loan.
//
// Create and ReturnLoan still run the cheap checks CanBorrow and CanReturn
// first to return precise errors for the common case. Those checks race;
// the guarded update does not.
//
// # Errors
//
// Every failure is an *Error with one of four kinds:
//
//   - KindNotFound: unknown device or loan
//   - KindConflict: device not available, loan already returned, or a lost race
//   - KindTimeout: the transaction exceeded its time budget and was rolled back
//   - KindInternal: anything else, including violated invariants
//
// Error() returns a message that is safe to show to users. Store errors
// are logged server-side and never appear in it.
//
// # Key Types
//
//   - Store: transactional Create, ReturnLoan and FindActive
//   - Service: tracing, events and metrics around a Store
//   - MQTTPublisher: EventPublisher on the MQTT client
//   - InfluxRecorder: MetricsRecorder on the InfluxDB client
package loan
