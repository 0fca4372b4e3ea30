package loan

import (
	"context"
	"errors"

	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
)

// Logger is the logging interface used by the loan engine.
// It is satisfied by *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// classify turns any failure of a store operation into an *Error.
//
// Errors already classified inside the transaction pass through. Driver
// errors are mapped by class; raceMsg is the message used when the store
// itself reports that a concurrent transaction won. ctx is the
// transaction-scoped context, so an expired deadline wins over whatever
// error the driver produced while being interrupted.
func classify(ctx context.Context, err error, raceMsg string) *Error {
	var le *Error
	if errors.As(err, &le) {
		return le
	}

	if ctx != nil && ctx.Err() != nil {
		return timeout(err)
	}

	switch database.ClassifyError(err) {
	case database.ClassTimeout, database.ClassCanceled:
		return timeout(err)
	case database.ClassContention:
		e := raceConflict(raceMsg, CauseStoreContention)
		e.err = err
		return e
	case database.ClassUniqueViolation:
		e := raceConflict(raceMsg, CauseDuplicateActive)
		e.err = err
		return e
	case database.ClassCheckViolation:
		e := internal(err)
		e.Cause = CauseInvariantViolation
		return e
	default:
		return internal(err)
	}
}

// logFailure writes e at the level its kind calls for. Lost races are
// routine and never logged at error level.
func logFailure(logger Logger, e *Error, attrs ...any) {
	args := append([]any{"op", e.Op, "kind", e.Kind.String()}, attrs...)
	if e.Cause != "" {
		args = append(args, "cause", e.Cause)
	}
	if e.ObservedStatus != "" {
		args = append(args, "observed_status", e.ObservedStatus)
	}

	switch {
	case e.Kind == KindInternal:
		if e.err != nil {
			args = append(args, "error", e.err.Error())
		}
		logger.Error("loan operation failed", args...)
	case e.Kind == KindTimeout:
		if e.err != nil {
			args = append(args, "error", e.err.Error())
		}
		logger.Warn("loan transaction timed out", args...)
	case e.Race && e.Message == MsgDeviceStatusChange:
		logger.Warn("race condition detected on device status", args...)
	case e.Race:
		logger.Info("loan race lost", args...)
	default:
		logger.Debug("loan operation rejected", args...)
	}
}
