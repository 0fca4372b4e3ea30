package api

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/nerrad567/radioloan-core/internal/device"
	"github.com/nerrad567/radioloan-core/internal/loan"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeTimeout    = "timeout"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeValidationError writes a 400 error response for rejected input.
func writeValidationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeValidation, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeLoanError maps a loan engine error to its HTTP response.
// The message is the engine's user-facing text; store details never leak.
func writeLoanError(w http.ResponseWriter, err error) {
	var le *loan.Error
	if !errors.As(err, &le) {
		writeInternalError(w, loan.MsgInternal)
		return
	}

	switch le.Kind {
	case loan.KindNotFound:
		writeNotFound(w, le.Error())
	case loan.KindConflict:
		writeConflict(w, le.Error())
	case loan.KindTimeout:
		writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, le.Error())
	default:
		writeInternalError(w, le.Error())
	}
}

// isValidationError checks whether an error is a device validation error.
func isValidationError(err error) bool {
	return errors.Is(err, device.ErrInvalidDevice) ||
		errors.Is(err, device.ErrInvalidID) ||
		errors.Is(err, device.ErrInvalidCallSign) ||
		errors.Is(err, device.ErrInvalidStatus) ||
		errors.Is(err, device.ErrStatusReserved)
}
