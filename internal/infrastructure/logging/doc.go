// Package logging provides structured logging for Radio Loan Core.
//
// This package wraps Go's standard log/slog package so every component logs
// with the same shape: JSON in production, text during development, and the
// service/version attributes on every record.
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Component("loan").Info("loan returned", "loan_id", id)
//
// Borrower names are personal data. Log loan and device ids, not names.
package logging
