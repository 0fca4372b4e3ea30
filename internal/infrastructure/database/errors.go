package database

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ErrorClass groups driver errors by what the caller can do about them.
type ErrorClass int

const (
	// ClassUnknown is any error not recognised below.
	ClassUnknown ErrorClass = iota

	// ClassTimeout means the statement or transaction ran out of time.
	ClassTimeout

	// ClassCanceled means the caller's context was cancelled.
	ClassCanceled

	// ClassContention covers lock waits, busy databases, deadlocks and
	// serialization failures. Retrying later may succeed.
	ClassContention

	// ClassUniqueViolation is a unique or primary key constraint failure.
	ClassUniqueViolation

	// ClassCheckViolation is a CHECK constraint failure.
	ClassCheckViolation

	// ClassForeignKeyViolation is a foreign key constraint failure.
	ClassForeignKeyViolation
)

// String returns a short name for logs and metric tags.
func (c ErrorClass) String() string {
	switch c {
	case ClassTimeout:
		return "timeout"
	case ClassCanceled:
		return "canceled"
	case ClassContention:
		return "contention"
	case ClassUniqueViolation:
		return "unique_violation"
	case ClassCheckViolation:
		return "check_violation"
	case ClassForeignKeyViolation:
		return "foreign_key_violation"
	default:
		return "unknown"
	}
}

// PostgreSQL SQLSTATE codes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
	pgQueryCanceled        = "57014"
	pgIdleInTxTimeout      = "25P03"
	pgLockNotAvailable     = "55P03"
)

// MySQL server error numbers.
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	myDuplicateEntry    = 1062
	myLockWaitTimeout   = 1205
	myDeadlock          = 1213
	myNoReferencedRow   = 1452
	myRowIsReferenced   = 1451
	myQueryTimeout      = 3024
	myCheckViolated     = 3819
	myLockNowaitFailure = 3572
)

// ClassifyError maps an error from any supported driver to an ErrorClass.
// Wrapped errors are unwrapped with errors.Is and errors.As.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case errors.Is(err, context.Canceled):
		return ClassCanceled
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(pgErr.Code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return classifyMySQL(myErr.Number)
	}

	return ClassUnknown
}

func classifySQLite(err sqlite3.Error) ErrorClass {
	switch err.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return ClassContention
	case sqlite3.ErrInterrupt:
		return ClassTimeout
	case sqlite3.ErrConstraint:
		switch err.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ClassUniqueViolation
		case sqlite3.ErrConstraintCheck:
			return ClassCheckViolation
		case sqlite3.ErrConstraintForeignKey:
			return ClassForeignKeyViolation
		}
	}
	return ClassUnknown
}

func classifyPostgres(code string) ErrorClass {
	switch code {
	case pgSerializationFailure, pgDeadlockDetected:
		return ClassContention
	case pgQueryCanceled, pgIdleInTxTimeout, pgLockNotAvailable:
		return ClassTimeout
	case pgUniqueViolation:
		return ClassUniqueViolation
	case pgCheckViolation:
		return ClassCheckViolation
	case pgForeignKeyViolation:
		return ClassForeignKeyViolation
	}
	return ClassUnknown
}

func classifyMySQL(number uint16) ErrorClass {
	switch number {
	case myDeadlock, myLockNowaitFailure:
		return ClassContention
	case myLockWaitTimeout, myQueryTimeout:
		return ClassTimeout
	case myDuplicateEntry:
		return ClassUniqueViolation
	case myCheckViolated:
		return ClassCheckViolation
	case myNoReferencedRow, myRowIsReferenced:
		return ClassForeignKeyViolation
	}
	return ClassUnknown
}

// IsUniqueViolation reports whether err is a unique or primary key violation.
func IsUniqueViolation(err error) bool {
	return ClassifyError(err) == ClassUniqueViolation
}
