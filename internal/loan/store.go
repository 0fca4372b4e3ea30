package loan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/radioloan-core/internal/device"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
)

const (
	tableLoans   = "loans"
	tableDevices = "devices"
)

// Operation names used in errors, logs, spans and metrics.
const (
	OpCreate     = "create"
	OpReturn     = "return"
	OpFindActive = "find_active"
)

// Defaults applied by NewStore for zero StoreConfig fields.
const (
	DefaultTransactionTimeout = 25 * time.Second
	DefaultPageSize           = 50
	DefaultMaxPageSize        = 100
)

// DeviceReader is the part of the device catalogue the store needs for its
// pre-check. It is satisfied by *device.SQLRepository.
type DeviceReader interface {
	GetByID(ctx context.Context, id string) (*device.Device, error)
}

// StoreConfig holds the tunables of a Store.
type StoreConfig struct {
	// TransactionTimeout bounds each transaction, including waiting for a
	// connection.
	TransactionTimeout time.Duration

	// DefaultPageSize is used by FindActive when take is omitted.
	DefaultPageSize int

	// MaxPageSize caps take in FindActive.
	MaxPageSize int

	// Clock stamps borrowed_at and returned_at. Nil means SystemClock.
	Clock Clock

	// IDs generates loan ids. Nil means a ULIDGenerator on Clock.
	IDs IDGenerator
}

// Store performs borrow and return transitions against the database.
//
// It is the only writer of devices.status to or from ON_LOAN and the only
// writer of loans.returned_at. Every transition is one transaction whose
// status change is a guarded UPDATE: the WHERE clause carries the expected
// prior state and zero affected rows means a concurrent caller got there
// first. No row locks are taken.
//
// Thread Safety: all methods are safe for concurrent use.
type Store struct {
	db      *database.DB
	devices DeviceReader
	cfg     StoreConfig
	logger  Logger
}

// NewStore creates a Store. Zero fields of cfg take the package defaults.
func NewStore(db *database.DB, devices DeviceReader, cfg StoreConfig, logger Logger) *Store {
	if cfg.TransactionTimeout <= 0 {
		cfg.TransactionTimeout = DefaultTransactionTimeout
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = DefaultMaxPageSize
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.IDs == nil {
		cfg.IDs = NewULIDGenerator(cfg.Clock)
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Store{
		db:      db,
		devices: devices,
		cfg:     cfg,
		logger:  logger,
	}
}

// loanRow is the flat result of the loan/device join.
type loanRow struct {
	ID           string         `db:"id"`
	DeviceID     string         `db:"device_id"`
	BorrowerName string         `db:"borrower_name"`
	BorrowedAt   time.Time      `db:"borrowed_at"`
	ReturnedAt   sql.NullTime   `db:"returned_at"`
	ReturnNote   sql.NullString `db:"return_note"`
	CallSign     string         `db:"device_call_sign"`
	DeviceStatus string         `db:"device_status"`
}

func (r *loanRow) toLoan() *Loan {
	l := &Loan{
		ID:           r.ID,
		DeviceID:     r.DeviceID,
		BorrowerName: r.BorrowerName,
		BorrowedAt:   r.BorrowedAt.UTC(),
		Device: device.Summary{
			ID:       r.DeviceID,
			CallSign: r.CallSign,
			Status:   device.Status(r.DeviceStatus),
		},
	}
	if r.ReturnedAt.Valid {
		t := r.ReturnedAt.Time.UTC()
		l.ReturnedAt = &t
	}
	if r.ReturnNote.Valid {
		note := r.ReturnNote.String
		l.ReturnNote = &note
	}
	return l
}

// Create borrows deviceID for borrowerName.
//
// The device is looked up first so the common failures get a precise
// NotFound or Conflict without opening a transaction. The transaction then
// flips the device AVAILABLE -> ON_LOAN with a guarded update, inserts the
// loan and reads it back with the device projection. A guard miss means a
// concurrent Create won and yields Conflict("device just loaned"); nothing
// is persisted in that case.
func (s *Store) Create(ctx context.Context, deviceID, borrowerName string) (*Loan, error) {
	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, s.fail(OpCreate, notFound(MsgDeviceNotFound), "device_id", deviceID)
		}
		return nil, s.fail(OpCreate, classify(ctx, fmt.Errorf("looking up device: %w", err), MsgDeviceJustLoaned), "device_id", deviceID)
	}
	if !CanBorrow(d) {
		e := conflict(MsgDeviceNotAvailable)
		e.ObservedStatus = string(d.Status)
		return nil, s.fail(OpCreate, e, "device_id", deviceID)
	}

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	var created *Loan
	err = s.db.RunInTx(txCtx, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		now := s.now()

		n, err := s.updateDeviceStatus(ctx, tx, deviceID, device.StatusAvailable, device.StatusOnLoan, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return raceConflict(MsgDeviceJustLoaned, CauseDeviceTaken)
		}

		id, err := s.cfg.IDs.New()
		if err != nil {
			return fmt.Errorf("generating loan id: %w", err)
		}

		if err := s.insertLoan(ctx, tx, id, deviceID, borrowerName, now); err != nil {
			return err
		}

		created, err = s.getLoan(ctx, tx, id)
		if err != nil {
			return err
		}
		if created == nil {
			return internal(fmt.Errorf("loan %s missing after insert", id))
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(OpCreate, classify(txCtx, err, MsgDeviceJustLoaned), "device_id", deviceID)
	}

	s.logger.Debug("loan created", "loan_id", created.ID, "device_id", deviceID)
	return created, nil
}

// ReturnLoan closes loanID, storing note as the return note.
//
// Everything happens in one transaction: the loan is read inside it, the
// device is flipped ON_LOAN -> AVAILABLE with a guarded update, and the loan
// is closed with a second update guarded on returned_at IS NULL. Either
// guard missing yields a Conflict and rolls the whole return back.
func (s *Store) ReturnLoan(ctx context.Context, loanID string, note *string) (*Loan, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	var returned *Loan
	err := s.db.RunInTx(txCtx, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.getLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if current == nil {
			return notFound(MsgLoanNotFound)
		}
		if !CanReturn(current) {
			return conflict(MsgAlreadyReturned)
		}

		returnedAt := s.now()
		if !returnedAt.After(current.BorrowedAt) {
			e := internal(fmt.Errorf("return time %s not after borrow time %s",
				returnedAt.Format(time.RFC3339Nano), current.BorrowedAt.Format(time.RFC3339Nano)))
			e.Cause = CauseInvariantViolation
			return e
		}

		n, err := s.updateDeviceStatus(ctx, tx, current.DeviceID, device.StatusOnLoan, device.StatusAvailable, returnedAt)
		if err != nil {
			return err
		}
		if n == 0 {
			return s.diagnoseDeviceMiss(ctx, tx, current)
		}

		n, err = s.closeLoan(ctx, tx, loanID, returnedAt, note)
		if err != nil {
			return err
		}
		if n == 0 {
			return raceConflict(MsgJustReturned, CauseConcurrentReturn)
		}

		returned, err = s.getLoan(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if returned == nil || returned.ReturnedAt == nil {
			e := internal(fmt.Errorf("loan %s has no returned_at after close", loanID))
			e.Cause = CauseInvariantViolation
			return e
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(OpReturn, classify(txCtx, err, MsgJustReturned), "loan_id", loanID)
	}

	s.logger.Debug("loan returned", "loan_id", loanID, "device_id", returned.DeviceID)
	return returned, nil
}

// FindActive lists open loans, newest borrow first.
//
// A nil take means the configured default page size; take is capped at the
// maximum page size and raised to at least one. A nil or negative skip
// means zero.
func (s *Store) FindActive(ctx context.Context, take, skip *int) ([]Loan, error) {
	limit, offset := s.page(take, skip)

	query, args, err := s.loanQuery().
		Where(goqu.I("l.returned_at").IsNull()).
		Order(goqu.I("l.borrowed_at").Desc(), goqu.I("l.id").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ToSQL()
	if err != nil {
		return nil, s.fail(OpFindActive, internal(fmt.Errorf("building active loans query: %w", err)))
	}

	qctx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimeout)
	defer cancel()

	var rows []loanRow
	if err := s.db.SelectContext(qctx, &rows, query, args...); err != nil {
		return nil, s.fail(OpFindActive, classify(qctx, fmt.Errorf("querying active loans: %w", err), MsgBusy))
	}

	loans := make([]Loan, 0, len(rows))
	for i := range rows {
		loans = append(loans, *rows[i].toLoan())
	}
	return loans, nil
}

// page resolves FindActive's optional paging arguments.
func (s *Store) page(take, skip *int) (limit, offset int) {
	limit = s.cfg.DefaultPageSize
	if take != nil {
		limit = *take
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if skip != nil && *skip > 0 {
		offset = *skip
	}
	return limit, offset
}

// diagnoseDeviceMiss explains why the return-side device guard matched no
// row. A loan closed by a competing return yields
// Conflict("just returned by someone else"); anything else is treated as an
// out-of-band status change and yields Conflict("device status changed").
func (s *Store) diagnoseDeviceMiss(ctx context.Context, tx *sqlx.Tx, l *Loan) *Error {
	e := raceConflict(MsgDeviceStatusChange, CauseStatusOverride)

	latest, err := s.getLoan(ctx, tx, l.ID)
	if err != nil || latest == nil {
		return e
	}
	e.ObservedStatus = string(latest.Device.Status)
	if latest.ReturnedAt != nil {
		e.Message = MsgJustReturned
		e.Cause = CauseConcurrentReturn
	}
	return e
}

func (s *Store) fail(op string, e *Error, attrs ...any) *Error {
	e.Op = op
	logFailure(s.logger, e, attrs...)
	return e
}

// now returns the store clock in UTC at the precision every backend keeps.
func (s *Store) now() time.Time {
	return s.cfg.Clock.Now().UTC().Truncate(time.Microsecond)
}

func (s *Store) loanQuery() *goqu.SelectDataset {
	return s.db.Dialect().
		From(goqu.T(tableLoans).As("l")).
		Prepared(true).
		Join(goqu.T(tableDevices).As("d"), goqu.On(goqu.I("d.id").Eq(goqu.I("l.device_id")))).
		Select(
			goqu.I("l.id"),
			goqu.I("l.device_id"),
			goqu.I("l.borrower_name"),
			goqu.I("l.borrowed_at"),
			goqu.I("l.returned_at"),
			goqu.I("l.return_note"),
			goqu.I("d.call_sign").As("device_call_sign"),
			goqu.I("d.status").As("device_status"),
		)
}

// getLoan reads one loan with its device projection. A missing loan is
// (nil, nil).
func (s *Store) getLoan(ctx context.Context, q sqlx.QueryerContext, id string) (*Loan, error) {
	query, args, err := s.loanQuery().Where(goqu.I("l.id").Eq(id)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building loan query: %w", err)
	}

	var row loanRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying loan: %w", err)
	}
	return row.toLoan(), nil
}

// updateDeviceStatus moves a device from one status to another only if it
// is still in from, and reports how many rows matched.
func (s *Store) updateDeviceStatus(ctx context.Context, tx *sqlx.Tx, id string, from, to device.Status, now time.Time) (int64, error) {
	query, args, err := s.db.Dialect().Update(tableDevices).
		Prepared(true).
		Set(goqu.Record{
			"status":     string(to),
			"updated_at": now,
		}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("status").Eq(string(from)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building device status update: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("updating device status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}

func (s *Store) insertLoan(ctx context.Context, tx *sqlx.Tx, id, deviceID, borrowerName string, borrowedAt time.Time) error {
	query, args, err := s.db.Dialect().Insert(tableLoans).
		Prepared(true).
		Rows(goqu.Record{
			"id":            id,
			"device_id":     deviceID,
			"borrower_name": borrowerName,
			"borrowed_at":   borrowedAt,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building loan insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting loan: %w", err)
	}
	return nil
}

// closeLoan sets returned_at and return_note on a loan that is still open
// and reports how many rows matched.
func (s *Store) closeLoan(ctx context.Context, tx *sqlx.Tx, id string, returnedAt time.Time, note *string) (int64, error) {
	returnNote := sql.NullString{}
	if note != nil {
		returnNote = sql.NullString{String: *note, Valid: true}
	}

	query, args, err := s.db.Dialect().Update(tableLoans).
		Prepared(true).
		Set(goqu.Record{
			"returned_at": returnedAt,
			"return_note": returnNote,
		}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("returned_at").IsNull(),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building loan close: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("closing loan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
