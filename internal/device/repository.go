package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
)

const tableDevices = "devices"

// deviceColumns is the column list for full device reads.
var deviceColumns = []any{"id", "call_sign", "status", "notes", "created_at", "updated_at"}

// Repository defines the interface for device catalogue persistence.
//
// The catalogue never writes ON_LOAN and never changes the status of a
// device that is ON_LOAN; those transitions belong to the loan engine.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// List retrieves all devices ordered by call sign.
	List(ctx context.Context) ([]Device, error)

	// ListByStatus retrieves devices in the given status ordered by call sign.
	ListByStatus(ctx context.Context, status Status) ([]Device, error)

	// Create inserts a new device. An empty ID is generated and an empty
	// status defaults to AVAILABLE.
	// Returns ErrDeviceExists if the ID or call sign is taken.
	Create(ctx context.Context, device *Device) error

	// SetStatus changes the status of a device that is not on loan.
	// Returns ErrStatusReserved for ON_LOAN, ErrDeviceOnLoan if the device is
	// currently loaned, and ErrDeviceNotFound if it does not exist.
	SetStatus(ctx context.Context, id string, status Status) (*Device, error)
}

// SQLRepository implements Repository on any backend supported by the
// database package.
type SQLRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewSQLRepository creates a repository backed by db.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

// GetByID retrieves a device by its unique identifier.
func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query, args, err := r.db.Dialect().From(tableDevices).
		Prepared(true).
		Select(deviceColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building device query: %w", err)
	}

	var d Device
	if err := r.db.GetContext(ctx, &d, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return &d, nil
}

// List retrieves all devices.
func (r *SQLRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, nil)
}

// ListByStatus retrieves devices in the given status.
func (r *SQLRepository) ListByStatus(ctx context.Context, status Status) ([]Device, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}
	return r.queryDevices(ctx, goqu.C("status").Eq(string(status)))
}

// Create inserts a new device.
func (r *SQLRepository) Create(ctx context.Context, device *Device) error {
	if err := ValidateDevice(device); err != nil {
		return err
	}
	if device.Status == StatusOnLoan {
		return ErrStatusReserved
	}

	if device.ID == "" {
		device.ID = GenerateID()
	}
	if device.Status == "" {
		device.Status = StatusAvailable
	}
	device.CallSign = strings.TrimSpace(device.CallSign)

	now := r.now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now

	query, args, err := r.db.Dialect().Insert(tableDevices).
		Prepared(true).
		Rows(goqu.Record{
			"id":         device.ID,
			"call_sign":  device.CallSign,
			"status":     string(device.Status),
			"notes":      nullableString(device.Notes),
			"created_at": device.CreatedAt,
			"updated_at": device.UpdatedAt,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building device insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// SetStatus changes the status of a device that is not on loan.
//
// The update is guarded on status <> ON_LOAN so a device borrowed between the
// caller's read and this write is left untouched.
func (r *SQLRepository) SetStatus(ctx context.Context, id string, status Status) (*Device, error) {
	if err := ValidateStatus(status); err != nil {
		return nil, err
	}
	if status == StatusOnLoan {
		return nil, ErrStatusReserved
	}

	query, args, err := r.db.Dialect().Update(tableDevices).
		Prepared(true).
		Set(goqu.Record{
			"status":     string(status),
			"updated_at": r.now().UTC(),
		}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("status").Neq(string(StatusOnLoan)),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building status update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating device status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}

	d, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// MySQL reports zero affected rows when the value is unchanged, so a
	// miss is only an error if the device is actually on loan.
	if rowsAffected == 0 && d.Status == StatusOnLoan {
		return nil, ErrDeviceOnLoan
	}
	return d, nil
}

func (r *SQLRepository) queryDevices(ctx context.Context, where goqu.Expression) ([]Device, error) {
	ds := r.db.Dialect().From(tableDevices).
		Prepared(true).
		Select(deviceColumns...).
		Order(goqu.C("call_sign").Asc())
	if where != nil {
		ds = ds.Where(where)
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building device list query: %w", err)
	}

	devices := make([]Device, 0)
	if err := r.db.SelectContext(ctx, &devices, query, args...); err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	return devices, nil
}

// nullableString returns a sql.NullString for optional string pointers.
func nullableString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
