package loan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/radioloan-core/internal/device"
	"github.com/nerrad567/radioloan-core/internal/infrastructure/database"
	_ "github.com/nerrad567/radioloan-core/migrations" // registers embedded migrations
)

// testEnv bundles a migrated database with the repositories built on it.
type testEnv struct {
	db      *database.DB
	devices *device.SQLRepository
	clock   *stepClock
}

// stepClock advances by step on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock() *stepClock {
	return &stepClock{
		now:  time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// fixedClock always returns the same instant.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type failingIDs struct{}

func (failingIDs) New() (string, error) { return "", errors.New("entropy exhausted") }

// recordingLogger captures log calls by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) levels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.level)
	}
	return out
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver:      database.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "loans.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err, "opening test database")
	t.Cleanup(func() {
		db.Close() //nolint:errcheck // Test cleanup
	})
	require.NoError(t, db.Migrate(context.Background()), "migrating test database")

	return &testEnv{
		db:      db,
		devices: device.NewSQLRepository(db),
		clock:   newStepClock(),
	}
}

// store builds a Store on the env with the step clock unless cfg sets one.
func (e *testEnv) store(cfg StoreConfig, logger Logger) *Store {
	if cfg.Clock == nil {
		cfg.Clock = e.clock
	}
	return NewStore(e.db, e.devices, cfg, logger)
}

func (e *testEnv) addDevice(t *testing.T, id string, status device.Status) {
	t.Helper()
	d := &device.Device{ID: id, CallSign: "Florian " + id, Status: status}
	require.NoError(t, e.devices.Create(context.Background(), d))
}

func (e *testEnv) deviceStatus(t *testing.T, id string) device.Status {
	t.Helper()
	d, err := e.devices.GetByID(context.Background(), id)
	require.NoError(t, err)
	return d.Status
}

func (e *testEnv) countLoans(t *testing.T, deviceID string) int {
	t.Helper()
	var n int
	err := e.db.GetContext(context.Background(), &n,
		e.db.Rebind("SELECT COUNT(*) FROM loans WHERE device_id = ?"), deviceID)
	require.NoError(t, err)
	return n
}

// assertInvariant checks that every device is ON_LOAN exactly when it has
// one open loan and never has more than one.
func (e *testEnv) assertInvariant(t *testing.T) {
	t.Helper()

	var rows []struct {
		ID     string `db:"id"`
		Status string `db:"status"`
		Active int    `db:"active"`
	}
	err := e.db.SelectContext(context.Background(), &rows, `
		SELECT d.id, d.status,
		       (SELECT COUNT(*) FROM loans l WHERE l.device_id = d.id AND l.returned_at IS NULL) AS active
		FROM devices d`)
	require.NoError(t, err)

	for _, r := range rows {
		require.LessOrEqual(t, r.Active, 1, "device %s has %d open loans", r.ID, r.Active)
		onLoan := r.Status == string(device.StatusOnLoan)
		require.Equal(t, onLoan, r.Active == 1,
			fmt.Sprintf("device %s: status %s with %d open loans", r.ID, r.Status, r.Active))
	}
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

// requireKind asserts err is an *Error of the given kind and message.
func requireKind(t *testing.T, err error, kind Kind, msg string) *Error {
	t.Helper()
	var le *Error
	require.ErrorAs(t, err, &le)
	require.Equal(t, kind, le.Kind, "kind of %q", le.Message)
	if msg != "" {
		require.Equal(t, msg, le.Error())
	}
	return le
}
