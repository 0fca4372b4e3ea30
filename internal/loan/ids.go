package loan

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Clock supplies the current time. Tests substitute a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator produces loan identifiers.
type IDGenerator interface {
	New() (string, error)
}

// ULIDGenerator issues ULIDs that sort by creation time.
//
// Thread Safety: New is safe for concurrent use.
type ULIDGenerator struct {
	mu      sync.Mutex
	clock   Clock
	entropy io.Reader
}

// NewULIDGenerator creates a generator stamped by clock. A nil clock means
// SystemClock.
func NewULIDGenerator(clock Clock) *ULIDGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ULIDGenerator{
		clock:   clock,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New returns the next ULID as a 26 character string.
func (g *ULIDGenerator) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.clock.Now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("generating ulid: %w", err)
	}
	return id.String(), nil
}
