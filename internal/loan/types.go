package loan

import (
	"time"

	"github.com/nerrad567/radioloan-core/internal/device"
)

// Loan is one borrow/return cycle of a single device.
//
// A loan with a nil ReturnedAt is active. BorrowedAt never changes after
// creation and ReturnedAt is set exactly once.
type Loan struct {
	ID           string     `json:"id"`
	DeviceID     string     `json:"device_id"`
	BorrowerName string     `json:"borrower_name"`
	BorrowedAt   time.Time  `json:"borrowed_at"`
	ReturnedAt   *time.Time `json:"returned_at"`
	ReturnNote   *string    `json:"return_note"`

	// Device is the device projection read in the same transaction as the loan.
	Device device.Summary `json:"device"`
}
