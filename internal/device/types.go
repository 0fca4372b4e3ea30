package device

import "time"

// Status is the lifecycle state of a radio device.
type Status string

// Device statuses. ON_LOAN is owned by the loan engine: the catalogue never
// moves a device into or out of it.
const (
	StatusAvailable   Status = "AVAILABLE"
	StatusOnLoan      Status = "ON_LOAN"
	StatusDefect      Status = "DEFECT"
	StatusMaintenance Status = "MAINTENANCE"
)

// AllStatuses returns every valid device status.
func AllStatuses() []Status {
	return []Status{StatusAvailable, StatusOnLoan, StatusDefect, StatusMaintenance}
}

// IsValid reports whether s is one of the four known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOnLoan, StatusDefect, StatusMaintenance:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Device is a physical radio in the organisation's pool.
type Device struct {
	ID        string    `json:"id" db:"id"`
	CallSign  string    `json:"call_sign" db:"call_sign"`
	Status    Status    `json:"status" db:"status"`
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Summary is the read-only projection of a device embedded in loan records.
type Summary struct {
	ID       string `json:"id" db:"id"`
	CallSign string `json:"call_sign" db:"call_sign"`
	Status   Status `json:"status" db:"status"`
}
