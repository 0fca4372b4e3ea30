package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when the ID or call sign is already taken.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidID is returned when a device ID is malformed.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrInvalidCallSign is returned when a call sign is empty or too long.
	ErrInvalidCallSign = errors.New("device: invalid call sign")

	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("device: invalid status")

	// ErrStatusReserved is returned when the catalogue is asked to set ON_LOAN.
	// Only borrowing a device puts it on loan.
	ErrStatusReserved = errors.New("device: status reserved for loans")

	// ErrDeviceOnLoan is returned when changing the status of a loaned device.
	ErrDeviceOnLoan = errors.New("device: on loan")
)
