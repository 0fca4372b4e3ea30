package device

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxCallSignLength = 100
	maxNotesLength    = 500
	maxIDLength       = 64
	idPattern         = `^[A-Za-z0-9][A-Za-z0-9_.-]*$`

	// idPrefix marks catalogue-generated device IDs.
	idPrefix = "dev-"

	// idSuffixLength is how much of a UUID is kept for generated IDs.
	idSuffixLength = 8
)

var idRegex = regexp.MustCompile(idPattern)

// ValidateDevice checks a device before it is written to the catalogue.
// The ID may be empty; the repository generates one.
func ValidateDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	if d.ID != "" {
		if err := ValidateID(d.ID); err != nil {
			return err
		}
	}

	if err := ValidateCallSign(d.CallSign); err != nil {
		return err
	}

	if d.Status != "" {
		if err := ValidateStatus(d.Status); err != nil {
			return err
		}
	}

	if d.Notes != nil && utf8.RuneCountInString(*d.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidDevice, maxNotesLength)
	}

	return nil
}

// ValidateID checks the format of a device ID.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidID)
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidID, maxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("%w: id %q contains invalid characters", ErrInvalidID, id)
	}
	return nil
}

// ValidateCallSign checks that a call sign is present and within length limits.
func ValidateCallSign(callSign string) error {
	callSign = strings.TrimSpace(callSign)
	if callSign == "" {
		return fmt.Errorf("%w: call sign cannot be empty", ErrInvalidCallSign)
	}
	if utf8.RuneCountInString(callSign) > maxCallSignLength {
		return fmt.Errorf("%w: call sign exceeds %d characters", ErrInvalidCallSign, maxCallSignLength)
	}
	return nil
}

// ValidateStatus checks that status is one of the known values.
func ValidateStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return nil
}

// ParseStatus converts user input to a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if err := ValidateStatus(status); err != nil {
		return "", err
	}
	return status, nil
}

// GenerateID returns a new short device ID such as "dev-1a2b3c4d".
func GenerateID() string {
	return idPrefix + uuid.NewString()[:idSuffixLength]
}
