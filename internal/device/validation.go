package device

import (
	"fmt"
	"strings"
)

// Validation constants.
const (
	maxNameLength = 100
)

// Pre-computed validation sets for O(1) lookups.
var (
	validTypes    map[Type]struct{}
	validStatuses map[Status]struct{}
)

func init() {
	validTypes = make(map[Type]struct{}, len(AllTypes()))
	for _, t := range AllTypes() {
		validTypes[t] = struct{}{}
	}

	validStatuses = make(map[Status]struct{}, len(AllStatuses()))
	for _, s := range AllStatuses() {
		validStatuses[s] = struct{}{}
	}
}

// ValidateDevice checks the mutable fields of a device.
// Returns the first validation failure found.
func ValidateDevice(d *Device) error {
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if err := ValidateType(d.Type); err != nil {
		return err
	}
	return ValidateStatus(d.Status)
}

// ValidateName checks if a device name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateType checks if a device type is one of the supported values.
func ValidateType(t Type) error {
	if _, ok := validTypes[t]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDeviceType, t)
}

// ValidateStatus checks if a status is one of the supported values.
func ValidateStatus(s Status) error {
	if _, ok := validStatuses[s]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}
