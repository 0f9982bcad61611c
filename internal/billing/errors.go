package billing

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every typed error below matches exactly one of these
// through errors.Is.
var (
	ErrValidation      = errors.New("billing: validation failed")
	ErrDuplicateName   = errors.New("billing: duplicate appliance name")
	ErrNotFound        = errors.New("billing: appliance not found")
	ErrInvalidSchedule = errors.New("billing: invalid rate schedule")
	ErrInvalidInput    = errors.New("billing: invalid input")
)

// ValidationError reports a malformed, missing or out-of-range field.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("billing: validation failed for %s: %q", e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateNameError reports a case-insensitive name collision on add.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("billing: duplicate appliance name %q", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// NotFoundError reports a removal target that does not exist. Exactly one of
// ID or Index is meaningful, depending on how the target was addressed.
type NotFoundError struct {
	ID    string
	Index int
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("billing: appliance %s not found", e.ID)
	}
	return fmt.Sprintf("billing: no appliance at index %d", e.Index)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidScheduleError reports a malformed RateSchedule. Band is the index of
// the offending band, or -1 when the problem concerns the schedule as a whole.
type InvalidScheduleError struct {
	Band   int
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	if e.Band < 0 {
		return fmt.Sprintf("billing: invalid rate schedule: %s", e.Reason)
	}
	return fmt.Sprintf("billing: invalid rate schedule: band %d: %s", e.Band, e.Reason)
}

func (e *InvalidScheduleError) Is(target error) bool { return target == ErrInvalidSchedule }

// InvalidInputError reports a negative consumption passed to the allocator.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("billing: invalid %s: %s", e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }
