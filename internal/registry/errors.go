package registry

import (
	"errors"
	"fmt"
)

// ErrNotFound - the order number or customer id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStorageBusy - the database stayed locked through every allocation
// attempt. The whole create-order call can be retried safely.
var ErrStorageBusy = errors.New("storage busy, retry the operation")

// ValidationError reports a missing or malformed mandatory field. It is
// always raised before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "must not be blank"}
}

// CorruptionError - the stored schema no longer matches what migration can
// produce. Fatal; the caller has to intervene manually.
type CorruptionError struct {
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("storage schema corrupted: %v", e.Err)
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}
