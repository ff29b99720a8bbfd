package browser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by WaitFor when no element matched before the
	// timeout. It is an expected outcome, not a fault.
	ErrNotFound = errors.New("element not found")

	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("browser session closed")
)

// FaultError reports a driver-level failure: the browser crashed, navigation
// failed, or an element handle went stale.
type FaultError struct {
	Op  string
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("browser %s: %v", e.Op, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}

func fault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &FaultError{Op: op, Err: err}
}
