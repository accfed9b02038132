package composer

import (
	"errors"
	"strings"
)

var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrConsentRequired    = errors.New("terms must be accepted before submitting")
	ErrFormClosed         = errors.New("draft has been discarded")
)

// ValidationError reports required fields that were empty. The save action
// is never called when this is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// SaveError carries the save action's failure. Error returns the action's
// message unchanged so it can be shown to the writer as-is.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return e.Err.Error()
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
