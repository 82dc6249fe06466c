package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoCardSelected          = errors.New("please select a card")
	ErrNoDate                  = errors.New("please enter a date")
	ErrNoBalance               = errors.New("please enter current balance")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidNumber           = errors.New("please enter a valid number")
	ErrNegativeValue           = errors.New("value cannot be negative")
	ErrOutOfRange              = errors.New("value must be between 0 and 100")
	ErrEmptyID                 = errors.New("empty id")
	ErrEmptyName               = errors.New("name cannot be empty")
	ErrNameTooLong             = errors.New("name too long")
	ErrNotesTooLong            = errors.New("notes too long")
	ErrInvalidIssuer           = errors.New("invalid issuer")
	ErrInvalidColor            = errors.New("invalid color")
	ErrInvalidTheme            = errors.New("invalid theme")
	ErrInvalidView             = errors.New("invalid view")
	ErrUnknownCard             = errors.New("unknown card")
	ErrConfirmationRequired    = errors.New("negative balance requires confirmation")
	ErrNegativeBalanceDeclined = errors.New("negative balance not confirmed")
	ErrInvalidDocument         = errors.New("invalid data format")
	ErrInvalidImportMode       = errors.New("invalid import mode")
)

// ValidationError reports user input that fails a precondition. The
// operation that returned it left the state untouched.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Invalid wraps err as a ValidationError on field.
func Invalid(field string, err error) error {
	return invalid(field, err)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError reports a failed read or write at the storage boundary.
// In-memory state stays authoritative when one is returned.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s snapshot %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
