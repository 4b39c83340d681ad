package domain

import "errors"

var (
	// ErrNotFound indicates the entry does not exist or belongs to a
	// different user. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("entry not found")
	// ErrConflict indicates another entry already occupies the target day.
	ErrConflict = errors.New("an entry already exists for that date")
	// ErrStoreUnavailable indicates the persistence layer failed or is
	// unreachable. Not retried internally.
	ErrStoreUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed caller input, detected before any
// storage call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
