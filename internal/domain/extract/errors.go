package extract

import (
	"errors"
	"fmt"
)

// ErrMissingField is matched by every MissingFieldError.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError names the absent field and where it was expected.
type MissingFieldError struct {
	Field string // e.g. "encounter.name"
	Path  string // e.g. "reports[0].rankings.data[3]"
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %q at %s", ErrMissingField, e.Field, e.Path)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

func missing(field, path string) error {
	return &MissingFieldError{Field: field, Path: path}
}
