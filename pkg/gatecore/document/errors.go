package document

import (
	"errors"
	"fmt"
)

// ErrMalformedField is matched by every *MalformedFieldError via errors.Is.
var ErrMalformedField = errors.New("malformed field")

// MalformedFieldError reports a present key whose value has the wrong shape.
type MalformedFieldError struct {
	Key  string // Key that failed
	Want string // Requested type
	Got  any    // Offending value
	Err  error  // Underlying parse error, if any
}

// Error implements the error interface.
func (e *MalformedFieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed field %q: want %s, got %T: %v", e.Key, e.Want, e.Got, e.Err)
	}
	return fmt.Sprintf("malformed field %q: want %s, got %T", e.Key, e.Want, e.Got)
}

// Unwrap returns the underlying error.
func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedField) hold for every MalformedFieldError.
func (e *MalformedFieldError) Is(target error) bool {
	return target == ErrMalformedField
}

func malformed(key, want string, got any, err error) *MalformedFieldError {
	return &MalformedFieldError{Key: key, Want: want, Got: got, Err: err}
}
