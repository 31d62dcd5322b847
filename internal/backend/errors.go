package backend

import (
	"github.com/juju/errors"
)

// NotFound builds the error returned for unknown ids.
func NotFound(resource, id string) error {
	return errors.NotFoundf("%s %q", resource, id)
}

// NotValid builds the error returned for requests a backend refuses.
func NotValid(format string, args ...interface{}) error {
	return errors.NotValidf(format, args...)
}

// IsNotFound reports whether err is a missing-record failure.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.NotFound)
}

// IsNotValid reports whether err is a rejected request.
func IsNotValid(err error) bool {
	return errors.Is(err, errors.NotValid)
}

// LoginError is a rejected credential exchange. Message is shown to the user as is.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}
