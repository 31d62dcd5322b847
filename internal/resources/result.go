// Package resources is the uniform {ok, data} contract the console pages call.
// Every operation resolves to a Result; the error return is reserved for an
// ended session, after which the caller must navigate instead of rendering.
package resources

import (
	"errors"

	"losadmin/internal/backend"
	"losadmin/internal/httpclient"
	"losadmin/internal/retry"
	"losadmin/internal/utils/logger"
)

// ErrSessionEnded is returned when the backend answered 401. The session has
// already been cleared and a redirect published.
var ErrSessionEnded = errors.New("session ended")

var log = logger.New("resources")

// Result mirrors {ok, data}. Data is the zero value when OK is false.
type Result[T any] struct {
	OK   bool `json:"ok"`
	Data T    `json:"data,omitempty"`
}

// Empty is the data of operations that return nothing.
type Empty struct{}

func settle[T any](resource, op string, data T, err error) (Result[T], error) {
	if err == nil {
		return Result[T]{OK: true, Data: data}, nil
	}
	switch {
	case httpclient.IsUnauthorized(err):
		return Result[T]{}, ErrSessionEnded
	case errors.Is(err, retry.ErrNoResult):
		log.Warn("%s %s: gave up after retries", resource, op)
	case backend.IsNotFound(err), backend.IsNotValid(err):
		log.Debug("%s %s: %v", resource, op, err)
	default:
		log.Warn("%s %s failed: %v", resource, op, err)
	}
	return Result[T]{}, nil
}

func settleErr(resource, op string, err error) (Result[Empty], error) {
	return settle(resource, op, Empty{}, err)
}
