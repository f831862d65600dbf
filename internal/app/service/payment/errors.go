package payment

import "errors"

var (
	// ErrInvalidArgument: unknown gateway, missing or malformed field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound: the student fee or transaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPersistence: the record store failed to read or write.
	ErrPersistence = errors.New("persistence error")
	// ErrGatewayUnavailable: a live gateway call failed and the mock fallback
	// is disabled.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)
