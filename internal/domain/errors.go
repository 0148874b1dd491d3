package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound is returned by the tenant directory when no tenant
	// exists for a shop domain.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantNotConfigured marks a tenant that exists but has no webhook
	// secret, so nothing it sends can ever be authenticated. This is an
	// operator problem, distinct from an unknown tenant.
	ErrTenantNotConfigured = errors.New("tenant has no webhook secret configured")
)

// ProcessingError marks a handler-level failure after successful
// authentication: the payload was valid JSON but cannot be synchronized.
// Mapped to a non-retryable response.
type ProcessingError struct {
	Msg string
	Err error
}

func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ErrorKind classifies a persistence fault at the gateway boundary. The
// postgres adapter translates driver-specific codes into one of these kinds;
// nothing above the gateway ever inspects a driver error.
type ErrorKind int

const (
	// KindData is a non-transient storage fault: retrying the same payload
	// would fail the same way.
	KindData ErrorKind = iota

	// KindTransient is an infrastructure fault (connection lost, pool
	// exhausted, deadlock). Safe and expected to retry.
	KindTransient
)

// StoreError wraps a storage fault with its retry classification.
type StoreError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsTransientStore reports whether err is a storage fault that is safe to
// retry.
func IsTransientStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindTransient
}
