package domain

import (
	"errors"
	"strings"
)

// Store-level sentinels. Adapters return these (possibly wrapped) so the
// service can tell business rejections from infrastructure failures.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role already exists")

	// ErrOrphanedAccount marks an account that was persisted but whose
	// roles could not be attached. It is never rolled back.
	ErrOrphanedAccount = errors.New("account created without roles")
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgNotFound           = "account not found"
	msgRoleCreation       = "an error occurred during role creation"
)

// ValidationError reports malformed input or a business rule rejected by a
// store. The message is safe to show to callers.
type ValidationError struct {
	Reason string
	Err    error
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }
func (e *ValidationError) Unwrap() error { return e.Err }

// AuthenticationError is returned for both unknown usernames and wrong
// passwords. Its message never varies.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string { return msgInvalidCredentials }

// NotFoundError is returned when an operation targets a missing account.
type NotFoundError struct{}

func (e *NotFoundError) Error() string { return msgNotFound }
func (e *NotFoundError) Unwrap() error { return ErrAccountNotFound }

// OperationError hides a backend failure behind a generic message. The
// cause stays reachable through errors.Unwrap for logging.
type OperationError struct {
	Err error
}

func (e *OperationError) Error() string { return msgRoleCreation }
func (e *OperationError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing required setting. It is fatal for
// the operation that hit it.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " is not configured"
}

// StoreRejection carries the individual problems a store reported when it
// refused a write, e.g. a duplicate username.
type StoreRejection struct {
	Descriptions []string
	Err          error
}

func NewStoreRejection(err error, descriptions ...string) *StoreRejection {
	if len(descriptions) == 0 && err != nil {
		descriptions = []string{err.Error()}
	}
	return &StoreRejection{Descriptions: descriptions, Err: err}
}

func (e *StoreRejection) Error() string { return strings.Join(e.Descriptions, ", ") }
func (e *StoreRejection) Unwrap() error { return e.Err }
