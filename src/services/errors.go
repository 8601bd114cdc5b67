package services

import "fmt"

// ValidationError reports malformed or out-of-range input. It is never
// retried and is surfaced to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports that the referenced holding or wishlist entry does
// not exist for the calling user.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientQuantityError reports a sale of more units than are held.
type InsufficientQuantityError struct {
	Requested int64
	Held      int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("cannot sell %d units, only %d held", e.Requested, e.Held)
}

// StorageError wraps a failure of the underlying store. Whenever it is
// returned, the surrounding unit of work has been fully rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
