package domain

import "errors"

var (
	// ErrSessionNotFound is returned when the user has no quiz in progress.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionClosed is returned when a session no longer accepts changes.
	ErrSessionClosed = errors.New("quiz session is not active")
	// ErrAlreadySubmitted indicates the session was submitted already.
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	// ErrQuestionNotFound indicates a question ID outside the current session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a selected option the question does not offer.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidDirection is returned for navigation other than next/prev.
	ErrInvalidDirection = errors.New("invalid navigation direction")
	// ErrResultNotFound is returned when a result ID does not exist.
	ErrResultNotFound = errors.New("quiz result not found")
)

// StoreError wraps any failure of the result or user store. Its message is
// deliberately generic; callers surface it as-is.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "failed to " + e.Op
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError returns nil when err is nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
