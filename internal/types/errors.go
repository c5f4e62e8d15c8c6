package types

import "fmt"

// ErrorCode represents a specific error type
type ErrorCode string

const (
	// Codec errors
	ErrInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Ledger errors
	ErrInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrAccountLocked     ErrorCode = "ACCOUNT_LOCKED"

	// Game lifecycle errors
	ErrDuplicateActiveGame ErrorCode = "DUPLICATE_ACTIVE_GAME"
	ErrGameNotFound        ErrorCode = "GAME_NOT_FOUND"
	ErrBettingClosed       ErrorCode = "BETTING_CLOSED"
	ErrInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	ErrSelfBetForbidden    ErrorCode = "SELF_BET_FORBIDDEN"
	ErrInvalidSelection    ErrorCode = "INVALID_SELECTION"
	ErrInvalidOutcome      ErrorCode = "INVALID_OUTCOME"

	// System errors
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
)

// CoreError represents an expected, recoverable error from the wagering core.
// The presentation layer translates codes into user-facing messages.
type CoreError struct {
	Code    ErrorCode
	Message string
	Err     error // Underlying error, if any
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoreError) Unwrap() error {
	return e.Err
}

// NewCoreError creates a new CoreError
func NewCoreError(code ErrorCode, message string) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error in a CoreError
func WrapError(code ErrorCode, message string, err error) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode checks if an error is a CoreError with a specific code
func IsCode(err error, code ErrorCode) bool {
	var coreErr *CoreError
	if err == nil {
		return false
	}
	if ok := As(err, &coreErr); !ok {
		return false
	}
	return coreErr.Code == code
}

// As is a helper function to safely type assert an error to a CoreError,
// walking the Unwrap chain.
func As(err error, target **CoreError) bool {
	if target == nil {
		return false
	}
	for err != nil {
		if coreErr, ok := err.(*CoreError); ok {
			*target = coreErr
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
