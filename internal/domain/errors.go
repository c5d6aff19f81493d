package domain

import "fmt"

// EngineError is the unified error type for the engine.
// Each error has a numeric code and human-readable message.
type EngineError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error %d: %s", e.Code, e.Message)
}

// Is allows errors.Is matching by code, so derived errors (for example a
// multiple-match error carrying its count) still match their sentinel.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewEngineError creates a new EngineError.
func NewEngineError(code int, msg string) *EngineError {
	return &EngineError{Code: code, Message: msg}
}

// WrapEngineError creates an EngineError that includes a cause.
func WrapEngineError(code int, msg string, cause error) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf("%s: %v", msg, cause)}
}

// ---- Policy errors (-32230 to -32249) ----

var (
	ErrUnknownPolicy    = &EngineError{Code: -32230, Message: "unknown approval policy"}
	ErrPolicyDocInvalid = &EngineError{Code: -32231, Message: "policy document validation failed"}
)

// ---- Transform errors (-32250 to -32269) ----

var (
	ErrUnsupportedIntent = &EngineError{Code: -32250, Message: "no transform registered for intent"}
	ErrPropertyNotFound  = &EngineError{Code: -32251, Message: "target declaration not found"}
	ErrMultipleMatches   = &EngineError{Code: -32252, Message: "multiple declarations match target"}
	ErrAlreadyHasWrapper = &EngineError{Code: -32253, Message: "declaration already has a property wrapper"}
)

// NewMultipleMatchesError returns an ErrMultipleMatches variant carrying the
// true match count for the offending identifier.
func NewMultipleMatchesError(identifier string, count int) *EngineError {
	return &EngineError{
		Code:    ErrMultipleMatches.Code,
		Message: fmt.Sprintf("%d declarations match %q", count, identifier),
	}
}

// ---- Store errors (-32270 to -32289) ----

var (
	ErrRunNotFound = &EngineError{Code: -32270, Message: "run not found"}
	ErrStoreInit   = &EngineError{Code: -32271, Message: "failed to initialize store"}
	ErrStoreQuery  = &EngineError{Code: -32272, Message: "store query failed"}
	ErrStoreWrite  = &EngineError{Code: -32273, Message: "store write failed"}
)

// ---- Config errors (-32290 to -32299) ----

var ErrConfigInvalid = &EngineError{Code: -32290, Message: "invalid configuration"}

// ---- Host / status errors (-32300 to -32309) ----

var ErrInvalidStatusChange = &EngineError{Code: -32300, Message: "invalid task status transition"}
