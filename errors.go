package fixturekit

import (
	"errors"
	"fmt"

	"github.com/fixturekit/fixturekit/identity"
)

// Sentinel errors for common factory failure conditions.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrUndefinedEntity indicates identity resolution received a nil
	// entity reference. Aliased from the identity package so callers can
	// match it without importing both.
	ErrUndefinedEntity = identity.ErrUndefinedEntity

	// ErrUndefinedFactory indicates production was requested for an entity
	// key with no registered definition.
	ErrUndefinedFactory = errors.New("factory is not defined")

	// ErrUndefinedState indicates an activated state name has no
	// corresponding state function in the definition.
	ErrUndefinedState = errors.New("state is not defined")

	// ErrNestedResolution indicates a sub-factory held in an entity field
	// failed while producing its entity during nested-value resolution.
	ErrNestedResolution = errors.New("nested factory resolution failed")

	// ErrUnknownField indicates an override or build map named a field the
	// entity type does not declare.
	ErrUnknownField = errors.New("unknown entity field")

	// ErrInvalidCount indicates a negative count was passed to MakeMany.
	ErrInvalidCount = errors.New("invalid count")
)

// Error kinds categorize errors by their type.
const (
	// KindNotFound represents errors where a definition or state was not found.
	KindNotFound = "not_found"

	// KindValidation represents errors related to input validation.
	KindValidation = "validation"

	// KindResolution represents errors raised during nested-value resolution.
	KindResolution = "resolution"

	// KindInternal represents internal factory errors.
	KindInternal = "internal"
)

// Error is a structured error type that wraps underlying errors with
// additional context about the operation that failed and the category of
// error.
//
// Error implements the error interface and supports error unwrapping,
// making it compatible with errors.Is() and errors.As(). Generator, hook,
// state and map failures are never wrapped in an Error; they propagate
// unmodified through Make and MakeMany.
type Error struct {
	// Op is the operation that failed (e.g., "Registry.Define", "EntityFactory.Make").
	Op string

	// Kind categorizes the error (e.g., KindNotFound, KindValidation).
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context provides additional context about the error (optional),
	// such as the entity key or field name involved.
	Context map[string]any
}

// Error implements the error interface, returning a formatted message
// that includes the operation, kind, and underlying error.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fixturekit: %s: %s", e.Op, e.Kind)
	}

	if len(e.Context) > 0 {
		return fmt.Sprintf("fixturekit: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}

	return fmt.Sprintf("fixturekit: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error, allowing errors.Is() and
// errors.As() to work correctly with wrapped errors.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error matching for Error, allowing comparison based on
// the underlying error or on (Op, Kind) of another Error.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	if t, ok := target.(*Error); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}

	return errors.Is(e.Err, target)
}

// WithContext returns a copy of the error with the provided context added.
func (e *Error) WithContext(ctx map[string]any) *Error {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any)
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewNotFoundError creates a new Error with KindNotFound.
func NewNotFoundError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNotFound, Err: err}
}

// NewValidationError creates a new Error with KindValidation.
func NewValidationError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindValidation, Err: err}
}

// NewResolutionError creates a new Error with KindResolution.
func NewResolutionError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindResolution, Err: err}
}

// NewInternalError creates a new Error with KindInternal.
func NewInternalError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindInternal, Err: err}
}

// newUndefinedFactoryError reports a missing definition, naming the key so
// tests can assert on the message.
func newUndefinedFactoryError(op, key string) *Error {
	return NewNotFoundError(op, fmt.Errorf("%w for entity %q", ErrUndefinedFactory, key))
}

// newUndefinedStateError reports a missing state, naming both the state
// and the entity key.
func newUndefinedStateError(op, key, state string) *Error {
	return NewNotFoundError(op, fmt.Errorf("state %q is not defined for entity %q: %w", state, key, ErrUndefinedState))
}
