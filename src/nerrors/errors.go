package nerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// Persona configuration errors
	ErrPersonaNotFound = errors.New("persona not found")
	ErrConfigMalformed = errors.New("persona configuration malformed")
	ErrTemplateMissing = errors.New("dialogue template missing")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")

	// History errors
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrDatabaseQuery      = errors.New("database query failed")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
	ErrOutOfRange      = errors.New("value out of acceptable range")
)

// UnknownKeyError is returned when a caller supplies a label that does not
// exist in one of the persona lookup tables (familiarity tiers, conversation
// contexts, emotional states, operational modes). The same input always
// produces the same error value shape, so callers can match with errors.As.
type UnknownKeyError struct {
	Table string // lookup table name, e.g. "familiarity_tier"
	Key   string // the unrecognized label
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Table, e.Key)
}

func (e *UnknownKeyError) Unwrap() error {
	return ErrInvalidInput
}

// NewUnknownKey creates an UnknownKeyError for a lookup table miss.
func NewUnknownKey(table, key string) error {
	return &UnknownKeyError{Table: table, Key: key}
}

// DatabaseError represents a history store operation error with context
type DatabaseError struct {
	Op    string // Operation that failed (e.g., "insert", "query")
	Table string // Table involved
	Err   error  // Underlying error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s operation on %s: %v", e.Op, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new database error
func NewDatabaseError(op, table string, err error) error {
	return &DatabaseError{
		Op:    op,
		Table: table,
		Err:   err,
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s (value: %v): %s",
			e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// IsNotFound checks if error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonaNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsInvalidInput checks if error came from a caller-supplied bad value
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// WrapWithContext adds context to an error
func WrapWithContext(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
