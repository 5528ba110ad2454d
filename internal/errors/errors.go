package errors

import (
	"errors"
	"fmt"
)

// MPlayerSDKError is the base interface for all SDK errors.
type MPlayerSDKError interface {
	error
	IsMPlayerSDKError() bool
}

// Compile-time verification that all error types implement MPlayerSDKError.
var (
	_ MPlayerSDKError = (*ExecNotFoundError)(nil)
	_ MPlayerSDKError = (*SpawnError)(nil)
	_ MPlayerSDKError = (*ProcessError)(nil)
	_ MPlayerSDKError = (*ValidationError)(nil)
	_ MPlayerSDKError = (*RangeError)(nil)
	_ MPlayerSDKError = (*UnknownNameError)(nil)
	_ MPlayerSDKError = (*ReadOnlyError)(nil)
	_ MPlayerSDKError = (*SchemaError)(nil)
	_ MPlayerSDKError = (*AnswerError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotRunning indicates the player process is not running.
	// The facade absorbs this into a silent no-op; it is surfaced only by
	// lower layers that need to distinguish the condition.
	ErrNotRunning = errors.New("player process not running")

	// ErrDetached indicates the output stream has been detached from its
	// broadcaster, so reads are no longer possible.
	ErrDetached = errors.New("output stream detached")

	// ErrNoSchema indicates no capability schema is available, typically
	// because introspection of the executable failed at construction time.
	ErrNoSchema = errors.New("no capability schema: introspection unavailable")
)

// ExecNotFoundError indicates the mplayer executable was not found.
type ExecNotFoundError struct {
	SearchedPaths []string
}

func (e *ExecNotFoundError) Error() string {
	return fmt.Sprintf("mplayer executable not found in: %v", e.SearchedPaths)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *ExecNotFoundError) IsMPlayerSDKError() bool { return true }

// SpawnError indicates failure to start the mplayer process.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn mplayer: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *SpawnError) IsMPlayerSDKError() bool { return true }

// ProcessError indicates the mplayer process exited abnormally.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mplayer process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("mplayer process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *ProcessError) IsMPlayerSDKError() bool { return true }

// ValidationError indicates a runtime value did not match its declared type.
// Position is the 1-based argument position, or 0 when the error refers to a
// property value rather than a command argument.
type ValidationError struct {
	Expected string
	Position int
}

func (e *ValidationError) Error() string {
	if e.Position > 0 {
		return fmt.Sprintf("expected %s for argument %d", e.Expected, e.Position)
	}

	return fmt.Sprintf("expected %s", e.Expected)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *ValidationError) IsMPlayerSDKError() bool { return true }

// RangeError indicates a property value fell outside its declared bounds.
type RangeError struct {
	Property string
	Value    any
	Min      *float64
	Max      *float64
}

func (e *RangeError) Error() string {
	if e.Min != nil && isBelow(e.Value, *e.Min) {
		return fmt.Sprintf("%s: value must be at least %g, got %v", e.Property, *e.Min, e.Value)
	}

	if e.Max != nil {
		return fmt.Sprintf("%s: value must be at most %g, got %v", e.Property, *e.Max, e.Value)
	}

	return fmt.Sprintf("%s: value %v out of range", e.Property, e.Value)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *RangeError) IsMPlayerSDKError() bool { return true }

func isBelow(v any, min float64) bool {
	switch n := v.(type) {
	case int:
		return float64(n) < min
	case float64:
		return n < min
	default:
		return false
	}
}

// UnknownNameError indicates a property or command name absent from the
// discovered capability schema.
type UnknownNameError struct {
	Kind string // "property" or "command"
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.Name)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *UnknownNameError) IsMPlayerSDKError() bool { return true }

// ReadOnlyError indicates an attempt to set a read-only property.
type ReadOnlyError struct {
	Property string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("property is read-only: %s", e.Property)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *ReadOnlyError) IsMPlayerSDKError() bool { return true }

// SchemaError indicates a capability schema document failed to parse or
// validate.
type SchemaError struct {
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid capability schema: %s: %v", e.Detail, e.Err)
	}

	return fmt.Sprintf("invalid capability schema: %s", e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *SchemaError) IsMPlayerSDKError() bool { return true }

// AnswerError indicates the player answered a getter with an ANS_ERROR line.
// Callers that only care about presence can treat it the same as "no value";
// the distinct type exists so the two conditions remain distinguishable.
type AnswerError struct {
	Message string
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("player returned error answer: %s", e.Message)
}

// IsMPlayerSDKError implements MPlayerSDKError.
func (e *AnswerError) IsMPlayerSDKError() bool { return true }
