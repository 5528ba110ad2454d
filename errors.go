package mplayersdk

import "github.com/wagiedev/mplayer-sdk-go/internal/errors"

// Re-export error types from internal package

// MPlayerSDKError is the base interface for all SDK errors.
type MPlayerSDKError = errors.MPlayerSDKError

// ExecNotFoundError indicates the mplayer executable was not found.
type ExecNotFoundError = errors.ExecNotFoundError

// SpawnError indicates failure to start the mplayer process.
type SpawnError = errors.SpawnError

// ProcessError indicates the mplayer process exited abnormally.
type ProcessError = errors.ProcessError

// ValidationError indicates a runtime value did not match its declared type.
type ValidationError = errors.ValidationError

// RangeError indicates a property value fell outside its declared bounds.
type RangeError = errors.RangeError

// UnknownNameError indicates a property or command name absent from the
// discovered capability schema.
type UnknownNameError = errors.UnknownNameError

// ReadOnlyError indicates an attempt to set a read-only property.
type ReadOnlyError = errors.ReadOnlyError

// SchemaError indicates a capability schema document failed to parse or
// validate.
type SchemaError = errors.SchemaError

// AnswerError indicates the player answered a getter with an ANS_ERROR line.
type AnswerError = errors.AnswerError

// Re-export sentinel errors from internal package.
var (
	// ErrNotRunning indicates the player process is not running.
	ErrNotRunning = errors.ErrNotRunning

	// ErrDetached indicates the output stream has been detached.
	ErrDetached = errors.ErrDetached

	// ErrNoSchema indicates no capability schema is available because
	// introspection of the executable failed at construction time.
	ErrNoSchema = errors.ErrNoSchema
)
