package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the mirrorship domain.
// These errors are returned by the public API and can be checked with
// errors.Is.
var (
	// ErrMissingOutputDir is returned by configuration resolution when a
	// debug format is enabled without an output directory.
	ErrMissingOutputDir = errors.New("mirrorship: output_dir is required when a debug format is enabled")

	// ErrWriterDisabledRequiresDebug is returned when transmission is
	// disabled with every debug format off: the caller would get no
	// observable output at all.
	ErrWriterDisabledRequiresDebug = errors.New("mirrorship: at least one debug format must be enabled when transmission is disabled")

	// ErrMissingCredentials is returned when transmission is enabled and no
	// auth key was supplied. Credentials are optional when transmission is
	// disabled.
	ErrMissingCredentials = errors.New("mirrorship: auth_key is required when transmission is enabled")

	// ErrInvalidConfig is returned for any other configuration validation
	// failure.
	ErrInvalidConfig = errors.New("mirrorship: invalid configuration")

	// ErrRetryExhausted is returned when every retry attempt for a transient
	// transmission failure has been consumed.
	ErrRetryExhausted = errors.New("mirrorship: retry attempts exhausted")

	// ErrSendCanceled is returned when the context is canceled during a
	// retry wait, aborting the remaining attempts.
	ErrSendCanceled = errors.New("mirrorship: send canceled")
)

// EncodeError reports a batch that could not be serialized for a given
// format. It fails that format's capture for the current batch only; disk
// state is never touched before encoding succeeds.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// WriteError reports a disk failure while mirroring a batch. It is scoped
// to one format's stream and does not abort subsequent batches.
type WriteError struct {
	Format Format
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s debug file %s: %v", e.Format, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// SendError wraps a transmission failure with its retry classification.
// Senders must classify every error; anything not wrapped in a SendError
// is treated as permanent (fail fast rather than retry indefinitely).
type SendError struct {
	// Transient marks failures worth retrying (timeouts, service hiccups).
	Transient bool
	Err       error
}

func (e *SendError) Error() string {
	if e.Transient {
		return fmt.Sprintf("send (transient): %v", e.Err)
	}
	return fmt.Sprintf("send (permanent): %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// IsTransient reports whether err is classified as a transient send
// failure. Unclassified errors are permanent.
func IsTransient(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.Transient
}
