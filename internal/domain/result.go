package domain

import "github.com/google/uuid"

// Ack acknowledges a batch handled by the transmission gate.
type Ack struct {
	// BatchID echoes the batch the acknowledgement belongs to.
	BatchID uuid.UUID

	// Attempts is the number of transmission attempts consumed, 1-indexed.
	// Zero when the gate short-circuited.
	Attempts int

	// ShortCircuit is true for the synthetic success returned when
	// transmission is disabled; no network call was made.
	ShortCircuit bool
}

// Result is the definitive per-batch outcome. Capture failures and
// transmission failures are reported independently so the caller can tell
// "data wasn't mirrored" apart from "data wasn't delivered".
type Result struct {
	BatchID uuid.UUID

	// CaptureErrs maps each active format that failed to mirror to its
	// error. Formats that mirrored cleanly have no entry; an empty or nil
	// map means every active format captured the batch.
	CaptureErrs map[Format]error

	// Ack is valid only when Delivered is true.
	Ack Ack

	// Delivered is true when the gate returned success, including the
	// short-circuit path.
	Delivered bool

	// SendErr holds the transmission failure when Delivered is false.
	SendErr error
}

// Mirrored reports whether every active format captured the batch.
func (r Result) Mirrored() bool {
	return len(r.CaptureErrs) == 0
}

// Ok reports full success: mirrored everywhere and delivered (or
// short-circuited).
func (r Result) Ok() bool {
	return r.Mirrored() && r.Delivered
}
