package domain

import "github.com/google/uuid"

// Record is a single structured record. Field values are expected to be
// JSON-compatible (string, float64, bool, nil, nested maps and slices);
// encoders reject anything else with an EncodeError.
type Record map[string]any

// Batch is a group of records submitted together for capture and/or
// transmission. The ID is assigned at construction and carried through
// logs, debug files, and the idempotency header of the remote send.
type Batch struct {
	// ID uniquely identifies the batch across retries.
	ID uuid.UUID

	// Records holds the batch payload in submission order.
	Records []Record
}

// NewBatch creates a batch with a fresh ID wrapping the given records.
// The record slice is not copied; callers must not mutate it afterwards.
func NewBatch(records []Record) *Batch {
	return &Batch{
		ID:      uuid.New(),
		Records: records,
	}
}

// Size returns the number of records in the batch.
func (b *Batch) Size() int {
	return len(b.Records)
}

// Empty returns true if the batch has no records.
func (b *Batch) Empty() bool {
	return len(b.Records) == 0
}
