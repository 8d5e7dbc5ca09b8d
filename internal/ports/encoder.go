package ports

import "github.com/hatch-labs/mirrorship/internal/domain"

// Encoder serializes a batch into one exchange format. Implementations are
// swappable without changing the pipeline core; the debug writer and the
// transmission gate only need the encoded bytes.
//
// Encode must be free of side effects: a failed encode leaves no state
// behind, which is what lets the debug writer guarantee it never touches
// disk for a batch it cannot serialize.
type Encoder interface {
	// Format identifies which exchange format this encoder produces.
	Format() domain.Format

	// Encode serializes the batch. Failures should wrap the cause in a
	// *domain.EncodeError.
	Encode(batch *domain.Batch) ([]byte, error)
}
