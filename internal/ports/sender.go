package ports

import (
	"context"

	"github.com/hatch-labs/mirrorship/internal/domain"
)

// Sender transmits an encoded batch to the remote ingestion endpoint.
//
// Implementations must classify every failure by wrapping it in a
// *domain.SendError with the Transient flag set appropriately; errors left
// unclassified are treated as permanent by the transmission gate. Senders
// do not retry internally — the gate owns the retry policy.
type Sender interface {
	Transmit(ctx context.Context, payload []byte, meta SendMetadata) (domain.Ack, error)
}

// SendMetadata provides context for one send operation. This information is
// included in HTTP headers for server-side tracking and idempotency.
type SendMetadata struct {
	// Endpoint is the base URL of the ingestion service.
	Endpoint string

	// AuthKey is the bearer token for the ingestion service.
	AuthKey string

	// StreamName is the logical destination stream.
	StreamName string

	// BatchID is the batch's idempotency key, stable across retries.
	BatchID string

	// Hostname is the producing agent's hostname.
	Hostname string

	// OSArch is the operating system and architecture (e.g., "linux/amd64").
	OSArch string
}
