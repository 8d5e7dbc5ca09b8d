// Package httpsender implements the batch sender port over HTTP.
package httpsender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

const batchesEndpoint = "/v1/ingest/batches"

// maxErrorBody bounds how much of an error response body is kept for the
// error message.
const maxErrorBody = 4 << 10

// Sender implements ports.Sender using HTTP POST.
type Sender struct {
	client ports.HTTPClient
	logger log.Logger
}

// New creates an HTTP batch sender.
func New(client ports.HTTPClient, logger log.Logger) *Sender {
	return &Sender{
		client: client,
		logger: logger,
	}
}

// Transmit posts the encoded batch to the ingestion endpoint. Every failure
// is classified: network errors and retryable status codes (408, 429, 5xx)
// come back transient, other non-2xx responses permanent.
func (s *Sender) Transmit(ctx context.Context, payload []byte, meta ports.SendMetadata) (domain.Ack, error) {
	url := meta.Endpoint + batchesEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.Ack{}, &domain.SendError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+meta.AuthKey)
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Mirrorship-Stream", meta.StreamName)
	req.Header.Set("X-Mirrorship-Batch-Id", meta.BatchID)
	req.Header.Set("X-Agent-Hostname", meta.Hostname)
	req.Header.Set("X-Agent-OSArch", meta.OSArch)

	resp, err := s.client.Do(req)
	if err != nil {
		// Context cancellation is not a server condition worth retrying.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.Ack{}, &domain.SendError{Err: fmt.Errorf("send request: %w", err)}
		}
		return domain.Ack{}, &domain.SendError{Transient: true, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
		return domain.Ack{}, &domain.SendError{Transient: retryable(resp.StatusCode), Err: err}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	s.logger.Debug("batch accepted",
		log.String("batch", meta.BatchID),
		log.Int("status", resp.StatusCode))
	return domain.Ack{}, nil
}

// retryable reports whether a status code indicates a condition that may
// clear on its own.
func retryable(status int) bool {
	switch {
	case status == http.StatusRequestTimeout:
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status >= 500:
		return true
	}
	return false
}
