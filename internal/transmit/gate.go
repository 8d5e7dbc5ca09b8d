// Package transmit decides, per batch, whether to forward to the remote
// sender or short-circuit to a synthetic success, and wraps the real call
// in a bounded retry policy.
package transmit

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/metrics"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// Gate is the single point where the pipeline touches the network. When
// transmission is disabled the gate returns a synthetic acknowledgement
// without calling the sender, checking credentials, or doing any retry
// bookkeeping.
type Gate struct {
	disabled bool
	policy   config.RetryPolicy
	sender   ports.Sender
	meta     ports.SendMetadata
	logger   log.Logger
	metrics  *metrics.Metrics

	// sleep is the suspension primitive for retry waits; patched in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGate builds the gate from resolved configuration.
func NewGate(cfg config.Effective, sender ports.Sender, logger log.Logger, m *metrics.Metrics) *Gate {
	return &Gate{
		disabled: cfg.WriterDisabled,
		policy:   cfg.Retry,
		sender:   sender,
		meta: ports.SendMetadata{
			Endpoint:   cfg.Endpoint,
			AuthKey:    cfg.AuthKey,
			StreamName: cfg.BaseName,
			Hostname:   hostname(),
			OSArch:     runtime.GOOS + "/" + runtime.GOARCH,
		},
		logger:  logger,
		metrics: m,
		sleep:   sleepCtx,
	}
}

// Send delivers the encoded batch under the retry policy, or returns a
// synthetic acknowledgement immediately when transmission is disabled.
//
// Transient failures are retried with capped exponential backoff until
// MaxAttempts is exhausted; permanent and unclassified failures surface
// immediately. Cancellation during a retry wait aborts the remaining
// attempts with ErrSendCanceled.
func (g *Gate) Send(ctx context.Context, batch *domain.Batch, payload []byte) (domain.Ack, error) {
	if g.disabled {
		g.metrics.ShortCircuits.Inc()
		return domain.Ack{BatchID: batch.ID, ShortCircuit: true}, nil
	}

	meta := g.meta
	meta.BatchID = batch.ID.String()

	bo := newBackoff(g.policy.BaseDelay, g.policy.MaxDelay)
	var lastErr error

	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		g.metrics.SendAttempts.Inc()

		ack, err := g.sender.Transmit(ctx, payload, meta)
		if err == nil {
			ack.BatchID = batch.ID
			ack.Attempts = attempt
			g.metrics.BatchesDelivered.Inc()
			return ack, nil
		}

		if !domain.IsTransient(err) {
			g.metrics.SendFailures.Inc()
			return domain.Ack{}, err
		}
		lastErr = err

		if attempt == g.policy.MaxAttempts {
			break
		}

		wait := bo.Next()
		g.logger.Warn("transient send failure, backing off",
			log.String("batch", meta.BatchID),
			log.Int("attempt", attempt),
			log.Duration("wait", wait),
			log.Err(err))

		if serr := g.sleep(ctx, wait); serr != nil {
			g.metrics.SendFailures.Inc()
			return domain.Ack{}, fmt.Errorf("%w: %v", domain.ErrSendCanceled, serr)
		}
		g.metrics.SendRetries.Inc()
	}

	g.metrics.SendFailures.Inc()
	return domain.Ack{}, fmt.Errorf("%w after %d attempts: %w",
		domain.ErrRetryExhausted, g.policy.MaxAttempts, lastErr)
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
