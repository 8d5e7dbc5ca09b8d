// Package mirrorship is an embeddable capture-and-transmit pipeline for
// record batches. Each batch is optionally mirrored to local debug files
// (Avro and/or protobuf, with size-based rotation and bounded retention) and
// forwarded to a remote ingestion endpoint under a bounded retry policy.
// Transmission can be disabled entirely, in which case batches are
// acknowledged synthetically without any network access.
package mirrorship

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/hatch-labs/mirrorship/internal/adapters/encoding"
	"github.com/hatch-labs/mirrorship/internal/adapters/httpsender"
	"github.com/hatch-labs/mirrorship/internal/capture"
	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/metrics"
	"github.com/hatch-labs/mirrorship/internal/pipeline"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/internal/transmit"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// Re-exported domain types for embedding applications.
type (
	// Record is a single structured record with JSON-compatible values.
	Record = domain.Record

	// Batch groups records submitted together.
	Batch = domain.Batch

	// Result is the definitive per-batch outcome.
	Result = domain.Result

	// Ack acknowledges a handled batch.
	Ack = domain.Ack

	// Format identifies a debug mirror format.
	Format = domain.Format

	// Config is the configuration input surface. See DefaultConfig.
	Config = config.Raw
)

// The built-in debug mirror formats. Custom encoders supplied through
// WithEncoders declare which of these they produce.
const (
	FormatAvro  = domain.FormatAvro
	FormatProto = domain.FormatProto
)

// ErrClosed is returned for operations on an agent after Close.
var ErrClosed = errors.New("mirrorship: agent is closed")

// DefaultConfig returns a Config with default values. At minimum, callers
// must set Endpoint (and AuthKey unless WriterDisabled).
func DefaultConfig() Config {
	return config.Default()
}

// Agent is the embeddable pipeline instance. Create one with New, feed it
// batches with Process, and release its file handles with Close.
//
// An Agent is safe for use from one goroutine at a time; guard concurrent
// Process calls externally.
type Agent struct {
	cfg      config.Effective
	pipeline *pipeline.Pipeline
	logger   log.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
}

// New resolves the configuration and assembles an agent. Returns an error
// when the configuration is invalid.
func New(cfg Config, opts ...Option) (*Agent, error) {
	eff, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	o := defaultOptions(&http.Client{Timeout: eff.HTTPTimeout})
	for _, opt := range opts {
		opt(&o)
	}

	m := metrics.New(o.registerer)

	encoders := o.encoders
	if encoders == nil {
		encoders = []ports.Encoder{encoding.NewAvro(), encoding.NewProto()}
	}

	writer, err := capture.NewWriter(eff, encoders, o.logger, m)
	if err != nil {
		return nil, err
	}

	snd := o.sender
	if snd == nil {
		snd = httpsender.New(o.httpClient, o.logger)
	}
	gate := transmit.NewGate(eff, snd, o.logger, m)

	wire := o.wireEncoder
	if wire == nil {
		wire = encoding.NewProto()
	}

	return &Agent{
		cfg:      eff,
		pipeline: pipeline.New(eff, writer, gate, wire, o.logger),
		logger:   o.logger,
		metrics:  m,
	}, nil
}

// Process wraps the records in a fresh batch and runs it through the
// pipeline. The returned result reports capture and delivery outcomes
// independently; inspect Result.Ok for full success.
func (a *Agent) Process(ctx context.Context, records []Record) Result {
	return a.ProcessBatch(ctx, domain.NewBatch(records))
}

// ProcessBatch runs an already-constructed batch through the pipeline.
// Useful when the caller needs the batch ID before submission.
func (a *Agent) ProcessBatch(ctx context.Context, batch *Batch) Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return Result{BatchID: batch.ID, SendErr: ErrClosed}
	}
	return a.pipeline.Process(ctx, batch)
}

// Flush forces buffered debug data to durable storage.
func (a *Agent) Flush() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return a.pipeline.Flush()
}

// Close flushes and closes the debug streams. Close is idempotent.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.pipeline.Close()
}
