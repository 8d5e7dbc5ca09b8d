// Package pipeline wires capture and transmission into the per-batch
// processing sequence: mirror to disk first, then hand off to the gate.
package pipeline

import (
	"context"

	"github.com/hatch-labs/mirrorship/internal/capture"
	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/internal/transmit"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// Pipeline processes batches one at a time. Capture failures never block
// transmission and transmission failures never block capture; the result
// reports both outcomes independently.
type Pipeline struct {
	writer   *capture.Writer
	gate     *transmit.Gate
	wire     ports.Encoder
	disabled bool
	logger   log.Logger
}

// New assembles a pipeline from its resolved parts. wire is the encoder
// producing the network payload; it is never invoked while transmission is
// disabled.
func New(cfg config.Effective, writer *capture.Writer, gate *transmit.Gate, wire ports.Encoder, logger log.Logger) *Pipeline {
	return &Pipeline{
		writer:   writer,
		gate:     gate,
		wire:     wire,
		disabled: cfg.WriterDisabled,
		logger:   logger,
	}
}

// Process runs one batch through capture and the transmission gate and
// returns the definitive outcome. An empty batch is a no-op success: nothing
// touches disk or the network.
func (p *Pipeline) Process(ctx context.Context, batch *domain.Batch) domain.Result {
	res := domain.Result{BatchID: batch.ID}

	if batch.Empty() {
		res.Delivered = true
		res.Ack = domain.Ack{BatchID: batch.ID}
		return res
	}

	res.CaptureErrs = p.writer.Capture(batch)

	var payload []byte
	if !p.disabled {
		encoded, err := p.wire.Encode(batch)
		if err != nil {
			// An unencodable batch can never succeed on retry.
			res.SendErr = err
			return res
		}
		payload = encoded
	}

	ack, err := p.gate.Send(ctx, batch, payload)
	if err != nil {
		res.SendErr = err
		return res
	}
	res.Ack = ack
	res.Delivered = true

	p.logger.Debug("batch processed",
		log.String("batch", batch.ID.String()),
		log.Int("records", batch.Size()),
		log.Bool("short_circuit", ack.ShortCircuit))
	return res
}

// Flush forces buffered debug data to durable storage.
func (p *Pipeline) Flush() error {
	return p.writer.Flush()
}

// Close flushes and closes the debug streams. The pipeline must not be used
// afterwards.
func (p *Pipeline) Close() error {
	return p.writer.Close()
}
