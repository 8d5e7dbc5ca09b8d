package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/hatch-labs/mirrorship/internal/capture"
	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/metrics"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/internal/transmit"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

type stubEncoder struct {
	format  domain.Format
	payload []byte
	err     error
}

func (s *stubEncoder) Format() domain.Format { return s.format }

func (s *stubEncoder) Encode(*domain.Batch) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

type countingSender struct {
	calls int
	err   error
}

func (c *countingSender) Transmit(context.Context, []byte, ports.SendMetadata) (domain.Ack, error) {
	c.calls++
	return domain.Ack{}, c.err
}

func testCfg(t *testing.T, disabled bool) config.Effective {
	return config.Effective{
		Endpoint:       "https://ingest.example.com",
		AuthKey:        "key",
		BaseName:       "orders",
		AvroEnabled:    true,
		OutputDir:      t.TempDir(),
		FlushInterval:  time.Hour,
		WriterDisabled: disabled,
		Retry: config.RetryPolicy{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			MaxDelay:    time.Millisecond,
		},
	}
}

func newTestPipeline(t *testing.T, cfg config.Effective, captureEnc, wire ports.Encoder, sender ports.Sender) *Pipeline {
	t.Helper()
	logger := log.NewNoopLogger()
	m := metrics.NewNop()

	writer, err := capture.NewWriter(cfg, []ports.Encoder{captureEnc}, logger, m)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	gate := transmit.NewGate(cfg, sender, logger, m)
	return New(cfg, writer, gate, wire, logger)
}

func dirEntries(t *testing.T, dir string) int {
	t.Helper()
	ents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0
		}
		t.Fatalf("read dir: %v", err)
	}
	return len(ents)
}

func TestProcessCaptureAndDeliver(t *testing.T) {
	cfg := testCfg(t, false)
	sender := &countingSender{}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, payload: []byte("disk")},
		&stubEncoder{format: domain.FormatProto, payload: []byte("wire")},
		sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch([]domain.Record{{"k": "v"}}))
	if !res.Ok() {
		t.Fatalf("Result not ok: %+v", res)
	}
	if res.Ack.Attempts != 1 || res.Ack.ShortCircuit {
		t.Errorf("Ack = %+v", res.Ack)
	}
	if sender.calls != 1 {
		t.Errorf("sender calls = %d, want 1", sender.calls)
	}
	if err := p.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if n := dirEntries(t, cfg.OutputDir); n != 1 {
		t.Errorf("debug files = %d, want 1", n)
	}
}

func TestProcessWriterDisabledNeverTouchesNetwork(t *testing.T) {
	cfg := testCfg(t, true)
	sender := &countingSender{}
	wire := &stubEncoder{format: domain.FormatProto, err: errors.New("wire encoder must not run")}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, payload: []byte("disk")},
		wire, sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch([]domain.Record{{"k": "v"}}))
	if !res.Ok() {
		t.Fatalf("Result not ok: %+v", res)
	}
	if !res.Ack.ShortCircuit {
		t.Error("ShortCircuit = false, want true")
	}
	if sender.calls != 0 {
		t.Errorf("sender calls = %d, want 0", sender.calls)
	}
}

func TestProcessCaptureFailureDoesNotBlockDelivery(t *testing.T) {
	cfg := testCfg(t, false)
	sender := &countingSender{}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, err: errors.New("disk full")},
		&stubEncoder{format: domain.FormatProto, payload: []byte("wire")},
		sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch([]domain.Record{{"k": "v"}}))
	if res.Mirrored() {
		t.Error("Mirrored() = true, want capture failure reported")
	}
	if !res.Delivered {
		t.Error("Delivered = false, want capture failure to not block delivery")
	}
	if res.CaptureErrs[domain.FormatAvro] == nil {
		t.Error("missing avro capture error")
	}
}

func TestProcessSendFailureReportedIndependently(t *testing.T) {
	cfg := testCfg(t, false)
	sender := &countingSender{err: &domain.SendError{Err: errors.New("401")}}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, payload: []byte("disk")},
		&stubEncoder{format: domain.FormatProto, payload: []byte("wire")},
		sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch([]domain.Record{{"k": "v"}}))
	if !res.Mirrored() {
		t.Errorf("Mirrored() = false: %v", res.CaptureErrs)
	}
	if res.Delivered {
		t.Error("Delivered = true, want send failure")
	}
	if res.SendErr == nil {
		t.Error("SendErr = nil")
	}
}

func TestProcessWireEncodeFailureSkipsSend(t *testing.T) {
	cfg := testCfg(t, false)
	sender := &countingSender{}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, payload: []byte("disk")},
		&stubEncoder{format: domain.FormatProto, err: errors.New("bad value")},
		sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch([]domain.Record{{"k": "v"}}))
	if res.Delivered {
		t.Error("Delivered = true, want encode failure")
	}
	if res.SendErr == nil {
		t.Error("SendErr = nil")
	}
	if sender.calls != 0 {
		t.Errorf("sender calls = %d, want 0 for unencodable batch", sender.calls)
	}
}

func TestProcessEmptyBatchIsNoOp(t *testing.T) {
	cfg := testCfg(t, false)
	sender := &countingSender{}
	p := newTestPipeline(t, cfg,
		&stubEncoder{format: domain.FormatAvro, payload: []byte("disk")},
		&stubEncoder{format: domain.FormatProto, payload: []byte("wire")},
		sender)
	defer p.Close()

	res := p.Process(context.Background(), domain.NewBatch(nil))
	if !res.Ok() {
		t.Fatalf("Result not ok: %+v", res)
	}
	if sender.calls != 0 {
		t.Errorf("sender calls = %d, want 0", sender.calls)
	}
	if n := dirEntries(t, cfg.OutputDir); n != 0 {
		t.Errorf("debug files = %d, want 0", n)
	}
}
