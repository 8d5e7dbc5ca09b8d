package capture

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/internal/domain"
	"github.com/hatch-labs/mirrorship/internal/metrics"
	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// now is the clock used for file naming and flush scheduling; patched in tests.
var now = time.Now

// corruptionMarker is appended when a write fails partway through a record,
// so a reader can tell a deliberately abandoned file from silent truncation.
var corruptionMarker = []byte("\n--mirrorship:truncated--\n")

// formatWriter owns the buffered output stream, rotation counter, and
// retention ledger for a single debug format.
type formatWriter struct {
	format        domain.Format
	enc           ports.Encoder
	dir           string
	base          string
	maxFileSize   int64
	flushInterval time.Duration
	ledger        *ledger
	logger        log.Logger
	metrics       *metrics.Metrics

	path      string
	file      *os.File
	buf       *bufio.Writer
	written   int64
	lastFlush time.Time
	lastStamp time.Time
}

// capture encodes the batch and appends it to the format's stream. The
// encode happens before any disk state is touched: a batch that cannot be
// serialized leaves no trace on disk.
func (fw *formatWriter) capture(batch *domain.Batch) error {
	payload, err := fw.enc.Encode(batch)
	if err != nil {
		var encErr *domain.EncodeError
		if errors.As(err, &encErr) {
			return err
		}
		return &domain.EncodeError{Format: fw.format, Err: err}
	}

	if fw.file == nil {
		if err := fw.open(); err != nil {
			return err
		}
	}

	if _, err := fw.buf.Write(payload); err != nil {
		path := fw.path
		fw.markCorrupt()
		return &domain.WriteError{Format: fw.format, Path: path, Err: err}
	}
	fw.written += int64(len(payload))

	if fw.maxFileSize > 0 && fw.written >= fw.maxFileSize {
		if err := fw.rotate(); err != nil {
			return err
		}
	}

	if now().Sub(fw.lastFlush) >= fw.flushInterval {
		if err := fw.flush(); err != nil {
			fw.markCorrupt()
			return err
		}
	}
	return nil
}

// open creates a fresh debug file and resets the rotation counter.
func (fw *formatWriter) open() error {
	if err := os.MkdirAll(fw.dir, 0o755); err != nil {
		return &domain.WriteError{Format: fw.format, Path: fw.dir, Err: err}
	}
	path := stampedPath(fw.dir, fw.base, fw.format.Extension(), fw.nextStamp())
	f, err := os.Create(path)
	if err != nil {
		return &domain.WriteError{Format: fw.format, Path: path, Err: err}
	}
	fw.path = path
	fw.file = f
	fw.buf = bufio.NewWriter(f)
	fw.written = 0
	fw.lastFlush = now()
	return nil
}

// rotate closes the current stream, opens its successor, and hands the old
// file to the retention ledger. The successor must be open and writable
// before any old file is deleted.
func (fw *formatWriter) rotate() error {
	oldPath := fw.path
	if err := fw.flush(); err != nil {
		fw.markCorrupt()
		return err
	}
	if err := fw.file.Close(); err != nil {
		fw.file = nil
		return &domain.WriteError{Format: fw.format, Path: oldPath, Err: err}
	}
	fw.file = nil

	newPath := rotatedPath(oldPath, fw.nextStamp())
	f, err := os.Create(newPath)
	if err != nil {
		return &domain.WriteError{Format: fw.format, Path: newPath, Err: err}
	}
	fw.path = newPath
	fw.file = f
	fw.buf = bufio.NewWriter(f)
	fw.written = 0
	fw.lastFlush = now()

	fw.ledger.register(oldPath)
	fw.ledger.enforce()
	fw.metrics.Rotations.WithLabelValues(fw.format.String()).Inc()

	fw.logger.Debug("rotated debug file",
		log.String("format", fw.format.String()),
		log.String("from", oldPath),
		log.String("to", newPath))
	return nil
}

// nextStamp returns a strictly monotonic rotation timestamp. Second-level
// resolution would otherwise let rapid rotations collide on a name.
func (fw *formatWriter) nextStamp() time.Time {
	t := now().UTC().Truncate(time.Second)
	if !t.After(fw.lastStamp) {
		t = fw.lastStamp.Add(time.Second)
	}
	fw.lastStamp = t
	return t
}

// flush drains the buffer to durable storage and resets the flush timer.
func (fw *formatWriter) flush() error {
	if fw.file == nil {
		return nil
	}
	if err := fw.buf.Flush(); err != nil {
		return &domain.WriteError{Format: fw.format, Path: fw.path, Err: err}
	}
	if err := fw.file.Sync(); err != nil {
		return &domain.WriteError{Format: fw.format, Path: fw.path, Err: err}
	}
	fw.lastFlush = now()
	return nil
}

// markCorrupt appends the corruption marker and abandons the stream, best
// effort. The marker goes straight to the file: after a failed write the
// bufio layer holds a sticky error and would refuse it. Dropping the stream
// lets the next capture open a fresh file instead of replaying the stale
// error.
func (fw *formatWriter) markCorrupt() {
	if fw.file == nil {
		return
	}
	if _, err := fw.file.Write(corruptionMarker); err == nil {
		_ = fw.file.Sync()
	}
	_ = fw.file.Close()
	fw.file = nil
	fw.buf = nil
}

// close flushes and releases the stream.
func (fw *formatWriter) close() error {
	if fw.file == nil {
		return nil
	}
	flushErr := fw.flush()
	closeErr := fw.file.Close()
	fw.file = nil
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return &domain.WriteError{Format: fw.format, Path: fw.path, Err: closeErr}
	}
	return nil
}

// Writer mirrors each batch to disk in every active debug format. A failure
// in one format never prevents the other format's write from being
// attempted.
type Writer struct {
	writers []*formatWriter
	logger  log.Logger
}

// NewWriter builds a writer for the formats active in cfg. Every active
// format must have a matching encoder. Retention ledgers are rebuilt from
// files already present in the output directory.
func NewWriter(cfg config.Effective, encoders []ports.Encoder, logger log.Logger, m *metrics.Metrics) (*Writer, error) {
	byFormat := make(map[domain.Format]ports.Encoder, len(encoders))
	for _, enc := range encoders {
		byFormat[enc.Format()] = enc
	}

	w := &Writer{logger: logger}
	for _, format := range cfg.ActiveFormats() {
		enc, ok := byFormat[format]
		if !ok {
			return nil, fmt.Errorf("%w: no encoder for format %q", domain.ErrInvalidConfig, format)
		}
		led := newLedger(format, cfg.MaxFilesRetained, logger, m)
		led.seed(cfg.OutputDir, cfg.BaseName, format.Extension())

		w.writers = append(w.writers, &formatWriter{
			format:        format,
			enc:           enc,
			dir:           cfg.OutputDir,
			base:          cfg.BaseName,
			maxFileSize:   cfg.MaxFileSize,
			flushInterval: cfg.FlushInterval,
			ledger:        led,
			logger:        logger,
			metrics:       m,
			lastStamp:     led.newestStamp(),
		})
	}
	return w, nil
}

// Active reports whether any format is being mirrored.
func (w *Writer) Active() bool {
	return len(w.writers) > 0
}

// Capture mirrors the batch in every active format and returns the
// per-format failures, if any. An empty or nil map means every format
// captured the batch.
func (w *Writer) Capture(batch *domain.Batch) map[domain.Format]error {
	var errs map[domain.Format]error
	for _, fw := range w.writers {
		if err := fw.capture(batch); err != nil {
			if errs == nil {
				errs = make(map[domain.Format]error)
			}
			errs[fw.format] = err
			fw.metrics.CaptureFailures.WithLabelValues(fw.format.String()).Inc()
			w.logger.Warn("debug capture failed",
				log.String("format", fw.format.String()),
				log.Err(err))
			continue
		}
		fw.metrics.BatchesCaptured.WithLabelValues(fw.format.String()).Inc()
	}
	return errs
}

// Flush forces every stream to durable storage. Intended for shutdown and
// checkpoint paths; per-batch flushing is interval-driven.
func (w *Writer) Flush() error {
	var firstErr error
	for _, fw := range w.writers {
		if err := fw.flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close flushes and closes every stream. The writer must not be used
// afterwards.
func (w *Writer) Close() error {
	var firstErr error
	for _, fw := range w.writers {
		if err := fw.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
