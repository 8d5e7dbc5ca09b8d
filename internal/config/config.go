package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hatch-labs/mirrorship/internal/domain"
)

// Raw is the configuration input surface consumed by Resolve. Granular
// debug flags are tri-state pointers so "absent" can be told apart from an
// explicit false; the legacy DebugEnabled flag only matters when both
// granular flags are absent.
type Raw struct {
	// Endpoint is the base URL of the remote ingestion service.
	Endpoint string

	// AuthKey authenticates against the ingestion service. Required unless
	// WriterDisabled is true.
	AuthKey string

	// StreamName is the logical destination stream; it also names the debug
	// files on disk.
	StreamName string

	// DebugEnabled is the legacy umbrella flag: when true and neither
	// granular flag is supplied, both formats default to enabled.
	DebugEnabled bool

	// AvroEnabled and ProtoEnabled toggle the two debug formats
	// independently. An explicit value always wins over DebugEnabled.
	AvroEnabled  *bool
	ProtoEnabled *bool

	// OutputDir receives the debug files. Required when any format is
	// enabled.
	OutputDir string

	// FlushInterval bounds how long captured data may sit in the write
	// buffer before being flushed to durable storage.
	FlushInterval time.Duration

	// MaxFileSize triggers rotation once a debug file reaches this many
	// bytes. Zero disables rotation.
	MaxFileSize int64

	// MaxFilesRetained caps the rotated files kept per format. nil means
	// unlimited; so does an explicit 0 (a documented quirk of the
	// configuration contract, kept deliberately).
	MaxFilesRetained *int

	// WriterDisabled short-circuits transmission entirely: no network
	// calls, no credential checks. Requires at least one debug format.
	WriterDisabled bool

	// Retry policy for transient transmission failures.
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration

	// HTTPTimeout bounds each individual transmission attempt.
	HTTPTimeout time.Duration
}

// RetryPolicy is the resolved retry configuration for the transmission
// gate: the k-th wait is min(BaseDelay * 2^(k-1), MaxDelay).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Effective is the resolved configuration, immutable after Resolve. The
// legacy debug flag does not survive resolution; every component downstream
// sees only the canonical per-format booleans.
type Effective struct {
	Endpoint string
	AuthKey  string

	// BaseName is the sanitized stream name used for debug file naming.
	BaseName string

	AvroEnabled  bool
	ProtoEnabled bool
	OutputDir    string

	FlushInterval time.Duration
	MaxFileSize   int64

	// MaxFilesRetained is the per-format retention cap; 0 means unlimited.
	MaxFilesRetained int

	WriterDisabled bool
	Retry          RetryPolicy
	HTTPTimeout    time.Duration
}

// DebugActive reports whether any debug format is enabled.
func (e Effective) DebugActive() bool {
	return e.AvroEnabled || e.ProtoEnabled
}

// ActiveFormats returns the enabled formats in stable order.
func (e Effective) ActiveFormats() []domain.Format {
	var formats []domain.Format
	if e.AvroEnabled {
		formats = append(formats, domain.FormatAvro)
	}
	if e.ProtoEnabled {
		formats = append(formats, domain.FormatProto)
	}
	return formats
}

// Default returns a Raw config with default values. At minimum, callers
// must set Endpoint (and AuthKey unless WriterDisabled).
func Default() Raw {
	retained := 10
	return Raw{
		StreamName:       "records",
		FlushInterval:    5 * time.Second,
		MaxFilesRetained: &retained,
		RetryMaxAttempts: 5,
		RetryBaseDelay:   100 * time.Millisecond,
		RetryMaxDelay:    30 * time.Second,
		HTTPTimeout:      30 * time.Second,
		AuthKey:          os.Getenv("MIRRORSHIP_AUTH_KEY"),
	}
}

// Resolve merges the legacy and granular debug flags, validates cross-field
// constraints, and produces the immutable effective configuration.
//
// Precedence, evaluated per format:
//  1. An explicitly supplied granular flag wins.
//  2. Otherwise the legacy DebugEnabled flag decides.
//
// Resolve is a pure function: calling it twice on the same input yields
// identical results.
func Resolve(raw Raw) (Effective, error) {
	avro := raw.DebugEnabled
	if raw.AvroEnabled != nil {
		avro = *raw.AvroEnabled
	}
	proto := raw.DebugEnabled
	if raw.ProtoEnabled != nil {
		proto = *raw.ProtoEnabled
	}
	anyDebug := avro || proto

	if raw.Endpoint == "" {
		return Effective{}, fmt.Errorf("%w: endpoint is required", domain.ErrInvalidConfig)
	}
	if !strings.HasPrefix(raw.Endpoint, "https://") && !strings.HasPrefix(raw.Endpoint, "http://") {
		return Effective{}, fmt.Errorf("%w: endpoint must start with http:// or https://, got %q", domain.ErrInvalidConfig, raw.Endpoint)
	}
	if anyDebug && raw.OutputDir == "" {
		return Effective{}, domain.ErrMissingOutputDir
	}
	if raw.WriterDisabled && !anyDebug {
		return Effective{}, domain.ErrWriterDisabledRequiresDebug
	}
	if !raw.WriterDisabled && raw.AuthKey == "" {
		return Effective{}, domain.ErrMissingCredentials
	}
	if raw.FlushInterval <= 0 {
		return Effective{}, fmt.Errorf("%w: flush interval must be positive", domain.ErrInvalidConfig)
	}
	if raw.MaxFileSize < 0 {
		return Effective{}, fmt.Errorf("%w: max file size must not be negative", domain.ErrInvalidConfig)
	}
	if raw.MaxFilesRetained != nil && *raw.MaxFilesRetained < 0 {
		return Effective{}, fmt.Errorf("%w: max files retained must not be negative", domain.ErrInvalidConfig)
	}
	if raw.RetryMaxAttempts <= 0 {
		return Effective{}, fmt.Errorf("%w: retry max attempts must be positive", domain.ErrInvalidConfig)
	}
	if raw.RetryBaseDelay <= 0 {
		return Effective{}, fmt.Errorf("%w: retry base delay must be positive", domain.ErrInvalidConfig)
	}
	if raw.RetryMaxDelay < raw.RetryBaseDelay {
		return Effective{}, fmt.Errorf("%w: retry max delay (%v) must be >= base delay (%v)", domain.ErrInvalidConfig, raw.RetryMaxDelay, raw.RetryBaseDelay)
	}

	// The documented quirk: both absent and 0 mean unlimited retention.
	retained := 0
	if raw.MaxFilesRetained != nil {
		retained = *raw.MaxFilesRetained
	}

	httpTimeout := raw.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 30 * time.Second
	}

	return Effective{
		Endpoint:         strings.TrimRight(raw.Endpoint, "/"),
		AuthKey:          raw.AuthKey,
		BaseName:         sanitizeBaseName(raw.StreamName),
		AvroEnabled:      avro,
		ProtoEnabled:     proto,
		OutputDir:        raw.OutputDir,
		FlushInterval:    raw.FlushInterval,
		MaxFileSize:      raw.MaxFileSize,
		MaxFilesRetained: retained,
		WriterDisabled:   raw.WriterDisabled,
		Retry: RetryPolicy{
			MaxAttempts: raw.RetryMaxAttempts,
			BaseDelay:   raw.RetryBaseDelay,
			MaxDelay:    raw.RetryMaxDelay,
		},
		HTTPTimeout: httpTimeout,
	}, nil
}

// sanitizeBaseName makes a stream name safe for use as a file name stem.
func sanitizeBaseName(name string) string {
	if name == "" {
		return "records"
	}
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}
