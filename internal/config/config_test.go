package config

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hatch-labs/mirrorship/internal/domain"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

// validRaw returns a Raw config that resolves cleanly, for tests that mutate
// one field at a time.
func validRaw() Raw {
	cfg := Default()
	cfg.Endpoint = "https://ingest.example.com"
	cfg.AuthKey = "test-key"
	cfg.OutputDir = "/tmp/debug"
	cfg.DebugEnabled = true
	return cfg
}

func TestResolveDebugPrecedence(t *testing.T) {
	tests := []struct {
		name      string
		legacy    bool
		avro      *bool
		proto     *bool
		wantAvro  bool
		wantProto bool
	}{
		{
			name:      "legacy enables both",
			legacy:    true,
			wantAvro:  true,
			wantProto: true,
		},
		{
			name:      "granular false overrides legacy true",
			legacy:    true,
			avro:      boolPtr(false),
			wantAvro:  false,
			wantProto: true,
		},
		{
			name:      "granular true overrides legacy false",
			legacy:    false,
			proto:     boolPtr(true),
			wantAvro:  false,
			wantProto: true,
		},
		{
			name:      "both granular set, legacy irrelevant",
			legacy:    false,
			avro:      boolPtr(true),
			proto:     boolPtr(false),
			wantAvro:  true,
			wantProto: false,
		},
		{
			name:      "explicit false is not absence",
			legacy:    true,
			avro:      boolPtr(false),
			proto:     boolPtr(false),
			wantAvro:  false,
			wantProto: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRaw()
			cfg.DebugEnabled = tt.legacy
			cfg.AvroEnabled = tt.avro
			cfg.ProtoEnabled = tt.proto

			eff, err := Resolve(cfg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if eff.AvroEnabled != tt.wantAvro {
				t.Errorf("AvroEnabled = %v, want %v", eff.AvroEnabled, tt.wantAvro)
			}
			if eff.ProtoEnabled != tt.wantProto {
				t.Errorf("ProtoEnabled = %v, want %v", eff.ProtoEnabled, tt.wantProto)
			}
		})
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Raw)
		wantErr error
	}{
		{
			name:    "missing endpoint",
			mutate:  func(c *Raw) { c.Endpoint = "" },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "endpoint without scheme",
			mutate:  func(c *Raw) { c.Endpoint = "ingest.example.com" },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "debug enabled without output dir",
			mutate:  func(c *Raw) { c.OutputDir = "" },
			wantErr: domain.ErrMissingOutputDir,
		},
		{
			name: "writer disabled without debug",
			mutate: func(c *Raw) {
				c.WriterDisabled = true
				c.DebugEnabled = false
			},
			wantErr: domain.ErrWriterDisabledRequiresDebug,
		},
		{
			name:    "missing auth key",
			mutate:  func(c *Raw) { c.AuthKey = "" },
			wantErr: domain.ErrMissingCredentials,
		},
		{
			name:    "non-positive flush interval",
			mutate:  func(c *Raw) { c.FlushInterval = 0 },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "negative max file size",
			mutate:  func(c *Raw) { c.MaxFileSize = -1 },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "negative retention",
			mutate:  func(c *Raw) { c.MaxFilesRetained = intPtr(-1) },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "non-positive retry attempts",
			mutate:  func(c *Raw) { c.RetryMaxAttempts = 0 },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name:    "non-positive base delay",
			mutate:  func(c *Raw) { c.RetryBaseDelay = 0 },
			wantErr: domain.ErrInvalidConfig,
		},
		{
			name: "max delay below base delay",
			mutate: func(c *Raw) {
				c.RetryBaseDelay = time.Second
				c.RetryMaxDelay = 500 * time.Millisecond
			},
			wantErr: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRaw()
			tt.mutate(&cfg)
			_, err := Resolve(cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveCredentialsWaivedWhenWriterDisabled(t *testing.T) {
	cfg := validRaw()
	cfg.AuthKey = ""
	cfg.WriterDisabled = true

	eff, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !eff.WriterDisabled {
		t.Error("WriterDisabled = false, want true")
	}
}

func TestResolveRetention(t *testing.T) {
	tests := []struct {
		name     string
		retained *int
		want     int
	}{
		{"absent means unlimited", nil, 0},
		{"explicit zero means unlimited", intPtr(0), 0},
		{"positive cap kept", intPtr(7), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRaw()
			cfg.MaxFilesRetained = tt.retained
			eff, err := Resolve(cfg)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if eff.MaxFilesRetained != tt.want {
				t.Errorf("MaxFilesRetained = %d, want %d", eff.MaxFilesRetained, tt.want)
			}
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	cfg := validRaw()
	cfg.AvroEnabled = boolPtr(true)
	cfg.MaxFileSize = 1024

	first, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve() not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestResolveNormalization(t *testing.T) {
	cfg := validRaw()
	cfg.Endpoint = "https://ingest.example.com/"
	cfg.StreamName = "orders.v2/prod"

	eff, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if eff.Endpoint != "https://ingest.example.com" {
		t.Errorf("Endpoint = %q, want trailing slash trimmed", eff.Endpoint)
	}
	if eff.BaseName != "orders_v2_prod" {
		t.Errorf("BaseName = %q, want sanitized stem", eff.BaseName)
	}
}

func TestActiveFormats(t *testing.T) {
	cfg := validRaw()
	cfg.DebugEnabled = false
	cfg.AvroEnabled = boolPtr(true)
	cfg.WriterDisabled = false

	eff, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	formats := eff.ActiveFormats()
	if len(formats) != 1 || formats[0] != domain.FormatAvro {
		t.Errorf("ActiveFormats() = %v, want [avro]", formats)
	}
	if !eff.DebugActive() {
		t.Error("DebugActive() = false, want true")
	}
}
