package config

import (
	"testing"
	"time"
)

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		changed map[string]bool
		check   func(t *testing.T, cfg Raw)
		wantErr bool
	}{
		{
			name: "applies valid env vars",
			envVars: map[string]string{
				"MIRRORSHIP_ENDPOINT":           "https://env.example.com",
				"MIRRORSHIP_STREAM_NAME":        "env-stream",
				"MIRRORSHIP_FLUSH_INTERVAL":     "10s",
				"MIRRORSHIP_MAX_FILE_SIZE":      "2048",
				"MIRRORSHIP_MAX_FILES_RETAINED": "3",
				"MIRRORSHIP_WRITER_DISABLED":    "true",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Raw) {
				if cfg.Endpoint != "https://env.example.com" {
					t.Errorf("Endpoint = %q", cfg.Endpoint)
				}
				if cfg.StreamName != "env-stream" {
					t.Errorf("StreamName = %q", cfg.StreamName)
				}
				if cfg.FlushInterval != 10*time.Second {
					t.Errorf("FlushInterval = %v", cfg.FlushInterval)
				}
				if cfg.MaxFileSize != 2048 {
					t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
				}
				if cfg.MaxFilesRetained == nil || *cfg.MaxFilesRetained != 3 {
					t.Errorf("MaxFilesRetained = %v", cfg.MaxFilesRetained)
				}
				if !cfg.WriterDisabled {
					t.Error("WriterDisabled = false")
				}
			},
		},
		{
			name: "granular env flags become tri-state values",
			envVars: map[string]string{
				"MIRRORSHIP_DEBUG_AVRO_ENABLED":  "true",
				"MIRRORSHIP_DEBUG_PROTO_ENABLED": "false",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Raw) {
				if cfg.AvroEnabled == nil || !*cfg.AvroEnabled {
					t.Errorf("AvroEnabled = %v, want true", cfg.AvroEnabled)
				}
				if cfg.ProtoEnabled == nil || *cfg.ProtoEnabled {
					t.Errorf("ProtoEnabled = %v, want false", cfg.ProtoEnabled)
				}
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"MIRRORSHIP_ENDPOINT":    "https://env.example.com",
				"MIRRORSHIP_STREAM_NAME": "env-stream",
			},
			changed: map[string]bool{"endpoint": true},
			check: func(t *testing.T, cfg Raw) {
				if cfg.Endpoint != "" {
					t.Errorf("Endpoint = %q, want flag value preserved", cfg.Endpoint)
				}
				if cfg.StreamName != "env-stream" {
					t.Errorf("StreamName = %q", cfg.StreamName)
				}
			},
		},
		{
			name: "returns error for invalid duration",
			envVars: map[string]string{
				"MIRRORSHIP_FLUSH_INTERVAL": "not-a-duration",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"MIRRORSHIP_RETRY_MAX_ATTEMPTS": "not-a-number",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			var cfg Raw
			err := ApplyEnv(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
