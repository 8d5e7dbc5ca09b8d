package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Raw but uses strings for durations to make TOML
// friendly, and pointers where absence matters.
type FileConfig struct {
	Endpoint         string `toml:"endpoint"`
	AuthKey          string `toml:"auth_key"`
	StreamName       string `toml:"stream_name"`
	DebugEnabled     *bool  `toml:"debug_enabled"`
	AvroEnabled      *bool  `toml:"debug_avro_enabled"`
	ProtoEnabled     *bool  `toml:"debug_proto_enabled"`
	OutputDir        string `toml:"output_dir"`
	FlushInterval    string `toml:"flush_interval"`
	MaxFileSize      int64  `toml:"max_file_size"`
	MaxFilesRetained *int   `toml:"max_files_retained"`
	WriterDisabled   *bool  `toml:"writer_disabled"`
	RetryMaxAttempts int    `toml:"retry_max_attempts"`
	RetryBaseDelay   string `toml:"retry_base_delay"`
	RetryMaxDelay    string `toml:"retry_max_delay"`
	HTTPTimeout      string `toml:"http_timeout"`
}

// LoadFileConfig reads and parses a TOML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.mirrorship/config.toml if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mirrorship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Raw struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Raw, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("stream-name", fc.StreamName, &cfg.StreamName)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)

	s.setBool("debug", fc.DebugEnabled, &cfg.DebugEnabled)
	s.setBoolPtr("debug-avro", fc.AvroEnabled, &cfg.AvroEnabled)
	s.setBoolPtr("debug-proto", fc.ProtoEnabled, &cfg.ProtoEnabled)
	s.setBool("writer-disabled", fc.WriterDisabled, &cfg.WriterDisabled)

	if err := s.setDuration("flush-interval", fc.FlushInterval, &cfg.FlushInterval); err != nil {
		return err
	}
	s.setInt64("max-file-size", fc.MaxFileSize, &cfg.MaxFileSize)
	s.setIntPtr("max-files-retained", fc.MaxFilesRetained, &cfg.MaxFilesRetained)

	s.setInt("retry-max-attempts", fc.RetryMaxAttempts, &cfg.RetryMaxAttempts)
	if err := s.setDuration("retry-base-delay", fc.RetryBaseDelay, &cfg.RetryBaseDelay); err != nil {
		return err
	}
	if err := s.setDuration("retry-max-delay", fc.RetryMaxDelay, &cfg.RetryMaxDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
