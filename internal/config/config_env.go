package config

import "os"

// ApplyEnv applies configuration from environment variables (MIRRORSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnv(cfg *Raw, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", os.Getenv("MIRRORSHIP_ENDPOINT"), &cfg.Endpoint)
	s.setString("auth-key", os.Getenv("MIRRORSHIP_AUTH_KEY"), &cfg.AuthKey)
	s.setString("stream-name", os.Getenv("MIRRORSHIP_STREAM_NAME"), &cfg.StreamName)
	s.setString("output-dir", os.Getenv("MIRRORSHIP_OUTPUT_DIR"), &cfg.OutputDir)

	s.setBoolFromString("debug", os.Getenv("MIRRORSHIP_DEBUG_ENABLED"), &cfg.DebugEnabled)
	s.setBoolPtrFromString("debug-avro", os.Getenv("MIRRORSHIP_DEBUG_AVRO_ENABLED"), &cfg.AvroEnabled)
	s.setBoolPtrFromString("debug-proto", os.Getenv("MIRRORSHIP_DEBUG_PROTO_ENABLED"), &cfg.ProtoEnabled)
	s.setBoolFromString("writer-disabled", os.Getenv("MIRRORSHIP_WRITER_DISABLED"), &cfg.WriterDisabled)

	if err := s.setDuration("flush-interval", os.Getenv("MIRRORSHIP_FLUSH_INTERVAL"), &cfg.FlushInterval); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-file-size", os.Getenv("MIRRORSHIP_MAX_FILE_SIZE"), &cfg.MaxFileSize); err != nil {
		return err
	}
	if err := s.setIntPtrFromString("max-files-retained", os.Getenv("MIRRORSHIP_MAX_FILES_RETAINED"), &cfg.MaxFilesRetained); err != nil {
		return err
	}

	if err := s.setIntFromString("retry-max-attempts", os.Getenv("MIRRORSHIP_RETRY_MAX_ATTEMPTS"), &cfg.RetryMaxAttempts); err != nil {
		return err
	}
	if err := s.setDuration("retry-base-delay", os.Getenv("MIRRORSHIP_RETRY_BASE_DELAY"), &cfg.RetryBaseDelay); err != nil {
		return err
	}
	if err := s.setDuration("retry-max-delay", os.Getenv("MIRRORSHIP_RETRY_MAX_DELAY"), &cfg.RetryMaxDelay); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("MIRRORSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}

	return nil
}
