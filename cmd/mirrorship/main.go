package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/hatch-labs/mirrorship"
	"github.com/hatch-labs/mirrorship/internal/config"
	"github.com/hatch-labs/mirrorship/pkg/log"
	"github.com/hatch-labs/mirrorship/plugins/configwatcher"
)

const helpDescription = `
Capture record batches to local debug files and ship them to a remote
ingestion endpoint.

Highlights:
  - Mirrors batches to Avro and/or protobuf debug files with size-based
    rotation and bounded retention.
  - Retries transient transmission failures with capped exponential backoff.
  - Runs fully offline with --writer-disabled: batches are captured to disk
    and acknowledged without any network access.
  - Configure via file ($HOME/.mirrorship/config.toml), MIRRORSHIP_* env
    vars, or flags; flags win, then env, then file.

Input is newline-delimited JSON objects on stdin (or --input).
`

var exampleUsage = strings.TrimSpace(`
  tail -F events.ndjson | mirrorship --endpoint https://ingest.example.com --auth-key <key>
  mirrorship --input events.ndjson --writer-disabled --debug --output-dir ./debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.Default()

	var (
		cfgPath    string
		inputPath  string
		batchSize  int
		verbose    bool
		debugAvro  bool
		debugProto bool
		retained   int
	)

	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	root := &cobra.Command{
		Use:     "mirrorship",
		Short:   "Capture record batches to debug files and ship them to a remote endpoint",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zl = zl.Level(zerolog.DebugLevel)
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			// Granular flags are tri-state: only an explicitly set flag
			// overrides the legacy --debug umbrella.
			if changed["debug-avro"] {
				cfg.AvroEnabled = &debugAvro
			}
			if changed["debug-proto"] {
				cfg.ProtoEnabled = &debugProto
			}
			if changed["max-files-retained"] {
				cfg.MaxFilesRetained = &retained
			}

			// Load config file first (default $HOME/.mirrorship/config.toml),
			// then env, then flag overrides via the changed map.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}
			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := config.ApplyEnv(&cfg, changed); err != nil {
				return err
			}

			// Log configuration (masking the auth key)
			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			zl.Info().Interface("config", logCfg).Msg("configuration")

			logger := log.NewZerologAdapterWithLogger(zl)

			agent, err := mirrorship.New(cfg, mirrorship.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("create agent: %w", err)
			}
			defer agent.Close()

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			// The effective configuration is immutable; the watcher only
			// reports that a restart is needed to pick up file changes.
			if cfgFile != "" && config.FileExists(cfgFile) {
				watcher, err := configwatcher.New(cfgFile, logger)
				if err != nil {
					zl.Warn().Err(err).Msg("config watcher unavailable")
				} else {
					watcher.Start(ctx, func(path string) {
						zl.Warn().Str("path", path).Msg("config file changed; restart to apply")
					})
					defer watcher.Close()
				}
			}

			in := io.Reader(os.Stdin)
			if inputPath != "" {
				f, err := os.Open(inputPath)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			return run(ctx, agent, in, batchSize, zl)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.mirrorship/config.toml)")
	root.Flags().StringVar(&inputPath, "input", "", "NDJSON input file (default: stdin)")
	root.Flags().IntVar(&batchSize, "batch-size", 100, "records per batch")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.Flags().StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "base URL of the ingestion service")
	root.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")
	root.Flags().StringVar(&cfg.StreamName, "stream-name", cfg.StreamName, "logical destination stream")
	root.Flags().StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for debug files")

	root.Flags().BoolVar(&cfg.DebugEnabled, "debug", cfg.DebugEnabled, "enable all debug formats (legacy umbrella flag)")
	root.Flags().BoolVar(&debugAvro, "debug-avro", false, "enable the Avro debug format (overrides --debug)")
	root.Flags().BoolVar(&debugProto, "debug-proto", false, "enable the protobuf debug format (overrides --debug)")
	root.Flags().BoolVar(&cfg.WriterDisabled, "writer-disabled", cfg.WriterDisabled, "disable transmission; acknowledge batches locally")

	root.Flags().DurationVar(&cfg.FlushInterval, "flush-interval", cfg.FlushInterval, "max time captured data may sit in the write buffer")
	root.Flags().Int64Var(&cfg.MaxFileSize, "max-file-size", cfg.MaxFileSize, "rotate debug files at this size in bytes (0 disables rotation)")
	root.Flags().IntVar(&retained, "max-files-retained", 10, "rotated files kept per format (0 means unlimited)")

	root.Flags().IntVar(&cfg.RetryMaxAttempts, "retry-max-attempts", cfg.RetryMaxAttempts, "max transmission attempts per batch")
	root.Flags().DurationVar(&cfg.RetryBaseDelay, "retry-base-delay", cfg.RetryBaseDelay, "first retry delay")
	root.Flags().DurationVar(&cfg.RetryMaxDelay, "retry-max-delay", cfg.RetryMaxDelay, "retry delay cap")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout per attempt")

	if err := root.Execute(); err != nil {
		zl.Error().Err(err).Msg("mirrorship")
		os.Exit(1)
	}
}

// run reads NDJSON records, groups them into batches, and processes each
// batch through the agent. A malformed line is skipped with a warning; a
// batch that fails definitively is reported but does not stop the stream.
func run(ctx context.Context, agent *mirrorship.Agent, in io.Reader, batchSize int, zl zerolog.Logger) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var (
		pending   []mirrorship.Record
		processed int
		failed    int
	)

	submit := func() {
		if len(pending) == 0 {
			return
		}
		res := agent.Process(ctx, pending)
		processed++
		if !res.Ok() {
			failed++
			for format, err := range res.CaptureErrs {
				zl.Warn().Str("format", string(format)).Err(err).
					Str("batch", res.BatchID.String()).Msg("capture failed")
			}
			if res.SendErr != nil {
				zl.Error().Err(res.SendErr).
					Str("batch", res.BatchID.String()).Msg("delivery failed")
			}
		}
		pending = nil
	}

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			submit()
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec mirrorship.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			zl.Warn().Err(err).Msg("skipping malformed record")
			continue
		}
		pending = append(pending, rec)
		if len(pending) >= batchSize {
			submit()
		}
	}
	submit()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	zl.Info().Int("batches", processed).Int("failed", failed).Msg("done")
	if failed > 0 {
		return fmt.Errorf("%d of %d batches failed", failed, processed)
	}
	return nil
}
