package mirrorship

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hatch-labs/mirrorship/internal/ports"
	"github.com/hatch-labs/mirrorship/pkg/log"
)

// Re-exported interfaces for dependency injection.
type (
	// HTTPClient abstracts HTTP transport; *http.Client satisfies it.
	HTTPClient = ports.HTTPClient

	// Sender transmits an encoded batch to the remote endpoint.
	Sender = ports.Sender

	// Encoder serializes a batch into one exchange format.
	Encoder = ports.Encoder

	// Logger is the structured logging interface.
	Logger = log.Logger
)

// Option configures optional behavior of an Agent.
type Option func(*options)

// options holds the optional configuration for an Agent.
type options struct {
	httpClient  ports.HTTPClient
	logger      log.Logger
	sender      ports.Sender
	encoders    []ports.Encoder
	wireEncoder ports.Encoder
	registerer  prometheus.Registerer
}

// defaultOptions returns options with sensible defaults: a no-op logger and
// an isolated metrics registry.
func defaultOptions(client *http.Client) options {
	return options{
		httpClient: client,
		logger:     log.NewNoopLogger(),
		registerer: prometheus.NewRegistry(),
	}
}

// WithHTTPClient sets a custom HTTP client for the default sender.
// If not provided, a client with the configured timeout is used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger. If not provided, logs are discarded.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSender replaces the HTTP sender entirely. The retry policy and the
// transmission-disabled short circuit still apply around the given sender.
func WithSender(sender Sender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

// WithEncoders replaces the debug-format encoders. Every format enabled in
// the configuration must have an encoder whose Format matches it; the
// defaults cover FormatAvro and FormatProto.
func WithEncoders(encoders ...Encoder) Option {
	return func(o *options) {
		o.encoders = encoders
	}
}

// WithWireEncoder replaces the encoder that produces the network payload.
// The default is the protobuf encoder.
func WithWireEncoder(enc Encoder) Option {
	return func(o *options) {
		o.wireEncoder = enc
	}
}

// WithMetricsRegisterer registers the pipeline's Prometheus collectors
// against the given registerer instead of an isolated throwaway registry.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
