// Package ports defines the interfaces (ports) that connect the pipeline
// to infrastructure adapters.
//
// Ports are the boundaries between the pipeline core and the outside world.
// They define what the pipeline needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Encoder]: Serializes a batch into one exchange format
//   - [Sender]: Transmits an encoded batch to the remote ingestion endpoint
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The pipeline layers (internal/capture, internal/transmit,
// internal/pipeline) depend only on these interfaces. Infrastructure
// adapters (internal/adapters) implement them with concrete code (Avro,
// protobuf, HTTP). This separation enables testing the pipeline with fakes
// and swapping formats or transports without touching the core.
package ports
