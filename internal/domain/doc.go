// Package domain contains the core entities and value objects for mirrorship.
//
// This package represents the innermost layer of the pipeline. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only the types and error taxonomy shared by every other layer.
//
// # Entities
//
//   - [Record]: A single structured record (JSON-compatible field map)
//   - [Batch]: A group of records submitted together for capture and/or
//     transmission
//   - [Format]: One of the debug exchange formats mirrored to disk
//   - [Result]: The per-batch outcome, reporting capture and delivery
//     independently
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
