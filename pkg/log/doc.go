// Package log provides the structured logging façade used throughout
// mirrorship.
//
// The pipeline logs through the [Logger] interface so that embedding
// applications can route output into their own logging stack. Two
// implementations ship with the module:
//
//   - [ZerologAdapter]: console-friendly zerolog output (the default for
//     the CLI)
//   - [NoopLogger]: discards everything (the default for library use and
//     tests)
package log
