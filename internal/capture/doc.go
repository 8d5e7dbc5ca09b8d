// Package capture mirrors outgoing batches to local disk for offline
// inspection.
//
// One buffered stream is kept per active debug format. Streams are opened
// lazily on the first batch, rotated in place when they reach the
// configured size, and flushed on an interval. Rotated files are tracked in
// an in-memory ledger per format, oldest first; when a retention cap is
// set, the oldest files are deleted as soon as a rotation pushes the ledger
// past the cap.
//
// All state here is owned by a single pipeline instance and accessed
// strictly sequentially; sharing an output directory between instances is
// not supported.
package capture
