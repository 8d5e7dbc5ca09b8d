package domain

// Format identifies one of the debug exchange formats mirrored to disk.
// Each active format owns its own output stream, rotation counter, and
// retention ledger.
type Format string

const (
	// FormatAvro is the columnar exchange format (Avro OCF-style payloads).
	FormatAvro Format = "avro"

	// FormatProto is the row-oriented exchange format (length-prefixed
	// protobuf messages).
	FormatProto Format = "proto"
)

// Extension returns the file extension used for the format's debug files,
// including the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatAvro:
		return ".avro"
	case FormatProto:
		return ".pb"
	default:
		return ".bin"
	}
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}
