// Package encoding provides the debug-format encoders. Each encoder turns a
// batch into the byte payload appended to that format's debug file.
package encoding

import (
	"encoding/json"
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/hatch-labs/mirrorship/internal/domain"
)

// batchSchema serializes a batch as its identifier plus an array of records.
// Field values are JSON-encoded bytes rather than Avro unions, so records
// with arbitrary shapes all fit one schema.
var batchSchema = avro.MustParse(`{
	"type": "record",
	"name": "record_batch",
	"namespace": "mirrorship",
	"fields": [
		{"name": "id", "type": "string"},
		{"name": "records", "type": {
			"type": "array",
			"items": {"type": "map", "values": "bytes"}
		}}
	]
}`)

// AvroEncoder implements ports.Encoder for the Avro debug format.
type AvroEncoder struct{}

// NewAvro creates an Avro encoder.
func NewAvro() *AvroEncoder {
	return &AvroEncoder{}
}

// Format returns the debug format this encoder produces.
func (*AvroEncoder) Format() domain.Format {
	return domain.FormatAvro
}

// Encode serializes the batch against batchSchema.
func (*AvroEncoder) Encode(batch *domain.Batch) ([]byte, error) {
	records := make([]map[string][]byte, 0, len(batch.Records))
	for i, rec := range batch.Records {
		fields := make(map[string][]byte, len(rec))
		for name, value := range rec {
			raw, err := json.Marshal(value)
			if err != nil {
				return nil, &domain.EncodeError{
					Format: domain.FormatAvro,
					Err:    fmt.Errorf("record %d field %q: %w", i, name, err),
				}
			}
			fields[name] = raw
		}
		records = append(records, fields)
	}

	payload, err := avro.Marshal(batchSchema, map[string]any{
		"id":      batch.ID.String(),
		"records": records,
	})
	if err != nil {
		return nil, &domain.EncodeError{Format: domain.FormatAvro, Err: err}
	}
	return payload, nil
}
