package encoding

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hatch-labs/mirrorship/internal/domain"
)

// ProtoEncoder implements ports.Encoder for the protobuf debug format.
type ProtoEncoder struct{}

// NewProto creates a protobuf encoder.
func NewProto() *ProtoEncoder {
	return &ProtoEncoder{}
}

// Format returns the debug format this encoder produces.
func (*ProtoEncoder) Format() domain.Format {
	return domain.FormatProto
}

// Encode serializes each record as a length-delimited google.protobuf.Struct
// frame. The varint length prefix lets a reader split the stream back into
// records without out-of-band framing.
func (*ProtoEncoder) Encode(batch *domain.Batch) ([]byte, error) {
	var out []byte
	for i, rec := range batch.Records {
		st, err := structpb.NewStruct(rec)
		if err != nil {
			return nil, &domain.EncodeError{
				Format: domain.FormatProto,
				Err:    fmt.Errorf("record %d: %w", i, err),
			}
		}
		raw, err := proto.Marshal(st)
		if err != nil {
			return nil, &domain.EncodeError{
				Format: domain.FormatProto,
				Err:    fmt.Errorf("record %d: %w", i, err),
			}
		}
		out = protowire.AppendVarint(out, uint64(len(raw)))
		out = append(out, raw...)
	}
	return out, nil
}
