package protocol

import (
	"io"

	"github.com/pkg/errors"

	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
)

// apiKeyApiVersions is the one API whose response header predates the
// tagged-fields extension: its frame carries no trailing tag byte.
const apiKeyApiVersions = int16(18)

// WriteResponse frames and writes one response: message_size,
// correlation_id, an optional response-header tag byte (present for
// every api_key except ApiVersions), then body. The whole frame is
// flushed in a single write.
func WriteResponse(w io.Writer, apiKey int16, correlationID int32, body []byte) error {
	hasTagByte := apiKey != apiKeyApiVersions

	size := 4 + len(body)
	if hasTagByte {
		size++
	}

	frame := make([]byte, 0, 4+size)
	frame = codec.AppendInt32(frame, int32(size))
	frame = codec.AppendInt32(frame, correlationID)
	if hasTagByte {
		frame = append(frame, 0x00)
	}
	frame = append(frame, body...)

	_, err := w.Write(frame)
	return errors.Wrap(err, "writing response frame")
}
