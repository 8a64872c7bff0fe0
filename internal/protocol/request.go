// Package protocol implements request framing (read) and response
// framing (write) for the broker wire protocol.
package protocol

import (
	"io"

	"github.com/pkg/errors"

	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
)

// maxFrameSize guards against a corrupt or hostile length prefix
// forcing an unbounded allocation.
const maxFrameSize = 16 << 20

// ErrClientDisconnected is returned by ReadRequest when the peer
// closed the connection cleanly (a zero-byte read on the length
// prefix).
var ErrClientDisconnected = errors.New("client disconnected")

// Request is one decoded request: the fixed header plus the
// API-specific body, preserved as a byte slice for the handler.
type Request struct {
	APIKey        int16
	APIVersion    int16
	CorrelationID int32
	ClientID      string
	Body          []byte
}

// ReadRequest reads one framed request from r: a 4-byte length prefix
// followed by exactly that many bytes, then parses the fixed header
// (api_key, api_version, correlation_id, client_id, tag buffer) in
// order, leaving the remainder as Body.
func ReadRequest(r io.Reader) (*Request, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		if err == io.EOF {
			return nil, ErrClientDisconnected
		}
		return nil, errors.Wrap(err, "reading message size")
	}

	size := int32(codec.NewReader(sizeBuf[:]).Uint32())
	if size <= 0 || size > maxFrameSize {
		return nil, errors.Errorf("invalid message size %d", size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, "reading request payload")
	}
	if len(payload) < 8 {
		return nil, errors.New("request payload shorter than fixed header")
	}

	rd := codec.NewReader(payload)
	req := &Request{
		APIKey:        rd.Int16(),
		APIVersion:    rd.Int16(),
		CorrelationID: rd.Int32(),
	}

	clientIDLen := rd.Int16()
	if clientIDLen >= 0 && rd.CanRead(int(clientIDLen)) {
		req.ClientID = string(rd.Bytes(int(clientIDLen)))
	}

	tagLen := rd.UVarint()
	if tagLen > 0 && rd.CanRead(int(tagLen)) {
		rd.Skip(int(tagLen))
	}

	req.Body = rd.Rest()
	return req, nil
}
