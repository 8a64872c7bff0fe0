package handlers

import "github.com/codecrafters-io/kafka-broker-go/internal/codec"

// apiVersionEntries is the exact, ordered set of supported APIs this
// broker advertises.
var apiVersionEntries = [...][3]int16{
	{APIKeyApiVersions, 0, 4},
	{APIKeyDescribeTopicPartitions, 0, 4},
	{APIKeyFetch, 0, 16},
}

// ApiVersions builds the ApiVersions (key=18) response body for the
// given request version. Versions 0 through 4 are supported; anything
// else yields the single error-code body.
func ApiVersions(apiVersion int16) []byte {
	if apiVersion < 0 || apiVersion > 4 {
		return codec.AppendInt16(nil, ErrUnsupportedVersion)
	}

	body := codec.AppendInt16(nil, ErrNone)
	body = codec.AppendUVarint(body, uint64(len(apiVersionEntries)+1))
	for _, e := range apiVersionEntries {
		body = codec.AppendInt16(body, e[0])
		body = codec.AppendInt16(body, e[1])
		body = codec.AppendInt16(body, e[2])
		body = codec.AppendUVarint(body, 0) // entry tag buffer
	}
	body = codec.AppendInt32(body, 0)  // throttle_time_ms
	body = codec.AppendUVarint(body, 0) // tag buffer
	return body
}
