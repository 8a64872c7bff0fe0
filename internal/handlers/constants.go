// Package handlers implements the per-API request bodies: ApiVersions,
// DescribeTopicPartitions, and Fetch. Each handler function takes the
// request's api_version (DescribeTopicPartitions and Fetch also take
// the request body and the current cluster snapshot) and returns the
// bytes to place in the response body — framing is the protocol
// package's job, not this one's.
package handlers

// API keys this broker dispatches on. Produce (key=0) is a Non-goal —
// the broker answers it through dispatch's unsupported-version
// default rather than carrying a dead constant for it.
const (
	APIKeyFetch                   = int16(1)
	APIKeyApiVersions             = int16(18)
	APIKeyDescribeTopicPartitions = int16(75)
)

// Error codes this broker ever encodes into a response body.
const (
	ErrNone                    = int16(0)
	ErrUnknownTopicOrPartition = int16(3)
	ErrUnsupportedVersion      = int16(35)
	ErrUnknownTopicID          = int16(100)
)
