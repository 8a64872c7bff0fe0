package handlers

import (
	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
	"github.com/codecrafters-io/kafka-broker-go/internal/metadata"
)

// topicAuthorizedOperations is the fixed bitmask the canonical client
// expects in this field; see DESIGN.md Open Question 1.
const topicAuthorizedOperations = uint32(0x00000DF8)

type describeRequest struct {
	topics                 []string
	responsePartitionLimit int32
	cursor                 uint8
}

// DescribeTopicPartitions builds the DescribeTopicPartitions (key=75)
// response body for version 0. Topics are answered in request order,
// never sorted or deduplicated.
func DescribeTopicPartitions(apiVersion int16, body []byte, snap *metadata.Snapshot) []byte {
	if apiVersion != 0 {
		return codec.AppendInt16(nil, ErrUnsupportedVersion)
	}

	req := parseDescribeRequest(body)

	out := codec.AppendInt32(nil, 0) // throttle_time_ms
	out = codec.AppendUVarint(out, uint64(len(req.topics)+1))

	for _, name := range req.topics {
		topic, exists := snap.FindTopicByName(name)
		if !exists {
			out = codec.AppendInt16(out, ErrUnknownTopicOrPartition)
			out = codec.AppendCompactString(out, name)
			out = append(out, make([]byte, 16)...) // topic_id: unknown
			out = append(out, 0x00)                // is_internal
			out = codec.AppendUVarint(out, 1)       // empty partitions array
		} else {
			out = codec.AppendInt16(out, ErrNone)
			out = codec.AppendCompactString(out, name)
			out = codec.AppendUUID(out, topic.UUID)
			out = append(out, 0x00) // is_internal

			partitions := snap.PartitionsForTopic(topic.UUID)
			out = codec.AppendUVarint(out, uint64(len(partitions)+1))
			for idx, p := range partitions {
				out = codec.AppendInt16(out, ErrNone)
				out = codec.AppendInt32(out, int32(idx))
				out = codec.AppendUint32(out, p.LeaderID)
				out = codec.AppendUint32(out, p.LeaderEpoch)
				out = codec.AppendCompactUint32Array(out, p.ReplicaNodes)
				out = codec.AppendCompactUint32Array(out, p.ISRNodes)
				out = codec.AppendUVarint(out, 1) // eligible_leader_replicas: empty
				out = codec.AppendUVarint(out, 1) // last_known_elr: empty
				out = codec.AppendUVarint(out, 1) // offline_replicas: empty
				out = codec.AppendUVarint(out, 0) // partition tag buffer
			}
		}

		out = codec.AppendUint32(out, topicAuthorizedOperations)
		out = codec.AppendUVarint(out, 0) // topic tag buffer
	}

	out = append(out, 0xFF)            // next_cursor: null
	out = codec.AppendUVarint(out, 0) // tag buffer
	return out
}

func parseDescribeRequest(body []byte) describeRequest {
	r := codec.NewReader(body)
	req := describeRequest{}

	n := r.UVarint()
	if n > 0 {
		req.topics = make([]string, 0, n-1)
		for i := uint64(0); i < n-1; i++ {
			req.topics = append(req.topics, r.CompactString())
			_ = r.UVarint() // per-topic tag buffer
		}
	}

	req.responsePartitionLimit = r.Int32()
	req.cursor = r.Uint8()
	_ = r.UVarint() // trailing tag buffer

	return req
}
