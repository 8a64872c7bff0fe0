package handlers

import (
	"github.com/google/uuid"

	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
	"github.com/codecrafters-io/kafka-broker-go/internal/metadata"
)

type fetchRequest struct {
	topics []fetchTopic
}

type fetchTopic struct {
	topicID    uuid.UUID
	partitions []fetchPartition
}

type fetchPartition struct {
	partition          int32
	currentLeaderEpoch int32
	fetchOffset        int64
	lastFetchedEpoch   int32
	logStartOffset     int64
	partitionMaxBytes  int32
}

// Fetch builds the Fetch (key=1) response body for version 16. Every
// requested topic answers with exactly one partition (index 0),
// regardless of the partitions actually requested — max_wait_ms,
// min_bytes, and the forgotten-topics set are parsed but otherwise
// ignored; see DESIGN.md Open Question 3.
func Fetch(apiVersion int16, body []byte, snap *metadata.Snapshot) []byte {
	if apiVersion != 16 {
		return codec.AppendInt16(nil, ErrUnsupportedVersion)
	}

	req := parseFetchRequest(body)

	out := codec.AppendInt32(nil, 0) // throttle_time_ms
	out = codec.AppendInt16(out, ErrNone)
	out = codec.AppendInt32(out, 0) // session_id
	out = codec.AppendUVarint(out, uint64(len(req.topics)+1))

	for _, t := range req.topics {
		out = codec.AppendUUID(out, t.topicID)
		out = codec.AppendUVarint(out, 2) // one partition in the response
		out = codec.AppendInt32(out, 0)   // partition_index

		topic, exists := snap.FindTopicByUUID(t.topicID)
		if !exists {
			out = codec.AppendInt16(out, ErrUnknownTopicID)
			out = codec.AppendInt64(out, 0) // high_watermark
			out = codec.AppendInt64(out, 0) // last_stable_offset
			out = codec.AppendInt64(out, 0) // log_start_offset
			out = codec.AppendUVarint(out, 1) // aborted transactions: empty
			out = codec.AppendInt32(out, 0)   // preferred_read_replica
			out = codec.AppendUVarint(out, 1) // records: empty compact bytes
		} else {
			out = codec.AppendInt16(out, ErrNone)
			out = codec.AppendInt64(out, 0) // high_watermark
			out = codec.AppendInt64(out, 0) // last_stable_offset
			out = codec.AppendInt64(out, 0) // log_start_offset
			out = codec.AppendUVarint(out, 1) // aborted transactions: empty
			out = codec.AppendInt32(out, 0)   // preferred_read_replica

			records, err := snap.PartitionRecordBytes(topic.Name, 0)
			if err != nil {
				records = nil
			}
			out = codec.AppendCompactBytes(out, records)
		}

		out = codec.AppendUVarint(out, 0) // partition tag buffer
		out = codec.AppendUVarint(out, 0) // topic tag buffer
	}

	out = codec.AppendUVarint(out, 0) // tag buffer
	return out
}

func parseFetchRequest(body []byte) fetchRequest {
	r := codec.NewReader(body)

	_ = r.Int32() // max_wait_ms
	_ = r.Int32() // min_bytes
	_ = r.Int32() // max_bytes
	_ = r.Int8()  // isolation_level
	_ = r.Int32() // session_id
	_ = r.Int32() // session_epoch

	req := fetchRequest{}
	nTopics := r.UVarint()
	if nTopics > 0 {
		req.topics = make([]fetchTopic, 0, nTopics-1)
		for i := uint64(0); i < nTopics-1; i++ {
			t := fetchTopic{topicID: r.UUID()}

			nParts := r.UVarint()
			if nParts > 0 {
				t.partitions = make([]fetchPartition, 0, nParts-1)
				for j := uint64(0); j < nParts-1; j++ {
					p := fetchPartition{
						partition:          r.Int32(),
						currentLeaderEpoch: r.Int32(),
						fetchOffset:        r.Int64(),
						lastFetchedEpoch:   r.Int32(),
						logStartOffset:     r.Int64(),
						partitionMaxBytes:  r.Int32(),
					}
					_ = r.UVarint() // partition tag buffer
					t.partitions = append(t.partitions, p)
				}
			}
			_ = r.UVarint() // topic tag buffer
			req.topics = append(req.topics, t)
		}
	}

	nForgotten := r.UVarint()
	if nForgotten > 0 {
		for i := uint64(0); i < nForgotten-1; i++ {
			_ = r.UUID()
			nParts := r.UVarint()
			if nParts > 0 {
				for j := uint64(0); j < nParts-1; j++ {
					_ = r.Int32()
				}
			}
			_ = r.UVarint() // tag buffer
		}
	}

	_ = r.CompactString() // rack_id
	_ = r.UVarint()        // trailing tag buffer

	return req
}
