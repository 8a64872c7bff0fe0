// Package metadata parses the on-disk cluster-metadata log into an
// in-memory, read-only snapshot and reads partition segment files
// verbatim for the Fetch handler.
package metadata

import "github.com/google/uuid"

// Batch is one record batch from the cluster metadata log.
type Batch struct {
	BatchOffset          uint64
	BatchLength          uint32
	PartitionLeaderEpoch uint32
	MagicByte            uint8
	CRC                  uint32
	Attributes           uint16
	LastOffsetDelta      uint32
	BaseTimestamp        uint64
	MaxTimestamp         uint64
	ProducerID           int64
	ProducerEpoch        int16
	BaseSequence         int32
	RecordCount          uint32
	Records              []Record
}

// Record is one record inside a Batch.
type Record struct {
	RecordLength   int64
	Attributes     uint8
	TimestampDelta int64
	OffsetDelta    int64
	KeyLength      int64
	KeyPresent     bool
	Key            []byte
	ValueLength    int64
	Value          Value
	HeadersCount   uint64
}

// Value wraps the frame/type/version header that precedes every
// typed record value, plus the decoded body for the two types the
// broker understands.
type Value struct {
	FrameVersion uint8
	Type         uint8
	Version      uint8
	Topic        *TopicValue
	Partition    *PartitionValue
}

const (
	ValueTypeTopic     = uint8(2)
	ValueTypePartition = uint8(3)
)

// TopicValue is the decoded body of a type=2 record value.
type TopicValue struct {
	NameLength uint64
	Name       string
	UUID       uuid.UUID
}

// PartitionValue is the decoded body of a type=3 record value.
// RemovingReplicas, AddingReplicas, and Directories are parsed to
// keep the cursor aligned but their contents are not retained.
type PartitionValue struct {
	PartitionID    uint32
	TopicUUID      uuid.UUID
	ReplicaNodes   []uint32
	ISRNodes       []uint32
	LeaderID       uint32
	LeaderEpoch    uint32
	PartitionEpoch uint32
}
