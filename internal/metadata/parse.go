package metadata

import (
	"github.com/pkg/errors"

	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
)

// parseLog decodes a complete cluster-metadata log into batches, in
// log order. Each batch is bounded to its own batch_length-byte slice
// before its header and records are parsed, so a corrupt batch cannot
// run its parse past its own framing.
func parseLog(data []byte) ([]Batch, error) {
	r := codec.NewReader(data)
	var batches []Batch
	for r.Remaining() > 0 {
		if !r.CanRead(12) {
			break
		}
		baseOffset := r.Uint64()
		batchLength := r.Uint32()
		if !r.CanRead(int(batchLength)) {
			return nil, errors.Errorf("truncated batch at offset %d: need %d bytes, have %d", baseOffset, batchLength, r.Remaining())
		}
		batchBytes := r.Bytes(int(batchLength))
		batch, err := parseBatch(batchBytes, baseOffset, batchLength)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing batch at offset %d", baseOffset)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func parseBatch(data []byte, offset uint64, length uint32) (Batch, error) {
	r := codec.NewReader(data)

	b := Batch{BatchOffset: offset, BatchLength: length}
	b.PartitionLeaderEpoch = r.Uint32()
	b.MagicByte = r.Uint8()
	b.CRC = r.Uint32()
	b.Attributes = r.Uint16()
	b.LastOffsetDelta = r.Uint32()
	b.BaseTimestamp = r.Uint64()
	b.MaxTimestamp = r.Uint64()
	b.ProducerID = r.Int64()
	b.ProducerEpoch = r.Int16()
	b.BaseSequence = r.Int32()
	b.RecordCount = r.Uint32()

	records := make([]Record, 0, b.RecordCount)
	for i := uint32(0); i < b.RecordCount; i++ {
		recordLength := r.Varint()
		if recordLength <= 0 || !r.CanRead(int(recordLength)) {
			break
		}
		recordBytes := r.Bytes(int(recordLength))
		records = append(records, parseRecord(recordBytes, recordLength))
	}
	b.Records = records
	return b, nil
}

// parseRecord decodes one record from a slice already bounded to
// exactly record_length bytes: every field it reads, including the
// headers payload, lives inside that slice.
func parseRecord(data []byte, recordLength int64) Record {
	r := codec.NewReader(data)

	rec := Record{RecordLength: recordLength}
	rec.Attributes = r.Uint8()
	rec.TimestampDelta = r.Varint()
	rec.OffsetDelta = r.Varint()
	rec.KeyLength = r.Varint()

	switch {
	case rec.KeyLength < 0:
		// absent key
	case rec.KeyLength == 0:
		rec.KeyPresent = true
		rec.Key = []byte{}
	default:
		rec.KeyPresent = true
		rec.Key = r.Bytes(int(rec.KeyLength))
	}

	rec.ValueLength = r.Varint()
	if rec.ValueLength > 0 && r.CanRead(int(rec.ValueLength)) {
		valueBytes := r.Bytes(int(rec.ValueLength))
		rec.Value = parseValue(valueBytes)
	}

	rec.HeadersCount = r.UVarint()
	if rec.HeadersCount > 0 {
		r.Skip(int(rec.HeadersCount))
	}

	return rec
}

// parseValue decodes a typed record value. The trailing tagged_fields
// is read here as a single uvarint "skip this many bytes" rather than
// the canonical {count, then count x (tag,len,bytes)} encoding — this
// preserves the on-disk assumption the source this was distilled from
// makes (see the metadata-parsing open question in DESIGN.md).
func parseValue(data []byte) Value {
	r := codec.NewReader(data)
	v := Value{
		FrameVersion: r.Uint8(),
		Type:         r.Uint8(),
		Version:      r.Uint8(),
	}

	switch v.Type {
	case ValueTypeTopic:
		v.Topic = parseTopicValue(r)
	case ValueTypePartition:
		v.Partition = parsePartitionValue(r)
	default:
		// FeatureValue and anything unrecognized: no known body
		// layout, left unparsed but still a legal batch entry.
	}

	tagLen := r.UVarint()
	if tagLen > 0 {
		r.Skip(int(tagLen))
	}
	return v
}

func parseTopicValue(r *codec.Reader) *TopicValue {
	nameLength := r.UVarint()
	name := ""
	if nameLength > 1 {
		name = string(r.Bytes(int(nameLength - 1)))
	}
	return &TopicValue{
		NameLength: nameLength,
		Name:       name,
		UUID:       r.UUID(),
	}
}

func parsePartitionValue(r *codec.Reader) *PartitionValue {
	p := &PartitionValue{}
	p.PartitionID = r.Uint32()
	p.TopicUUID = r.UUID()
	p.ReplicaNodes = r.CompactUint32Array()
	p.ISRNodes = r.CompactUint32Array()
	r.SkipCompactUint32Array() // removing_replicas, discarded
	r.SkipCompactUint32Array() // adding_replicas, discarded
	p.LeaderID = r.Uint32()
	p.LeaderEpoch = r.Uint32()
	p.PartitionEpoch = r.Uint32()
	r.SkipCompactUUIDArray() // directories, discarded
	return p
}
