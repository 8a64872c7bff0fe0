package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/codecrafters-io/kafka-broker-go/internal/brokerlog"
	"github.com/codecrafters-io/kafka-broker-go/internal/codec"
)

// buildTopicValue encodes a type=2 record value body.
func buildTopicValue(name string, id uuid.UUID) []byte {
	var v []byte
	v = append(v, 1)       // frame_version
	v = append(v, 2)       // type
	v = append(v, 0)       // version
	v = codec.AppendUVarint(v, uint64(len(name)+1))
	v = append(v, name...)
	v = codec.AppendUUID(v, id)
	v = codec.AppendUVarint(v, 0) // tagged_fields
	return v
}

// buildPartitionValue encodes a type=3 record value body.
func buildPartitionValue(partitionID uint32, topicID uuid.UUID, replicas, isr []uint32, leaderID, leaderEpoch, partitionEpoch uint32) []byte {
	var v []byte
	v = append(v, 1) // frame_version
	v = append(v, 3) // type
	v = append(v, 0) // version
	v = codec.AppendUint32(v, partitionID)
	v = codec.AppendUUID(v, topicID)
	v = codec.AppendCompactUint32Array(v, replicas)
	v = codec.AppendCompactUint32Array(v, isr)
	v = codec.AppendUVarint(v, 0) // removing_replicas: absent
	v = codec.AppendUVarint(v, 0) // adding_replicas: absent
	v = codec.AppendUint32(v, leaderID)
	v = codec.AppendUint32(v, leaderEpoch)
	v = codec.AppendUint32(v, partitionEpoch)
	v = codec.AppendUVarint(v, 0) // directories: absent
	v = codec.AppendUVarint(v, 0) // tagged_fields
	return v
}

func buildRecord(value []byte) []byte {
	var rec []byte
	rec = append(rec, 0)              // attributes
	rec = codec.AppendVarint(rec, 0)  // timestamp_delta
	rec = codec.AppendVarint(rec, 0)  // offset_delta
	rec = codec.AppendVarint(rec, -1) // key_length: absent
	rec = codec.AppendVarint(rec, int64(len(value)))
	rec = append(rec, value...)
	rec = codec.AppendUVarint(rec, 0) // headers_count

	var framed []byte
	framed = codec.AppendVarint(framed, int64(len(rec)))
	framed = append(framed, rec...)
	return framed
}

func buildBatch(baseOffset uint64, records [][]byte) []byte {
	var header []byte
	header = codec.AppendUint32(header, 0) // partition_leader_epoch
	header = append(header, 1)             // magic_byte
	header = codec.AppendUint32(header, 0) // crc
	header = codec.AppendInt16(header, 0)  // attributes (u16, upper bytes 0)
	header = codec.AppendUint32(header, 0) // last_offset_delta
	header = codec.AppendInt64(header, 0)  // base_timestamp
	header = codec.AppendInt64(header, 0)  // max_timestamp
	header = codec.AppendInt64(header, -1) // producer_id
	header = codec.AppendInt16(header, -1) // producer_epoch
	header = codec.AppendInt32(header, -1) // base_sequence
	header = codec.AppendUint32(header, uint32(len(records)))

	for _, r := range records {
		header = append(header, r...)
	}

	var out []byte
	out = codec.AppendInt64(out, int64(baseOffset))
	out = codec.AppendUint32(out, uint32(len(header)))
	out = append(out, header...)
	return out
}

func writeLog(t *testing.T, batches ...[]byte) string {
	t.Helper()
	dir := t.TempDir()
	clusterDir := filepath.Join(dir, "__cluster_metadata-0")
	require.NoError(t, os.MkdirAll(clusterDir, 0o755))
	path := filepath.Join(clusterDir, "00000000000000000000.log")

	var data []byte
	for _, b := range batches {
		data = append(data, b...)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadBuildsSnapshotFromTopicAndPartitionRecords(t *testing.T) {
	topicID := uuid.MustParse("a0e9ccc6-6e0a-47e5-81d4-f12d9342cc7e")

	topicRec := buildRecord(buildTopicValue("widgets", topicID))
	partRec0 := buildRecord(buildPartitionValue(0, topicID, []uint32{1, 2}, []uint32{1}, 1, 0, 0))
	partRec1 := buildRecord(buildPartitionValue(1, topicID, []uint32{1, 2}, []uint32{1, 2}, 2, 0, 0))

	batch := buildBatch(0, [][]byte{topicRec, partRec0, partRec1})
	path := writeLog(t, batch)

	snap, err := Load(path)
	require.NoError(t, err)

	topics := snap.Topics()
	require.Len(t, topics, 1)
	require.Equal(t, "widgets", topics[0].Name)
	require.Equal(t, topicID, topics[0].UUID)

	partitions := snap.PartitionsForTopic(topicID)
	require.Len(t, partitions, 2)
	require.EqualValues(t, 0, partitions[0].PartitionID)
	require.EqualValues(t, 1, partitions[1].PartitionID)
	require.Equal(t, []uint32{1, 2}, partitions[1].ISRNodes)

	topic, ok := snap.FindTopicByName("widgets")
	require.True(t, ok)
	require.Equal(t, topicID, topic.UUID)

	_, ok = snap.FindTopicByName("missing")
	require.False(t, ok)
}

func TestLoadEmptyLogYieldsEmptySnapshot(t *testing.T) {
	path := writeLog(t)
	snap, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, snap.Topics())
	require.Empty(t, snap.Partitions())
}

func TestPartitionRecordBytesReadsSegmentVerbatim(t *testing.T) {
	path := writeLog(t)
	snap, err := Load(path)
	require.NoError(t, err)

	base := filepath.Dir(filepath.Dir(path))
	segDir := filepath.Join(base, "widgets-0")
	require.NoError(t, os.MkdirAll(segDir, 0o755))
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	require.NoError(t, os.WriteFile(filepath.Join(segDir, "00000000000000000000.log"), want, 0o644))

	got, err := snap.PartitionRecordBytes("widgets", 0)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadWithRetrySucceedsAfterOneFailure(t *testing.T) {
	dir := t.TempDir()
	clusterDir := filepath.Join(dir, "__cluster_metadata-0")
	require.NoError(t, os.MkdirAll(clusterDir, 0o755))
	path := filepath.Join(clusterDir, "00000000000000000000.log")
	tmpPath := path + ".tmp"

	topicID := uuid.MustParse("a0e9ccc6-6e0a-47e5-81d4-f12d9342cc7e")
	topicRec := buildRecord(buildTopicValue("retried-topic", topicID))
	batch := buildBatch(0, [][]byte{topicRec})

	// path does not exist when LoadWithRetry's first attempt runs, so
	// it must fail; the file is written and atomically renamed into
	// place 20ms later, well inside the 100ms backoff window, so the
	// second (and last) attempt finds it and succeeds.
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(tmpPath, batch, 0o644)
		_ = os.Rename(tmpPath, path)
	}()

	snap, err := LoadWithRetry(path, brokerlog.Nop())
	require.NoError(t, err)
	require.Len(t, snap.Topics(), 1)
	require.Equal(t, "retried-topic", snap.Topics()[0].Name)
}

func TestLoadWithRetryFailsWhenPathNeverAppears(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "__cluster_metadata-0", "00000000000000000000.log")

	_, err := LoadWithRetry(path, brokerlog.Nop())
	require.Error(t, err)
}
