package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/codecrafters-io/kafka-broker-go/internal/brokerlog"
)

// Snapshot is the immutable, in-memory projection of the cluster
// metadata log built once at startup and shared read-only across
// every connection for the life of the process.
type Snapshot struct {
	batches    []Batch
	topics     []TopicValue
	partitions []PartitionValue
	logDir     string // directory holding per-partition segment dirs
}

// Topics returns every TopicValue across all batches and records, in
// log order.
func (s *Snapshot) Topics() []TopicValue {
	return s.topics
}

// Partitions returns every PartitionValue across all batches and
// records, in log order.
func (s *Snapshot) Partitions() []PartitionValue {
	return s.partitions
}

// FindTopicByName returns the first topic with the given name.
func (s *Snapshot) FindTopicByName(name string) (TopicValue, bool) {
	for _, t := range s.topics {
		if t.Name == name {
			return t, true
		}
	}
	return TopicValue{}, false
}

// FindTopicByUUID returns the first topic with the given UUID.
func (s *Snapshot) FindTopicByUUID(id uuid.UUID) (TopicValue, bool) {
	for _, t := range s.topics {
		if t.UUID == id {
			return t, true
		}
	}
	return TopicValue{}, false
}

// PartitionsForTopic returns the subsequence of partitions whose
// topic_uuid matches id, in insertion order — the zero-based index
// within this subsequence is the partition_index DescribeTopicPartitions
// reports.
func (s *Snapshot) PartitionsForTopic(id uuid.UUID) []PartitionValue {
	var out []PartitionValue
	for _, p := range s.partitions {
		if p.TopicUUID == id {
			out = append(out, p)
		}
	}
	return out
}

// PartitionRecordBytes reads the raw segment file for a topic's
// partition, verbatim, for use as a Fetch response's records field.
func (s *Snapshot) PartitionRecordBytes(topicName string, partitionIndex int32) ([]byte, error) {
	path := filepath.Join(s.logDir, fmt.Sprintf("%s-%d", topicName, partitionIndex), "00000000000000000000.log")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading partition segment for %s-%d", topicName, partitionIndex)
	}
	return data, nil
}

// Load reads and parses the cluster metadata log at path once. Errors
// if the file cannot be read or any batch fails to parse.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading cluster metadata log %s", path)
	}

	batches, err := parseLog(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing cluster metadata log")
	}

	snap := &Snapshot{
		batches: batches,
		// __cluster_metadata-0/00000000000000000000.log lives one
		// level below the directory that also holds every
		// <topic>-<partition> segment directory.
		logDir: filepath.Dir(filepath.Dir(path)),
	}
	for _, b := range batches {
		for _, rec := range b.Records {
			if rec.Value.Topic != nil {
				snap.topics = append(snap.topics, *rec.Value.Topic)
			}
			if rec.Value.Partition != nil {
				snap.partitions = append(snap.partitions, *rec.Value.Partition)
			}
		}
	}
	return snap, nil
}

// LoadWithRetry loads the cluster metadata log, retrying once after a
// fixed 100ms backoff if the first attempt fails. A second failure is
// returned to the caller, which exits the process with a nonzero code.
func LoadWithRetry(path string, log brokerlog.Logger) (*Snapshot, error) {
	var snap *Snapshot
	attempt := 0
	op := func() error {
		attempt++
		s, err := Load(path)
		if err != nil {
			log.Warn(fmt.Sprintf("cluster metadata parse attempt %d failed", attempt))
			return err
		}
		snap = s
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 1)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, errors.Wrap(err, "loading cluster metadata after one retry")
	}
	return snap, nil
}
