package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, ^uint64(0)}
	for _, v := range values {
		encoded := AppendUVarint(nil, v)
		got := NewReader(encoded).UVarint()
		require.Equalf(t, v, got, "round trip of %d", v)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []int64{-1, 0, 1, -2, 2, 24, 29, minInt64, maxInt64}
	for _, v := range values {
		encoded := AppendVarint(nil, v)
		got := NewReader(encoded).Varint()
		require.Equalf(t, v, got, "round trip of %d", v)
	}
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

func TestUvarintFixedVectors(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  uint64
	}{
		{[]byte{0xAC, 0x02}, 300},
		{[]byte{0x04}, 4},
		{[]byte{0x12}, 18},
	}
	for _, c := range cases {
		require.Equal(t, c.want, NewReader(c.bytes).UVarint())
	}
}

func TestVarintFixedVectors(t *testing.T) {
	cases := []struct {
		bytes []byte
		want  int64
	}{
		{[]byte{0x30}, 24},
		{[]byte{0x01}, -1},
		{[]byte{0x3A}, 29},
	}
	for _, c := range cases {
		require.Equal(t, c.want, NewReader(c.bytes).Varint())
	}
}

func TestUUIDDecoding(t *testing.T) {
	data := []byte{
		0xa0, 0xe9, 0xcc, 0xc6,
		0x6e, 0x0a,
		0x47, 0xe5,
		0x81, 0xd4,
		0xf1, 0x2d, 0x93, 0x42, 0xcc, 0x7e,
	}
	id := NewReader(data).UUID()
	require.Equal(t, "a0e9ccc6-6e0a-47e5-81d4-f12d9342cc7e", id.String())
}

func TestCompactStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "foo", "topic-name"} {
		encoded := AppendCompactString(nil, s)
		require.Equal(t, s, NewReader(encoded).CompactString())
	}
}

func TestCompactUint32ArrayAbsentDoesNotUnderflow(t *testing.T) {
	r := NewReader([]byte{0x00})
	got := r.CompactUint32Array()
	require.Empty(t, got)
	require.Equal(t, 1, r.Offset())
}

func TestCompactUint32ArrayRoundTrip(t *testing.T) {
	values := []uint32{1, 2, 3}
	encoded := AppendCompactUint32Array(nil, values)
	got := NewReader(encoded).CompactUint32Array()
	require.Equal(t, values, got)
}
