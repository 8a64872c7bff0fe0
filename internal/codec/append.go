package codec

import (
	"encoding/binary"

	"github.com/google/uuid"
)

func AppendInt8(b []byte, v int8) []byte {
	return append(b, byte(v))
}

func AppendInt16(b []byte, v int16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	return append(b, tmp[:]...)
}

func AppendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func AppendInt32(b []byte, v int32) []byte {
	return AppendUint32(b, uint32(v))
}

func AppendInt64(b []byte, v int64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	return append(b, tmp[:]...)
}

// AppendUVarint appends v as a LEB128 unsigned varint.
func AppendUVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// AppendVarint zigzag-encodes v then appends it as an unsigned varint.
func AppendVarint(b []byte, v int64) []byte {
	u := uint64(v<<1) ^ uint64(v>>63)
	return AppendUVarint(b, u)
}

// AppendUUID appends the 16 network-order bytes of id.
func AppendUUID(b []byte, id uuid.UUID) []byte {
	return append(b, id[:]...)
}

// AppendCompactString appends uvarint(len+1) followed by s's bytes.
func AppendCompactString(b []byte, s string) []byte {
	b = AppendUVarint(b, uint64(len(s)+1))
	return append(b, s...)
}

// AppendCompactBytes appends uvarint(len+1) followed by data verbatim.
func AppendCompactBytes(b []byte, data []byte) []byte {
	if len(data) == 0 {
		return AppendUVarint(b, 1)
	}
	b = AppendUVarint(b, uint64(len(data)+1))
	return append(b, data...)
}

// AppendCompactUint32Array appends a compact array of uint32 values.
func AppendCompactUint32Array(b []byte, values []uint32) []byte {
	b = AppendUVarint(b, uint64(len(values)+1))
	for _, v := range values {
		b = AppendUint32(b, v)
	}
	return b
}
