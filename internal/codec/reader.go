// Package codec implements the primitive wire encoding used across the
// broker: fixed-width big-endian integers, unsigned/zigzag varints,
// compact strings and arrays, and 16-byte UUIDs.
package codec

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Reader is a cursor over a byte slice. It never panics on a short
// read; callers that need to distinguish "ran out of bytes" from a
// real zero value should check CanRead first.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b for sequential decoding starting at offset 0.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// CanRead reports whether n more bytes are available.
func (r *Reader) CanRead(n int) bool {
	return n >= 0 && r.off+n <= len(r.buf)
}

// Rest returns every byte not yet consumed, without advancing.
func (r *Reader) Rest() []byte {
	return r.buf[r.off:]
}

// Bytes consumes and returns the next n bytes. Returns nil if short.
func (r *Reader) Bytes(n int) []byte {
	if !r.CanRead(n) {
		r.off = len(r.buf)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) {
	if !r.CanRead(n) {
		r.off = len(r.buf)
		return
	}
	r.off += n
}

func (r *Reader) Uint8() uint8 {
	if !r.CanRead(1) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *Reader) Int8() int8 {
	return int8(r.Uint8())
}

func (r *Reader) Uint16() uint16 {
	if !r.CanRead(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.off : r.off+2])
	r.off += 2
	return v
}

func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

func (r *Reader) Uint32() uint32 {
	if !r.CanRead(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v
}

func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

func (r *Reader) Uint64() uint64 {
	if !r.CanRead(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v
}

func (r *Reader) Int64() int64 {
	return int64(r.Uint64())
}

// UVarint reads a LEB128 unsigned varint: little-endian base-128 with
// the continuation bit in the MSB of each byte, up to 10 bytes.
func (r *Reader) UVarint() uint64 {
	var x uint64
	var s uint
	for i := 0; i < 10; i++ {
		if !r.CanRead(1) {
			return x
		}
		b := r.buf[r.off]
		r.off++
		if b < 0x80 {
			return x | uint64(b)<<s
		}
		x |= uint64(b&0x7F) << s
		s += 7
	}
	return x
}

// Varint reads a zigzag-encoded signed varint.
func (r *Reader) Varint() int64 {
	u := r.UVarint()
	return int64(u>>1) ^ -(int64(u) & 1)
}

// UUID reads 16 network-order bytes as a UUID.
func (r *Reader) UUID() uuid.UUID {
	var id uuid.UUID
	copy(id[:], r.Bytes(16))
	return id
}

// CompactString reads a compact string: uvarint(len+1) then len bytes.
// A stored length of 0 or 1 yields the empty string.
func (r *Reader) CompactString() string {
	n := r.UVarint()
	if n <= 1 {
		return ""
	}
	b := r.Bytes(int(n - 1))
	return string(b)
}

// CompactNullableString reads a compact nullable string. The stored
// length 0 means null (second return value true); any other stored
// value n decodes n-1 bytes.
func (r *Reader) CompactNullableString() (string, bool) {
	n := r.UVarint()
	if n == 0 {
		return "", true
	}
	b := r.Bytes(int(n - 1))
	return string(b), false
}

// CompactUint32Array reads a compact array of uint32: a stored length
// of 0 means "absent" and must iterate zero times, never len-1
// underflowing into a huge loop count.
func (r *Reader) CompactUint32Array() []uint32 {
	n := r.UVarint()
	if n == 0 {
		return nil
	}
	out := make([]uint32, 0, min(n-1, uint64(r.Remaining()/4)))
	for i := uint64(0); i < n-1 && r.CanRead(4); i++ {
		out = append(out, r.Uint32())
	}
	return out
}

// SkipCompactUint32Array discards a compact array of uint32 values.
func (r *Reader) SkipCompactUint32Array() {
	n := r.UVarint()
	if n == 0 {
		return
	}
	r.Skip(int(n-1) * 4)
}

// SkipCompactUUIDArray discards a compact array of 16-byte UUIDs.
func (r *Reader) SkipCompactUUIDArray() {
	n := r.UVarint()
	if n == 0 {
		return
	}
	r.Skip(int(n-1) * 16)
}
