package protocol

import (
	"encoding/binary"
	"sync/atomic"
)

// EncodeFrame prepends the 8-byte {type, size} header to an already-encoded
// body, producing bytes ready for a single Write to the socket.
func EncodeFrame(t Type, body []byte) []byte {
	out := make([]byte, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:4], uint32(t))
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(body)))
	copy(out[HeaderSize:], body)
	return out
}

// SequenceCounter hands out monotonically increasing client input sequence
// numbers. The wire field is a u32 (spec.md §9 Open Question, resolved in
// favor of a u32 wire width); the internal counter is a uint64 so wraparound
// happens once, cleanly, at encode time rather than causing UB partway
// through a comparison.
type SequenceCounter struct {
	n uint64
}

// Next returns the next sequence number, truncated to 32 bits on wraparound.
func (c *SequenceCounter) Next() uint32 {
	return uint32(atomic.AddUint64(&c.n, 1))
}
