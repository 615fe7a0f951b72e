package protocol

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkedReader hands back bytes from buf in fixed-size (or smaller, at EOF)
// slices, simulating arbitrary TCP read boundaries.
type chunkedReader struct {
	buf   []byte
	pos   int
	chunk int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.buf) {
		return 0, io.EOF
	}
	n := c.chunk
	if n > len(p) {
		n = len(p)
	}
	if c.pos+n > len(c.buf) {
		n = len(c.buf) - c.pos
	}
	copy(p, c.buf[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

func buildFrames(t *testing.T, n int) []byte {
	t.Helper()
	var out bytes.Buffer
	for i := 0; i < n; i++ {
		p := Ping{TimeNs: uint64(i + 1)}
		out.Write(EncodeFrame(TypePing, p.Encode()))
	}
	return out.Bytes()
}

// P2: any concatenation of N well-formed packets, split at arbitrary byte
// boundaries across successive reads, is delivered as exactly those N
// packets in order.
func TestFramingArbitrarySplits(t *testing.T) {
	const n = 25
	data := buildFrames(t, n)

	for _, chunk := range []int{1, 2, 3, 7, 16, 1024} {
		t.Run("", func(t *testing.T) {
			fr := NewFrameReader(&chunkedReader{buf: data, chunk: chunk}, 4096, 256)
			for i := 0; i < n; i++ {
				frame, err := fr.Next()
				require.NoError(t, err)
				require.Equal(t, TypePing, frame.Type)
				got, err := DecodePing(frame.Body)
				require.NoError(t, err)
				require.Equal(t, uint64(i+1), got.TimeNs)
			}
			_, err := fr.Next()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestFramingCoalescedFrames(t *testing.T) {
	data := buildFrames(t, 5)
	fr := NewFrameReader(bytes.NewReader(data), len(data), 256)
	for i := 0; i < 5; i++ {
		frame, err := fr.Next()
		require.NoError(t, err)
		require.Equal(t, TypePing, frame.Type)
	}
}

func TestFramingSizeMismatchIsFatal(t *testing.T) {
	bad := EncodeFrame(TypePing, []byte{1, 2, 3}) // declares 3, wants 8
	fr := NewFrameReader(bytes.NewReader(bad), 64, 16)
	_, err := fr.Next()
	require.Error(t, err)
	var fe *FrameError
	require.ErrorAs(t, err, &fe)
}

// An out-of-range type is distinct from a size mismatch: it must not be
// fatal, and the connection must keep parsing the frames that follow it.
func TestFramingInvalidTypeIsRecoverableNotFatal(t *testing.T) {
	var bad [8]byte
	binary.LittleEndian.PutUint32(bad[0:4], 9999)
	binary.LittleEndian.PutUint32(bad[4:8], 0)
	good := EncodeFrame(TypePing, Ping{TimeNs: 7}.Encode())

	data := append(bad[:], good...)
	fr := NewFrameReader(&chunkedReader{buf: data, chunk: len(bad)}, 64, 16)

	frame, err := fr.Next()
	require.NoError(t, err)
	require.False(t, frame.Type.Valid())

	frame, err = fr.Next()
	require.NoError(t, err)
	require.Equal(t, TypePing, frame.Type)
	got, err := DecodePing(frame.Body)
	require.NoError(t, err)
	require.Equal(t, uint64(7), got.TimeNs)
}

func TestFramingEOFIsOrderly(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(nil), 64, 16)
	_, err := fr.Next()
	require.ErrorIs(t, err, io.EOF)
}
