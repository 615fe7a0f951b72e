package protocol

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandshakeAccepts(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverErr := make(chan error, 1)
	go func() { serverErr <- ServerHandshake(server) }()

	ok, err := ClientHandshake(client)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, <-serverErr)
}

func TestHandshakeRejectsWrongResponse(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverErr := make(chan error, 1)
	go func() { serverErr <- ServerHandshake(server) }()

	var challenge [8]byte
	_, err := io.ReadFull(client, challenge[:])
	require.NoError(t, err)

	_, err = client.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)

	var status [1]byte
	_, err = io.ReadFull(client, status[:])
	require.NoError(t, err)
	require.Equal(t, byte(0), status[0])
	require.Error(t, <-serverErr)
}

// E1: client sends header{type=Ping,size=8} + u64(1234567890); server
// responds with the same 16 bytes, byte-exact.
func TestPingRoundTripByteExact(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		fr := NewFrameReader(server, 4096, 256)
		frame, err := fr.Next()
		if err != nil {
			return
		}
		server.Write(EncodeFrame(frame.Type, frame.Body))
	}()

	ping := Ping{TimeNs: 1234567890}
	sent := EncodeFrame(TypePing, ping.Encode())
	_, err := client.Write(sent)
	require.NoError(t, err)

	got := make([]byte, len(sent))
	_, err = io.ReadFull(client, got)
	require.NoError(t, err)
	require.Equal(t, sent, got)
}
