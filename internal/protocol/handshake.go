package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// HandshakeConstant is the fixed 64-bit value XOR'd into the server's
// challenge, per spec.md §4.3. Not a secret; it exists only so that two
// peers speaking a different protocol version fail the check immediately.
const HandshakeConstant uint64 = 0xDEADBEEFCAFEBABE

// ServerHandshake performs the server side of the connection-validation
// handshake over rw: send an 8-byte challenge, read the client's 8-byte
// response, and write a 1-byte accept/reject. It returns nil only when the
// client is accepted; any non-nil error means the caller must close the
// socket (spec.md: "reject closes the socket immediately").
func ServerHandshake(rw io.ReadWriter) error {
	challenge := rand.New(rand.NewSource(time.Now().UnixNano())).Uint64()

	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], challenge)
	if _, err := rw.Write(out[:]); err != nil {
		return fmt.Errorf("protocol: handshake challenge write: %w", err)
	}

	var in [8]byte
	if _, err := io.ReadFull(rw, in[:]); err != nil {
		return fmt.Errorf("protocol: handshake response read: %w", err)
	}
	response := binary.LittleEndian.Uint64(in[:])

	accepted := response == (challenge ^ HandshakeConstant)
	status := byte(0)
	if accepted {
		status = 1
	}
	if _, err := rw.Write([]byte{status}); err != nil {
		return fmt.Errorf("protocol: handshake status write: %w", err)
	}
	if !accepted {
		return fmt.Errorf("protocol: handshake rejected")
	}
	return nil
}

// ClientHandshake performs the client side: read the server's 8-byte
// challenge, reply with challenge XOR HandshakeConstant, and read the
// 1-byte accept/reject. A non-nil error, or a false result, means the
// caller must close the socket.
func ClientHandshake(rw io.ReadWriter) (bool, error) {
	var in [8]byte
	if _, err := io.ReadFull(rw, in[:]); err != nil {
		return false, fmt.Errorf("protocol: handshake challenge read: %w", err)
	}
	challenge := binary.LittleEndian.Uint64(in[:])

	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], challenge^HandshakeConstant)
	if _, err := rw.Write(out[:]); err != nil {
		return false, fmt.Errorf("protocol: handshake response write: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(rw, status[:]); err != nil {
		return false, fmt.Errorf("protocol: handshake status read: %w", err)
	}
	return status[0] == 1, nil
}
