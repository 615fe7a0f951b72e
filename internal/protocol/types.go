// Package protocol implements StarLore's wire protocol: a typed,
// length-prefixed packet format carried over a single TCP stream, plus the
// framing reader that turns a raw byte stream back into whole packets and
// the connection-validation handshake.
package protocol

// Type identifies a packet body layout. The numeric values are part of the
// wire format and must never be reordered.
type Type uint32

const (
	TypeNone Type = iota
	TypeHeader
	TypePing
	TypeMessage
	TypeMessageHistory
	TypePlayerInit
	TypePlayerInitConfirm
	TypePlayerAdd
	TypePlayerRemove
	TypePlayerUpdate
	TypePlayerHealth
	TypePlayerDeath
	TypePlayerRespawn
	TypePlayerKeypress
	TypeGameWorldInit
	TypeGameWorldObjectAdd
	typeCount
)

func (t Type) Valid() bool {
	return t < typeCount
}

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeHeader:
		return "Header"
	case TypePing:
		return "Ping"
	case TypeMessage:
		return "Message"
	case TypeMessageHistory:
		return "MessageHistory"
	case TypePlayerInit:
		return "PlayerInit"
	case TypePlayerInitConfirm:
		return "PlayerInitConfirm"
	case TypePlayerAdd:
		return "PlayerAdd"
	case TypePlayerRemove:
		return "PlayerRemove"
	case TypePlayerUpdate:
		return "PlayerUpdate"
	case TypePlayerHealth:
		return "PlayerHealth"
	case TypePlayerDeath:
		return "PlayerDeath"
	case TypePlayerRespawn:
		return "PlayerRespawn"
	case TypePlayerKeypress:
		return "PlayerKeypress"
	case TypeGameWorldInit:
		return "GameWorldInit"
	case TypeGameWorldObjectAdd:
		return "GameWorldObjectAdd"
	default:
		return "Unknown"
	}
}

// Fixed-width buffer sizes for the zero-padded ASCII text fields on the wire.
const (
	NameSize    = 32
	ContentSize = 256
)

// HistoryBatch bounds how many messages travel in one MessageHistory packet.
// At 10 messages the body is 3004 bytes, the largest of any packet type.
const HistoryBatch = 10

// MaxTransfer bounds how many GameObjects travel in one GameWorldObjectAdd.
const MaxTransfer = 64

// HeaderSize is the size of the 8-byte {type, size} frame header.
const HeaderSize = 8

// bodySize holds the fixed body size for each packet type, as required by
// spec.md §4.1 ("every packet type has a fixed body size known from the
// type-size table"). TypeNone and TypeHeader never appear as a body.
var bodySize = [typeCount]uint32{
	TypeNone:              0,
	TypeHeader:            0,
	TypePing:              8,
	TypeMessage:           messageSize,
	TypeMessageHistory:    4 + HistoryBatch*messageSize,
	TypePlayerInit:        36,
	TypePlayerInitConfirm: 4 + NameSize,
	TypePlayerAdd:         4 + NameSize + 8 + 12 + 4 + 4 + 4,
	TypePlayerRemove:      4,
	TypePlayerUpdate:      24,
	TypePlayerHealth:      8,
	TypePlayerDeath:       4,
	TypePlayerRespawn:     24,
	TypePlayerKeypress:    20,
	TypeGameWorldInit:     12,
	TypeGameWorldObjectAdd: 4 + MaxTransfer*gameObjectSize,
}

const messageSize = 4 + 8 + NameSize + ContentSize
const gameObjectSize = 8

// SizeOf returns the declared body size for t, or 0 for an unknown type.
func SizeOf(t Type) uint32 {
	if !t.Valid() {
		return 0
	}
	return bodySize[t]
}
