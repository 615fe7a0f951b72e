package server

import (
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
)

// Player is one connected player's full authoritative state. All fields are
// only ever touched from the simulation tick goroutine except Conn, which
// the connection manager's per-socket writer also reads.
type Player struct {
	ID   uint32
	Name string

	Position  [2]float32
	Color     [3]float32
	Health    int32
	State     protocol.PlayerState
	Direction protocol.Direction

	AttackCD     float64
	AttackAccum  float64
	RollCD       float64
	RollAccum    float64
	RollStart    [2]float32
	RespawnCD    float64
	LastSeqNr    uint32

	Conn *Conn
}

// NewPlayer creates a fresh player at the spawn position with a full health
// bar, idle and facing down — the same state a respawn restores.
func NewPlayer(id uint32, name string, color [3]float32, cfg config.Server) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Position:  config.SpawnPosition,
		Color:     color,
		Health:    cfg.StartHealth,
		State:     protocol.StateIdle,
		Direction: protocol.DirectionDown,
	}
}

// Alive reports whether the player can take damage and act (i.e. is not in
// its death/respawn-wait window).
func (p *Player) Alive() bool {
	return p.State != protocol.StateDead
}

// InitPacket renders this player's PlayerInit body, sent only to the player
// itself right after the handshake.
func (p *Player) InitPacket() protocol.PlayerInit {
	return protocol.PlayerInit{
		ID:        p.ID,
		Position:  protocol.Vec2{X: p.Position[0], Y: p.Position[1]},
		Color:     protocol.Color{R: p.Color[0], G: p.Color[1], B: p.Color[2]},
		Health:    p.Health,
		State:     p.State,
		Direction: p.Direction,
	}
}

// AddPacket renders this player's PlayerAdd body, sent to every other
// client so they can spawn a representation of this player.
func (p *Player) AddPacket() protocol.PlayerAdd {
	return protocol.PlayerAdd{
		ID:        p.ID,
		Name:      p.Name,
		Position:  protocol.Vec2{X: p.Position[0], Y: p.Position[1]},
		Color:     protocol.Color{R: p.Color[0], G: p.Color[1], B: p.Color[2]},
		Health:    p.Health,
		State:     p.State,
		Direction: p.Direction,
	}
}
