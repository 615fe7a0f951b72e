package server

import (
	"math"
	"sync"

	"github.com/starlore/starlore/internal/chat"
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
	"github.com/starlore/starlore/internal/ringbuf"
)

// Input is one queued PlayerKeypress tagged with the player it came from.
type Input struct {
	PlayerID uint32
	Packet   protocol.PlayerKeypress
}

// Hooks are the simulation's only way to talk to the outside world — the
// connection manager supplies these, letting Sim stay free of any
// networking concern (the same injected-callback idiom the teacher uses for
// its manager types, e.g. combat reward hooks and AI broadcast functions).
type Hooks struct {
	BroadcastUpdate  func(protocol.PlayerUpdate)
	BroadcastHealth  func(protocol.PlayerHealth)
	BroadcastDeath   func(protocol.PlayerDeath)
	BroadcastRespawn func(protocol.PlayerRespawn)
	BroadcastMessage func(protocol.Message)
}

// Sim is the authoritative fixed-tick simulation (C8). One Sim instance
// owns the entire player table and is driven by a single goroutine calling
// Tick in a loop; AddPlayer/RemovePlayer/Snapshot may be called from other
// goroutines (the connection manager's accept/IO side), which feed inputs
// through the shared queue.
type Sim struct {
	cfg   config.Server
	queue *ringbuf.Queue[Input]
	log   *chat.Log
	hooks Hooks

	mu      sync.Mutex
	players map[uint32]*Player
}

// NewSim creates a Sim over queue, logging system messages to log and
// reporting outcomes through hooks.
func NewSim(cfg config.Server, queue *ringbuf.Queue[Input], log *chat.Log, hooks Hooks) *Sim {
	return &Sim{
		cfg:     cfg,
		queue:   queue,
		log:     log,
		hooks:   hooks,
		players: make(map[uint32]*Player),
	}
}

// AddPlayer registers p in the simulation's player table.
func (s *Sim) AddPlayer(p *Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
}

// RemovePlayer drops id from the player table and returns the removed
// player, or nil if id was never added (e.g. disconnect before join
// completed).
func (s *Sim) RemovePlayer(id uint32) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.players[id]
	delete(s.players, id)
	return p
}

// Snapshot returns a copy of every currently tracked player's state, for
// the join sequence's PlayerAdd fan-out. The copies are taken under the
// table lock, so later ticks do not change them.
func (s *Sim) Snapshot() []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

// tickDuration is 1/TickRate. It is both the timer step of one server tick
// and the basis of the per-input movement step; the client's Predictor
// derives its movement step from its own TickRate, so the two configs must
// carry the same rate (both default to 64) or client-side reconciliation
// (§4.8) can never converge.
func (s *Sim) tickDuration() float64 {
	return 1.0 / float64(s.cfg.TickRate)
}

// Tick runs one fixed simulation step: drain queued inputs, resolve damage,
// broadcast modified players, then advance cooldowns/timers — in that
// strict order (spec.md §4.6's ordering guarantee).
func (s *Sim) Tick() {
	dt := s.tickDuration()

	s.mu.Lock()
	defer s.mu.Unlock()

	inputs := s.queue.Drain(s.cfg.ProcessedInputPerTick)

	modified := make(map[uint32]bool)
	damage := make(map[uint32]int32)
	freshRoll := make(map[uint32]bool)

	for _, in := range inputs {
		p, ok := s.players[in.PlayerID]
		if !ok || !p.Alive() {
			continue
		}
		s.applyInput(p, in.Packet, damage, modified, freshRoll)
		p.LastSeqNr = in.Packet.SeqNr
	}

	s.applyDamage(damage, modified)
	s.broadcastModified(modified, freshRoll)
	s.advanceTimers(dt, modified)
}

func (s *Sim) applyInput(p *Player, pkt protocol.PlayerKeypress, damage map[uint32]int32, modified map[uint32]bool, freshRoll map[uint32]bool) {
	key := protocol.Key(pkt.Key)
	action := protocol.KeyAction(pkt.Action)

	switch {
	case key == protocol.KeyLeftShift && action == protocol.ActionPress && p.RollCD <= 0:
		p.RollStart = p.Position
		p.State = protocol.StateRoll
		p.RollCD = s.cfg.RollCooldown
		p.RollAccum = 0
		ux, uy := p.Direction.Unit()
		p.Position[0] += ux * s.cfg.RollDistance
		p.Position[1] += uy * s.cfg.RollDistance
		freshRoll[p.ID] = true
		modified[p.ID] = true

	case key == protocol.KeySpace && action == protocol.ActionPress && p.AttackCD <= 0:
		p.State = protocol.StateAttack
		p.AttackCD = s.cfg.AttackCooldown
		p.AttackAccum = 0
		hitbox := attackHitbox(p.Position, p.Direction)
		for id, other := range s.players {
			if id == p.ID || !other.Alive() {
				continue
			}
			if hitbox.overlaps(bodyAABB(other.Position)) {
				damage[id] += s.cfg.DamageValue
			}
		}
		modified[p.ID] = true

	default:
		dir, isMove := protocol.DirectionFor(key)
		if !isMove || (action != protocol.ActionPress && action != protocol.ActionRepeat) {
			return
		}
		delta := float32(math.Trunc(float64(s.cfg.Velocity) * s.tickDuration()))
		ux, uy := dir.Unit()
		p.Position[0] += ux * delta
		p.Position[1] += uy * delta

		directionChanged := p.Direction != dir
		p.Direction = dir
		if p.State != protocol.StateAttack || directionChanged {
			p.State = protocol.StateWalk
		}
		modified[p.ID] = true
	}
}

func (s *Sim) applyDamage(damage map[uint32]int32, modified map[uint32]bool) {
	for id, amount := range damage {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		p.Health -= amount
		if s.hooks.BroadcastHealth != nil {
			s.hooks.BroadcastHealth(protocol.PlayerHealth{ID: id, Damage: uint32(amount)})
		}
		if p.Health <= 0 {
			p.State = protocol.StateDead
			p.RespawnCD = s.cfg.RespawnCooldown
			modified[id] = true
			if s.hooks.BroadcastDeath != nil {
				s.hooks.BroadcastDeath(protocol.PlayerDeath{ID: id})
			}
			msg := s.log.System(chat.DeathMessage(p.Name))
			if s.hooks.BroadcastMessage != nil {
				s.hooks.BroadcastMessage(msg)
			}
		}
	}
}

func (s *Sim) broadcastModified(modified map[uint32]bool, freshRoll map[uint32]bool) {
	if s.hooks.BroadcastUpdate == nil {
		return
	}
	for id := range modified {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		pos := protocol.Vec2{X: p.Position[0], Y: p.Position[1]}
		if freshRoll[id] {
			pos = protocol.Vec2{X: p.RollStart[0], Y: p.RollStart[1]}
		}
		s.hooks.BroadcastUpdate(protocol.PlayerUpdate{
			SeqNr:     p.LastSeqNr,
			ID:        p.ID,
			Position:  pos,
			Direction: p.Direction,
			State:     p.State,
		})
	}
}

func (s *Sim) advanceTimers(dt float64, modified map[uint32]bool) {
	for id, p := range s.players {
		p.AttackCD -= dt
		p.RollCD -= dt

		if p.State == protocol.StateAttack {
			p.AttackAccum += dt
			if p.AttackAccum >= s.cfg.AttackDuration {
				p.State = protocol.StateIdle
				if s.hooks.BroadcastUpdate != nil {
					s.hooks.BroadcastUpdate(currentUpdate(p))
				}
			}
		}
		if p.State == protocol.StateRoll {
			p.RollAccum += dt
			if p.RollAccum >= s.cfg.RollDuration {
				p.State = protocol.StateIdle
				if s.hooks.BroadcastUpdate != nil {
					s.hooks.BroadcastUpdate(currentUpdate(p))
				}
			}
		}
		if p.State == protocol.StateDead {
			p.RespawnCD -= dt
			if p.RespawnCD <= 0 {
				p.State = protocol.StateIdle
				p.Health = s.cfg.StartHealth
				p.Position = config.SpawnPosition
				p.Direction = protocol.DirectionDown
				if s.hooks.BroadcastRespawn != nil {
					s.hooks.BroadcastRespawn(protocol.PlayerRespawn{
						ID:        id,
						Health:    p.Health,
						Position:  protocol.Vec2{X: p.Position[0], Y: p.Position[1]},
						State:     p.State,
						Direction: p.Direction,
					})
				}
			}
		}
		_ = modified // timers advance for every player, not only those modified this tick
	}
}

func currentUpdate(p *Player) protocol.PlayerUpdate {
	return protocol.PlayerUpdate{
		SeqNr:     p.LastSeqNr,
		ID:        p.ID,
		Position:  protocol.Vec2{X: p.Position[0], Y: p.Position[1]},
		Direction: p.Direction,
		State:     p.State,
	}
}

// rect is an axis-aligned bounding box used for attack/body overlap checks.
type rect struct {
	minX, minY, maxX, maxY float32
}

func (r rect) overlaps(o rect) bool {
	return r.minX < o.maxX && r.maxX > o.minX && r.minY < o.maxY && r.maxY > o.minY
}

const (
	bodyHalfExtent = 16 // half of the 32x32 player body AABB
	hitboxDepth    = 32 // spec.md §4.6: "half-depth rectangle of size 32"
)

// bodyAABB is the 32x32 box centered on a player's position.
func bodyAABB(pos [2]float32) rect {
	return rect{
		minX: pos[0] - bodyHalfExtent, maxX: pos[0] + bodyHalfExtent,
		minY: pos[1] - bodyHalfExtent, maxY: pos[1] + bodyHalfExtent,
	}
}

// attackHitbox is the hitboxDepth-deep, body-width rectangle immediately
// ahead of pos in dir, flush against the attacker's own body edge.
func attackHitbox(pos [2]float32, dir protocol.Direction) rect {
	switch dir {
	case protocol.DirectionRight:
		return rect{minX: pos[0] + bodyHalfExtent, maxX: pos[0] + bodyHalfExtent + hitboxDepth, minY: pos[1] - bodyHalfExtent, maxY: pos[1] + bodyHalfExtent}
	case protocol.DirectionLeft:
		return rect{minX: pos[0] - bodyHalfExtent - hitboxDepth, maxX: pos[0] - bodyHalfExtent, minY: pos[1] - bodyHalfExtent, maxY: pos[1] + bodyHalfExtent}
	case protocol.DirectionDown:
		return rect{minX: pos[0] - bodyHalfExtent, maxX: pos[0] + bodyHalfExtent, minY: pos[1] + bodyHalfExtent, maxY: pos[1] + bodyHalfExtent + hitboxDepth}
	default: // DirectionUp
		return rect{minX: pos[0] - bodyHalfExtent, maxX: pos[0] + bodyHalfExtent, minY: pos[1] - bodyHalfExtent - hitboxDepth, maxY: pos[1] - bodyHalfExtent}
	}
}
