// Package client implements the player-facing half of the protocol (C10
// prediction/reconciliation, C11 remote interpolation): the authoritative
// server state always wins, but the locally-controlled player renders
// immediately off a predicted copy of it so input never waits on a round
// trip.
package client

import (
	"math"

	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
)

// PendingInput is one input the client has already applied locally and is
// waiting for the server to acknowledge via a PlayerUpdate carrying the
// same SeqNr.
type PendingInput struct {
	SeqNr  uint32
	Key    protocol.Key
	Action protocol.KeyAction
}

// LocalState is the locally-controlled player's predicted render state.
type LocalState struct {
	Position  protocol.Vec2
	Direction protocol.Direction
	State     protocol.PlayerState
}

// Predictor holds the locally-controlled player's predicted state and the
// FIFO of inputs applied but not yet confirmed by the server. Every
// ApplyLocal call mirrors the exact step Sim.applyInput takes on the
// server for the same key/action, so replaying pending inputs after a
// reconciliation snap reproduces what the server will eventually confirm.
type Predictor struct {
	cfg     config.Client
	seq     uint32
	pending []PendingInput
	state   LocalState
}

// NewPredictor creates a Predictor starting at spawn, idle, facing down —
// the same initial state NewPlayer gives a fresh server-side player.
func NewPredictor(cfg config.Client, spawn protocol.Vec2) *Predictor {
	return &Predictor{
		cfg: cfg,
		state: LocalState{
			Position:  spawn,
			Direction: protocol.DirectionDown,
			State:     protocol.StateIdle,
		},
	}
}

// State returns the current predicted render state.
func (p *Predictor) State() LocalState {
	return p.state
}

// Pending reports how many locally-applied inputs are still unconfirmed.
func (p *Predictor) Pending() int {
	return len(p.pending)
}

// ApplyLocal predicts key/action immediately, assigns it the next sequence
// number, remembers it as pending, and returns the PlayerKeypress to send
// to the server.
func (p *Predictor) ApplyLocal(key protocol.Key, action protocol.KeyAction) protocol.PlayerKeypress {
	p.seq++
	in := PendingInput{SeqNr: p.seq, Key: key, Action: action}
	p.applyOne(in)
	p.pending = append(p.pending, in)
	return protocol.PlayerKeypress{SeqNr: p.seq, Key: uint32(key), Action: uint32(action)}
}

// Reconcile folds in an authoritative PlayerUpdate for the locally
// controlled player's own ID: every pending input up to and including
// update.SeqNr is now confirmed and dropped, the predicted state snaps to
// the server's, and whatever inputs are still outstanding are replayed on
// top so prediction doesn't visibly rewind.
func (p *Predictor) Reconcile(update protocol.PlayerUpdate) {
	i := 0
	for ; i < len(p.pending); i++ {
		if p.pending[i].SeqNr > update.SeqNr {
			break
		}
	}
	remaining := append([]PendingInput(nil), p.pending[i:]...)
	p.pending = remaining

	p.state = LocalState{
		Position:  update.Position,
		Direction: update.Direction,
		State:     update.State,
	}

	for _, in := range p.pending {
		p.applyOne(in)
	}
}

// applyOne mirrors Sim.applyInput's movement/attack/roll branch for a
// single input (minus damage/cooldown bookkeeping, which only the server
// resolves — prediction only needs to get position/direction/state right).
func (p *Predictor) applyOne(in PendingInput) {
	switch {
	case in.Key == protocol.KeyLeftShift && in.Action == protocol.ActionPress:
		ux, uy := p.state.Direction.Unit()
		p.state.Position.X += ux * p.cfg.RollDistance
		p.state.Position.Y += uy * p.cfg.RollDistance
		p.state.State = protocol.StateRoll

	case in.Key == protocol.KeySpace && in.Action == protocol.ActionPress:
		p.state.State = protocol.StateAttack

	default:
		dir, isMove := protocol.DirectionFor(in.Key)
		if !isMove || (in.Action != protocol.ActionPress && in.Action != protocol.ActionRepeat) {
			return
		}
		delta := float32(math.Trunc(float64(p.cfg.Velocity) / float64(p.cfg.TickRate)))
		ux, uy := dir.Unit()
		p.state.Position.X += ux * delta
		p.state.Position.Y += uy * delta
		directionChanged := p.state.Direction != dir
		p.state.Direction = dir
		if p.state.State != protocol.StateAttack || directionChanged {
			p.state.State = protocol.StateWalk
		}
	}
}
