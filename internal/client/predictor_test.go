package client

import (
	"testing"

	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
	"github.com/stretchr/testify/require"
)

func newTestPredictor() *Predictor {
	cfg := config.DefaultClient()
	return NewPredictor(cfg, protocol.Vec2{})
}

// P5 (prediction idempotence): reconciling with an update that matches
// exactly what was already predicted must not change the rendered state.
func TestReconcileIdempotentWhenServerAgrees(t *testing.T) {
	p := newTestPredictor()

	pkt := p.ApplyLocal(protocol.KeyD, protocol.ActionPress)
	before := p.State()

	p.Reconcile(protocol.PlayerUpdate{
		SeqNr:     pkt.SeqNr,
		ID:        0,
		Position:  before.Position,
		Direction: before.Direction,
		State:     before.State,
	})

	require.Equal(t, before, p.State())
	require.Empty(t, p.pending)
}

// Inputs sent but not yet acknowledged by the server are replayed after a
// reconciliation snap, so a stale/smaller SeqNr ack doesn't erase
// already-applied but still-outstanding movement.
func TestReconcileReplaysOutstandingInputs(t *testing.T) {
	p := newTestPredictor()

	first := p.ApplyLocal(protocol.KeyD, protocol.ActionPress)
	p.ApplyLocal(protocol.KeyD, protocol.ActionRepeat)
	afterTwo := p.State()

	// Server only acknowledges the first input; the repeat is still
	// outstanding and must be replayed on top of the server's snap.
	p.Reconcile(protocol.PlayerUpdate{
		SeqNr:     first.SeqNr,
		Position:  protocol.Vec2{X: 100, Y: 0}, // authoritative position differs from local prediction
		Direction: protocol.DirectionRight,
		State:     protocol.StateWalk,
	})

	require.Len(t, p.pending, 1)
	require.NotEqual(t, afterTwo.Position, p.State().Position)
	require.Greater(t, p.State().Position.X, float32(100))
}

func TestApplyLocalRollUsesCurrentFacing(t *testing.T) {
	p := newTestPredictor()
	p.state.Direction = protocol.DirectionUp

	p.ApplyLocal(protocol.KeyLeftShift, protocol.ActionPress)

	require.Equal(t, protocol.StateRoll, p.State().State)
	require.Equal(t, -p.cfg.RollDistance, p.State().Position.Y)
}

func TestApplyLocalAttackDoesNotMove(t *testing.T) {
	p := newTestPredictor()
	before := p.State().Position

	p.ApplyLocal(protocol.KeySpace, protocol.ActionPress)

	require.Equal(t, protocol.StateAttack, p.State().State)
	require.Equal(t, before, p.State().Position)
}

func TestApplyLocalIgnoresReleaseForMovement(t *testing.T) {
	p := newTestPredictor()
	before := p.State()

	p.ApplyLocal(protocol.KeyD, protocol.ActionRelease)

	require.Equal(t, before, p.State())
}
