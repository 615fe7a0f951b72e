package client

import "github.com/starlore/starlore/internal/protocol"

// RemoteState tracks a non-local player's last two authoritative snapshots
// so their movement can be smoothed between PlayerUpdate broadcasts
// instead of snapping to each one (C11).
type RemoteState struct {
	lastPosition protocol.Vec2
	position     protocol.Vec2
	direction    protocol.Direction
	state        protocol.PlayerState
	rollStart    protocol.Vec2

	sinceUpdate float64
	tickRate    float64
}

// NewRemoteState creates a RemoteState pinned at initial with no motion to
// interpolate yet (used for a player just introduced via PlayerAdd).
func NewRemoteState(tickRate float64, initial protocol.Vec2, dir protocol.Direction, state protocol.PlayerState) *RemoteState {
	return &RemoteState{
		lastPosition: initial,
		position:     initial,
		direction:    dir,
		state:        state,
		rollStart:    initial,
		tickRate:     tickRate,
	}
}

// Observe records a fresh authoritative PlayerUpdate as the new
// interpolation target; the previous target becomes the interpolation
// origin.
func (r *RemoteState) Observe(update protocol.PlayerUpdate) {
	r.lastPosition = r.position
	r.position = update.Position
	r.direction = update.Direction
	r.state = update.State
	r.sinceUpdate = 0
	if update.State == protocol.StateRoll {
		r.rollStart = update.Position
	}
}

// Advance moves the time-since-update clock forward by dt seconds; call
// once per client frame/tick before Render.
func (r *RemoteState) Advance(dt float64) {
	r.sinceUpdate += dt
}

// Render returns this frame's interpolated position/direction/state.
// Ordinary motion lerps last_position -> position over one server tick
// period (t = time_since_update * tick_rate, clamped to 1). Roll instead
// eases deterministically along the facing unit vector from roll_start
// over rollDuration, ending at roll_start + rollDistance — the point the
// server's one-step roll teleport reaches — so every client draws the
// identical trajectory instead of racing the next broadcast.
func (r *RemoteState) Render(rollDuration float64, rollDistance float32) (protocol.Vec2, protocol.Direction, protocol.PlayerState) {
	if r.state == protocol.StateRoll {
		t := r.sinceUpdate / rollDuration
		if t > 1 {
			t = 1
		}
		ux, uy := r.direction.Unit()
		pos := protocol.Vec2{
			X: r.rollStart.X + ux*rollDistance*float32(t),
			Y: r.rollStart.Y + uy*rollDistance*float32(t),
		}
		return pos, r.direction, r.state
	}

	t := r.sinceUpdate * r.tickRate
	if t > 1 {
		t = 1
	}
	pos := protocol.Vec2{
		X: lerp(r.lastPosition.X, r.position.X, float32(t)),
		Y: lerp(r.lastPosition.Y, r.position.Y, float32(t)),
	}
	return pos, r.direction, r.state
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
