package protocol

// Key identifies a keyboard key in a PlayerKeypress packet. Only the keys
// the simulation actually reacts to are enumerated; any other value is
// legal on the wire and simply produces no movement/action effect.
type Key uint32

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyLeftShift
)

// KeyAction distinguishes a fresh press from a held repeat or a release,
// mirroring the event bus's KeyPressed/KeyRepeated/KeyReleased codes.
type KeyAction uint32

const (
	ActionPress KeyAction = iota
	ActionRelease
	ActionRepeat
)

// directions maps a movement key to the facing it produces.
var directions = map[Key]Direction{
	KeyW: DirectionUp,
	KeyS: DirectionDown,
	KeyA: DirectionLeft,
	KeyD: DirectionRight,
}

// DirectionFor reports the Direction a movement key produces, and whether
// key is a movement key at all.
func DirectionFor(k Key) (Direction, bool) {
	d, ok := directions[k]
	return d, ok
}

// Unit returns the unit vector (x, y) a Direction points along, with +Y
// meaning down and +X meaning right.
func (d Direction) Unit() (float32, float32) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}
