package protocol

import "fmt"

// Vec2 is a 2D float position, as carried on the wire (f32 pair).
type Vec2 struct {
	X, Y float32
}

// Color is an RGB triple in [0,1], as carried on the wire (f32 triple).
type Color struct {
	R, G, B float32
}

// Ping carries a nanosecond timestamp echoed by the peer.
type Ping struct {
	TimeNs uint64
}

func (p Ping) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePing)))
	w.U64(p.TimeNs)
	return w.Bytes()
}

func DecodePing(body []byte) (Ping, error) {
	r := NewReader(body)
	t, err := r.U64()
	return Ping{TimeNs: t}, err
}

// Message is one chat line, system or player-authored.
type Message struct {
	Kind      MessageKind
	Timestamp int64
	Author    string
	Content   string
}

func (m Message) Encode() []byte {
	w := NewWriter(int(messageSize))
	w.encodeInto(m)
	return w.Bytes()
}

func (w *Writer) encodeInto(m Message) {
	w.U32(uint32(m.Kind))
	w.I64(m.Timestamp)
	w.FixedString(m.Author, NameSize)
	w.FixedString(m.Content, ContentSize)
}

func DecodeMessage(body []byte) (Message, error) {
	r := NewReader(body)
	return decodeMessage(r)
}

func decodeMessage(r *Reader) (Message, error) {
	var m Message
	kind, err := r.U32()
	if err != nil {
		return m, err
	}
	ts, err := r.I64()
	if err != nil {
		return m, err
	}
	author, err := r.FixedString(NameSize)
	if err != nil {
		return m, err
	}
	content, err := r.FixedString(ContentSize)
	if err != nil {
		return m, err
	}
	m.Kind = MessageKind(kind)
	m.Timestamp = ts
	m.Author = author
	m.Content = content
	return m, nil
}

// MessageHistory is a page of up to HistoryBatch messages sent to a joining
// client. Unused slots in the fixed array are zero.
type MessageHistory struct {
	Count    uint32
	Messages [HistoryBatch]Message
}

func (h MessageHistory) Encode() []byte {
	w := NewWriter(int(SizeOf(TypeMessageHistory)))
	w.U32(h.Count)
	for i := range h.Messages {
		w.encodeInto(h.Messages[i])
	}
	return w.Bytes()
}

func DecodeMessageHistory(body []byte) (MessageHistory, error) {
	var h MessageHistory
	r := NewReader(body)
	count, err := r.U32()
	if err != nil {
		return h, err
	}
	h.Count = count
	for i := range h.Messages {
		m, err := decodeMessage(r)
		if err != nil {
			return h, err
		}
		h.Messages[i] = m
	}
	return h, nil
}

// PlayerInit is sent to a freshly joined client describing its own player.
type PlayerInit struct {
	ID        uint32
	Position  Vec2
	Color     Color
	Health    int32
	State     PlayerState
	Direction Direction
}

func (p PlayerInit) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerInit)))
	w.U32(p.ID)
	w.F32(p.Position.X)
	w.F32(p.Position.Y)
	w.F32(p.Color.R)
	w.F32(p.Color.G)
	w.F32(p.Color.B)
	w.I32(p.Health)
	w.U32(uint32(p.State))
	w.U32(uint32(p.Direction))
	return w.Bytes()
}

func DecodePlayerInit(body []byte) (PlayerInit, error) {
	var p PlayerInit
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Position.X, err = r.F32(); err != nil {
		return p, err
	}
	if p.Position.Y, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.R, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.G, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.B, err = r.F32(); err != nil {
		return p, err
	}
	if p.Health, err = r.I32(); err != nil {
		return p, err
	}
	state, err := r.U32()
	if err != nil {
		return p, err
	}
	dir, err := r.U32()
	if err != nil {
		return p, err
	}
	p.State = PlayerState(state)
	p.Direction = Direction(dir)
	return p, nil
}

// PlayerInitConfirm is the client's reply that completes the join handshake
// (spec.md §9: the name must not be read before this arrives).
type PlayerInitConfirm struct {
	ID   uint32
	Name string
}

func (p PlayerInitConfirm) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerInitConfirm)))
	w.U32(p.ID)
	w.FixedString(p.Name, NameSize)
	return w.Bytes()
}

func DecodePlayerInitConfirm(body []byte) (PlayerInitConfirm, error) {
	var p PlayerInitConfirm
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Name, err = r.FixedString(NameSize); err != nil {
		return p, err
	}
	return p, nil
}

// PlayerAdd announces an existing or newly joined player to a client.
type PlayerAdd struct {
	ID        uint32
	Name      string
	Position  Vec2
	Color     Color
	Health    int32
	State     PlayerState
	Direction Direction
}

func (p PlayerAdd) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerAdd)))
	w.U32(p.ID)
	w.FixedString(p.Name, NameSize)
	w.F32(p.Position.X)
	w.F32(p.Position.Y)
	w.F32(p.Color.R)
	w.F32(p.Color.G)
	w.F32(p.Color.B)
	w.I32(p.Health)
	w.U32(uint32(p.State))
	w.U32(uint32(p.Direction))
	return w.Bytes()
}

func DecodePlayerAdd(body []byte) (PlayerAdd, error) {
	var p PlayerAdd
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Name, err = r.FixedString(NameSize); err != nil {
		return p, err
	}
	if p.Position.X, err = r.F32(); err != nil {
		return p, err
	}
	if p.Position.Y, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.R, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.G, err = r.F32(); err != nil {
		return p, err
	}
	if p.Color.B, err = r.F32(); err != nil {
		return p, err
	}
	if p.Health, err = r.I32(); err != nil {
		return p, err
	}
	state, err := r.U32()
	if err != nil {
		return p, err
	}
	dir, err := r.U32()
	if err != nil {
		return p, err
	}
	p.State = PlayerState(state)
	p.Direction = Direction(dir)
	return p, nil
}

// PlayerRemove announces a player left (disconnect or explicit remove).
type PlayerRemove struct {
	ID uint32
}

func (p PlayerRemove) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerRemove)))
	w.U32(p.ID)
	return w.Bytes()
}

func DecodePlayerRemove(body []byte) (PlayerRemove, error) {
	r := NewReader(body)
	id, err := r.U32()
	return PlayerRemove{ID: id}, err
}

// PlayerUpdate is the authoritative movement/state broadcast. SeqNr is only
// meaningful to the client whose own ID matches (spec.md §9 Open Question);
// it is carried unconditionally and ignored by observers of other players.
type PlayerUpdate struct {
	SeqNr     uint32
	ID        uint32
	Position  Vec2
	Direction Direction
	State     PlayerState
}

func (p PlayerUpdate) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerUpdate)))
	w.U32(p.SeqNr)
	w.U32(p.ID)
	w.F32(p.Position.X)
	w.F32(p.Position.Y)
	w.Byte(byte(p.Direction))
	w.Byte(byte(p.State))
	w.Pad(6)
	return w.Bytes()
}

func DecodePlayerUpdate(body []byte) (PlayerUpdate, error) {
	var p PlayerUpdate
	r := NewReader(body)
	var err error
	if p.SeqNr, err = r.U32(); err != nil {
		return p, err
	}
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Position.X, err = r.F32(); err != nil {
		return p, err
	}
	if p.Position.Y, err = r.F32(); err != nil {
		return p, err
	}
	dir, err := r.Byte()
	if err != nil {
		return p, err
	}
	state, err := r.Byte()
	if err != nil {
		return p, err
	}
	if err := r.Skip(6); err != nil {
		return p, err
	}
	p.Direction = Direction(dir)
	p.State = PlayerState(state)
	return p, nil
}

// PlayerHealth reports damage dealt to a player.
type PlayerHealth struct {
	ID     uint32
	Damage uint32
}

func (p PlayerHealth) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerHealth)))
	w.U32(p.ID)
	w.U32(p.Damage)
	return w.Bytes()
}

func DecodePlayerHealth(body []byte) (PlayerHealth, error) {
	var p PlayerHealth
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Damage, err = r.U32(); err != nil {
		return p, err
	}
	return p, nil
}

// PlayerDeath announces a player's death.
type PlayerDeath struct {
	ID uint32
}

func (p PlayerDeath) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerDeath)))
	w.U32(p.ID)
	return w.Bytes()
}

func DecodePlayerDeath(body []byte) (PlayerDeath, error) {
	r := NewReader(body)
	id, err := r.U32()
	return PlayerDeath{ID: id}, err
}

// PlayerRespawn announces a player returning to Idle at the spawn point.
type PlayerRespawn struct {
	ID        uint32
	Health    int32
	Position  Vec2
	State     PlayerState
	Direction Direction
}

func (p PlayerRespawn) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerRespawn)))
	w.U32(p.ID)
	w.I32(p.Health)
	w.F32(p.Position.X)
	w.F32(p.Position.Y)
	w.U32(uint32(p.State))
	w.U32(uint32(p.Direction))
	return w.Bytes()
}

func DecodePlayerRespawn(body []byte) (PlayerRespawn, error) {
	var p PlayerRespawn
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.Health, err = r.I32(); err != nil {
		return p, err
	}
	if p.Position.X, err = r.F32(); err != nil {
		return p, err
	}
	if p.Position.Y, err = r.F32(); err != nil {
		return p, err
	}
	state, err := r.U32()
	if err != nil {
		return p, err
	}
	dir, err := r.U32()
	if err != nil {
		return p, err
	}
	p.State = PlayerState(state)
	p.Direction = Direction(dir)
	return p, nil
}

// PlayerKeypress is a single timestamped input sent from client to server.
type PlayerKeypress struct {
	ID     uint32
	SeqNr  uint32
	Key    uint32
	Mods   uint32
	Action uint32
}

func (p PlayerKeypress) Encode() []byte {
	w := NewWriter(int(SizeOf(TypePlayerKeypress)))
	w.U32(p.ID)
	w.U32(p.SeqNr)
	w.U32(p.Key)
	w.U32(p.Mods)
	w.U32(p.Action)
	return w.Bytes()
}

func DecodePlayerKeypress(body []byte) (PlayerKeypress, error) {
	var p PlayerKeypress
	r := NewReader(body)
	var err error
	if p.ID, err = r.U32(); err != nil {
		return p, err
	}
	if p.SeqNr, err = r.U32(); err != nil {
		return p, err
	}
	if p.Key, err = r.U32(); err != nil {
		return p, err
	}
	if p.Mods, err = r.U32(); err != nil {
		return p, err
	}
	if p.Action, err = r.U32(); err != nil {
		return p, err
	}
	return p, nil
}

// GameWorldInit describes the immutable world map parameters, identical on
// server and every client once received.
type GameWorldInit struct {
	Seed        uint32
	OctaveCount int32
	Bias        float32
}

func (g GameWorldInit) Encode() []byte {
	w := NewWriter(int(SizeOf(TypeGameWorldInit)))
	w.U32(g.Seed)
	w.I32(g.OctaveCount)
	w.F32(g.Bias)
	return w.Bytes()
}

func DecodeGameWorldInit(body []byte) (GameWorldInit, error) {
	var g GameWorldInit
	r := NewReader(body)
	var err error
	if g.Seed, err = r.U32(); err != nil {
		return g, err
	}
	if g.OctaveCount, err = r.I32(); err != nil {
		return g, err
	}
	if g.Bias, err = r.F32(); err != nil {
		return g, err
	}
	return g, nil
}

// GameObject is a decorative world prop (tree, bush, rock, lily) placed at a
// tile index within the chunk it was generated for.
type GameObject struct {
	Type      GameObjectType
	TileIndex int32
}

// GameWorldObjectAdd streams a batch of GameObjects to a joining client.
type GameWorldObjectAdd struct {
	Length  uint32
	Objects [MaxTransfer]GameObject
}

func (g GameWorldObjectAdd) Encode() []byte {
	w := NewWriter(int(SizeOf(TypeGameWorldObjectAdd)))
	w.U32(g.Length)
	for i := range g.Objects {
		w.U32(uint32(g.Objects[i].Type))
		w.I32(g.Objects[i].TileIndex)
	}
	return w.Bytes()
}

func DecodeGameWorldObjectAdd(body []byte) (GameWorldObjectAdd, error) {
	var g GameWorldObjectAdd
	r := NewReader(body)
	length, err := r.U32()
	if err != nil {
		return g, err
	}
	g.Length = length
	for i := range g.Objects {
		ty, err := r.U32()
		if err != nil {
			return g, err
		}
		idx, err := r.I32()
		if err != nil {
			return g, err
		}
		g.Objects[i] = GameObject{Type: GameObjectType(ty), TileIndex: idx}
	}
	return g, nil
}

// ErrUnknownType is the error value for a packet type outside the valid enum
// range. No function in this package returns it: FrameReader.Next reports
// such a type through Frame.Type with a nil error.
var ErrUnknownType = fmt.Errorf("protocol: unknown packet type")
