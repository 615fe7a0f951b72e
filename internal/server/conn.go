package server

import (
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starlore/starlore/internal/chat"
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/netstat"
	"github.com/starlore/starlore/internal/protocol"
	"github.com/starlore/starlore/internal/ringbuf"
	"github.com/starlore/starlore/internal/worldgen"
)

// Conn wraps one client socket with a write-serializing mutex. spec.md §5
// requires this explicitly: the simulation thread and the IO thread may
// both write to the same socket (broadcasts vs. the join handshake), and a
// single `send` call being atomic for small messages is not a guarantee the
// reimplementation may rely on.
type Conn struct {
	net.Conn
	writeMu      sync.Mutex
	stats        *netstat.Tracker
	writeTimeout time.Duration
}

// WriteFrame serializes writes to the underlying socket across goroutines
// and applies cfg.WriteTimeout as a per-write deadline.
func (c *Conn) WriteFrame(b []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	n, err := c.Conn.Write(b)
	if c.stats != nil {
		c.stats.RecordSent(n)
	}
	return err
}

// deadlineReader resets the read deadline on the wrapped connection before
// every Read, so cfg.ReadTimeout acts as an idle timeout rather than a
// single deadline for the whole connection lifetime.
type deadlineReader struct {
	net.Conn
	timeout time.Duration
}

func (d deadlineReader) Read(p []byte) (int, error) {
	if d.timeout > 0 {
		d.Conn.SetReadDeadline(time.Now().Add(d.timeout))
	}
	return d.Conn.Read(p)
}

// palette cycles through a small set of distinguishable player colors; the
// spec leaves color assignment unspecified, so new joiners get the next
// color in rotation.
var palette = [][3]float32{
	{0.90, 0.20, 0.20},
	{0.20, 0.70, 0.90},
	{0.30, 0.85, 0.30},
	{0.95, 0.75, 0.15},
	{0.70, 0.30, 0.90},
}

// Manager is the connection manager (C9): it accepts connections, runs the
// handshake, drives each client's join sequence, and forwards incoming
// PlayerKeypress/Message packets into the simulation's input queue and chat
// log. One Manager per listening server.
type Manager struct {
	cfg     config.Server
	sim     *Sim
	log     *chat.Log
	queue   *ringbuf.Queue[Input]
	world   worldgen.MapParams
	stats   *netstat.Tracker

	nextID atomic.Uint32

	mu    sync.Mutex
	conns map[uint32]*Conn
}

// NewManager creates a Manager wired to sim's player table and queue.
func NewManager(cfg config.Server, sim *Sim, log *chat.Log, queue *ringbuf.Queue[Input], world worldgen.MapParams) *Manager {
	m := &Manager{
		cfg:   cfg,
		sim:   sim,
		log:   log,
		queue: queue,
		world: world,
		stats: netstat.New(),
		conns: make(map[uint32]*Conn),
	}
	m.nextID.Store(protocol.FirstPlayerID)
	return m
}

// HandleConnection runs the full per-connection lifecycle: handshake, join
// sequence, read loop, and disconnect cleanup. It blocks until the
// connection ends and never returns an error the caller must act on beyond
// logging — all failures are connection-local (spec.md §7).
func (m *Manager) HandleConnection(raw net.Conn) {
	defer raw.Close()

	if err := protocol.ServerHandshake(raw); err != nil {
		slog.Debug("handshake rejected", "remote", raw.RemoteAddr(), "error", err)
		return
	}

	if len(m.sim.Snapshot()) >= m.cfg.MaxPlayerCount {
		slog.Warn("server full, dropping new connection", "remote", raw.RemoteAddr())
		return
	}

	conn := &Conn{Conn: raw, stats: m.stats, writeTimeout: m.cfg.WriteTimeout}
	id := m.nextID.Add(1) - 1
	color := palette[int(id)%len(palette)]
	p := NewPlayer(id, "", color, m.cfg)
	p.Conn = conn

	initPkt := p.InitPacket()
	if err := conn.WriteFrame(protocol.EncodeFrame(protocol.TypePlayerInit, initPkt.Encode())); err != nil {
		slog.Debug("sending speculative PlayerInit failed", "id", id, "error", err)
		return
	}

	fr := protocol.NewFrameReader(deadlineReader{Conn: raw, timeout: m.cfg.ReadTimeout}, m.cfg.InputBuffer, m.cfg.OverflowBuffer)

	name, err := m.awaitInitConfirm(fr, id)
	if err != nil {
		slog.Debug("join handshake incomplete", "id", id, "error", err)
		return
	}
	p.Name = name

	m.register(id, conn)
	defer m.unregister(id)

	if err := m.completeJoin(conn, p); err != nil {
		slog.Debug("join sequence failed", "id", id, "error", err)
		return
	}

	m.readLoop(fr, id)
}

// awaitInitConfirm blocks, skipping any non-PlayerInitConfirm frame, until
// the client's confirm packet arrives (spec.md §4.7: "blocks for exactly
// one confirm packet before completing join").
func (m *Manager) awaitInitConfirm(fr *protocol.FrameReader, id uint32) (string, error) {
	for {
		frame, err := fr.Next()
		if err != nil {
			return "", err
		}
		if frame.Type != protocol.TypePlayerInitConfirm {
			continue
		}
		confirm, err := protocol.DecodePlayerInitConfirm(frame.Body)
		if err != nil {
			return "", err
		}
		if confirm.ID != id {
			continue
		}
		return confirm.Name, nil
	}
}

func (m *Manager) register(id uint32, c *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[id] = c
}

func (m *Manager) unregister(id uint32) {
	m.mu.Lock()
	_, ok := m.conns[id]
	if ok {
		delete(m.conns, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	p := m.sim.RemovePlayer(id)
	name := ""
	if p != nil {
		name = p.Name
	}
	msg := m.log.System(chat.LeaveMessage(name))
	m.broadcastExcept(id, protocol.EncodeFrame(protocol.TypePlayerRemove, protocol.PlayerRemove{ID: id}.Encode()))
	m.broadcastExcept(id, protocol.EncodeFrame(protocol.TypeMessage, msg.Encode()))
}

// completeJoin sends the new client its own init (already sent), then every
// existing player, chat history, world init, and world objects, then
// announces the newcomer to everyone else (spec.md §4.7).
func (m *Manager) completeJoin(conn *Conn, p *Player) error {
	existing := m.sim.Snapshot()

	for _, other := range existing {
		add := other.AddPacket()
		if err := conn.WriteFrame(protocol.EncodeFrame(protocol.TypePlayerAdd, add.Encode())); err != nil {
			return err
		}
	}

	for _, page := range m.log.History() {
		if err := conn.WriteFrame(protocol.EncodeFrame(protocol.TypeMessageHistory, page.Encode())); err != nil {
			return err
		}
	}

	worldInit := protocol.GameWorldInit{Seed: m.world.Seed, OctaveCount: m.world.OctaveCount, Bias: m.world.Bias}
	if err := conn.WriteFrame(protocol.EncodeFrame(protocol.TypeGameWorldInit, worldInit.Encode())); err != nil {
		return err
	}

	if err := m.sendSpawnObjects(conn); err != nil {
		return err
	}

	m.sim.AddPlayer(p)

	addPkt := p.AddPacket()
	m.broadcastExcept(p.ID, protocol.EncodeFrame(protocol.TypePlayerAdd, addPkt.Encode()))
	joinMsg := m.log.System(chat.JoinMessage(p.Name))
	m.broadcastExcept(p.ID, protocol.EncodeFrame(protocol.TypeMessage, joinMsg.Encode()))

	return nil
}

// sendSpawnObjects streams the decorative props around the spawn point in
// MaxTransfer-sized batches (spec.md §6.1's GameWorldObjectAdd, grounded on
// original_source/server.c's MAX_GAME_OBJECTS_TRANSFER batching loop).
func (m *Manager) sendSpawnObjects(conn *Conn) error {
	objs := worldgen.GenerateObjects(m.world.Seed, m.world.OctaveCount, m.world.Bias, worldgen.ChunkCoord{X: 0, Y: 0})
	for i := 0; i < len(objs); i += protocol.MaxTransfer {
		end := i + protocol.MaxTransfer
		if end > len(objs) {
			end = len(objs)
		}
		var batch protocol.GameWorldObjectAdd
		batch.Length = uint32(end - i)
		copy(batch.Objects[:], objs[i:end])
		if err := conn.WriteFrame(protocol.EncodeFrame(protocol.TypeGameWorldObjectAdd, batch.Encode())); err != nil {
			return err
		}
	}
	return nil
}

// readLoop pulls frames off the connection until it closes, feeding
// PlayerKeypress into the simulation's input queue and Message into chat.
func (m *Manager) readLoop(fr *protocol.FrameReader, id uint32) {
	for {
		frame, err := fr.Next()
		if err != nil {
			if err != io.EOF {
				slog.Debug("connection read error", "id", id, "error", err)
			}
			return
		}
		m.stats.RecordReceived(protocol.HeaderSize + len(frame.Body))

		switch frame.Type {
		case protocol.TypePlayerKeypress:
			pkt, err := protocol.DecodePlayerKeypress(frame.Body)
			if err != nil {
				continue
			}
			if !m.queue.TryPush(Input{PlayerID: id, Packet: pkt}) {
				slog.Debug("input queue full, dropping keypress", "id", id)
			}
		case protocol.TypeMessage:
			msg, err := protocol.DecodeMessage(frame.Body)
			if err != nil {
				continue
			}
			stamped := m.log.AppendPlayer(msg.Author, msg.Content)
			m.broadcastAll(protocol.EncodeFrame(protocol.TypeMessage, stamped.Encode()))
		case protocol.TypePing:
			pong, err := protocol.DecodePing(frame.Body)
			if err != nil {
				continue
			}
			m.sendTo(id, protocol.EncodeFrame(protocol.TypePing, pong.Encode()))
		default:
			if !frame.Type.Valid() {
				slog.Debug("unknown packet type skipped", "id", id, "type", frame.Type)
			}
		}
	}
}

func (m *Manager) sendTo(id uint32, frame []byte) {
	m.mu.Lock()
	c, ok := m.conns[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := c.WriteFrame(frame); err != nil {
		slog.Debug("write failed", "id", id, "error", err)
	}
}

func (m *Manager) broadcastAll(frame []byte) {
	m.mu.Lock()
	conns := make([]*Conn, 0, len(m.conns))
	for _, c := range m.conns {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteFrame(frame); err != nil {
			slog.Debug("broadcast write failed", "error", err)
		}
	}
}

func (m *Manager) broadcastExcept(exclude uint32, frame []byte) {
	m.mu.Lock()
	conns := make(map[uint32]*Conn, len(m.conns))
	for id, c := range m.conns {
		if id != exclude {
			conns[id] = c
		}
	}
	m.mu.Unlock()

	for id, c := range conns {
		if err := c.WriteFrame(frame); err != nil {
			slog.Debug("broadcast write failed", "id", id, "error", err)
		}
	}
}

// Hooks builds the Sim Hooks that fan this Manager's broadcasts out to
// every connected client.
func (m *Manager) Hooks() Hooks {
	return Hooks{
		BroadcastUpdate: func(u protocol.PlayerUpdate) {
			m.broadcastAll(protocol.EncodeFrame(protocol.TypePlayerUpdate, u.Encode()))
		},
		BroadcastHealth: func(h protocol.PlayerHealth) {
			m.broadcastAll(protocol.EncodeFrame(protocol.TypePlayerHealth, h.Encode()))
		},
		BroadcastDeath: func(d protocol.PlayerDeath) {
			m.broadcastAll(protocol.EncodeFrame(protocol.TypePlayerDeath, d.Encode()))
		},
		BroadcastRespawn: func(r protocol.PlayerRespawn) {
			m.broadcastAll(protocol.EncodeFrame(protocol.TypePlayerRespawn, r.Encode()))
		},
		BroadcastMessage: func(msg protocol.Message) {
			m.broadcastAll(protocol.EncodeFrame(protocol.TypeMessage, msg.Encode()))
		},
	}
}
