package client

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"sync"

	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/eventbus"
	"github.com/starlore/starlore/internal/protocol"
	"github.com/starlore/starlore/internal/worldgen"
)

// clientReadBuffer/clientOverflowBuffer size the client's FrameReader; a
// client only ever has one connection, so unlike the server's per-config
// buffers these are fixed constants. The primary buffer holds the largest
// packet (MessageHistory, 3012 bytes framed) plus headroom for a few
// coalesced small packets; a frame that straddles a read boundary must fit
// in the overflow buffer together with its already-read part.
const (
	clientReadBuffer     = 8192
	clientOverflowBuffer = 512
)

// remotePlayer is everything the client renders for a player other than
// itself: the last-known authoritative facts plus the interpolation state
// derived from them.
type remotePlayer struct {
	Name   string
	Color  protocol.Color
	Health int32
	Remote *RemoteState
}

// Game is the client-side session: one TCP connection, the local player's
// predicted state, every other player's interpolated state, the
// procedurally-derived chunk cache, chat history, and the event bus used to
// hand network-thread events to the render/main thread (spec.md §5: "the
// event bus is the only sanctioned cross-thread handoff").
type Game struct {
	cfg  config.Client
	conn net.Conn
	fr   *protocol.FrameReader

	writeMu sync.Mutex

	LocalID   uint32
	Predictor *Predictor

	Bus   *eventbus.Bus
	World worldgen.MapParams
	Cache *worldgen.Cache
	Chat  []protocol.Message

	mu      sync.Mutex
	remotes map[uint32]*remotePlayer
}

// Connect dials addr, runs the client side of the handshake, blocks for the
// server's speculative PlayerInit, sends the join confirm with name, and
// starts the background read loop. The returned Game is ready to accept
// local input via Predictor/SendKey.
func Connect(cfg config.Client, addr string, name string) (*Game, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	ok, err := protocol.ClientHandshake(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("handshake rejected by server")
	}

	fr := protocol.NewFrameReader(conn, clientReadBuffer, clientOverflowBuffer)

	frame, err := fr.Next()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading PlayerInit: %w", err)
	}
	if frame.Type != protocol.TypePlayerInit {
		conn.Close()
		return nil, fmt.Errorf("expected PlayerInit, got %s", frame.Type)
	}
	init, err := protocol.DecodePlayerInit(frame.Body)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("decoding PlayerInit: %w", err)
	}

	g := &Game{
		cfg:       cfg,
		conn:      conn,
		fr:        fr,
		LocalID:   init.ID,
		Predictor: NewPredictor(cfg, init.Position),
		Bus:       eventbus.New(cfg.EventBusCapacity),
		remotes:   make(map[uint32]*remotePlayer),
	}

	confirm := protocol.PlayerInitConfirm{ID: init.ID, Name: name}
	if err := g.writeFrame(protocol.EncodeFrame(protocol.TypePlayerInitConfirm, confirm.Encode())); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending join confirm: %w", err)
	}

	go g.readLoop()

	return g, nil
}

// Close tears down the connection, ending the read loop.
func (g *Game) Close() error {
	return g.conn.Close()
}

func (g *Game) writeFrame(b []byte) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	_, err := g.conn.Write(b)
	return err
}

// SendKey predicts key/action locally and forwards it to the server.
func (g *Game) SendKey(key protocol.Key, action protocol.KeyAction) error {
	pkt := g.Predictor.ApplyLocal(key, action)
	pkt.ID = g.LocalID
	return g.writeFrame(protocol.EncodeFrame(protocol.TypePlayerKeypress, pkt.Encode()))
}

// SendMessage forwards a chat line typed locally; the server stamps and
// re-broadcasts it, including back to this client.
func (g *Game) SendMessage(content string) error {
	msg := protocol.Message{Kind: protocol.MessagePlayer, Content: content}
	return g.writeFrame(protocol.EncodeFrame(protocol.TypeMessage, msg.Encode()))
}

// Advance moves every remote player's interpolation clock forward by dt
// seconds; call once per render frame before reading remote positions.
func (g *Game) Advance(dt float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range g.remotes {
		r.Remote.Advance(dt)
	}
}

// RemoteRender returns the interpolated position/direction/state for id, or
// ok=false if id isn't a currently known remote player.
func (g *Game) RemoteRender(id uint32) (pos protocol.Vec2, dir protocol.Direction, state protocol.PlayerState, ok bool) {
	g.mu.Lock()
	r, found := g.remotes[id]
	g.mu.Unlock()
	if !found {
		return protocol.Vec2{}, 0, 0, false
	}
	pos, dir, state = r.Remote.Render(g.cfg.RollDuration, g.cfg.RollDistance)
	return pos, dir, state, true
}

func (g *Game) readLoop() {
	for {
		frame, err := g.fr.Next()
		if err != nil {
			if err != io.EOF {
				slog.Debug("client read error", "error", err)
			}
			return
		}
		g.dispatch(frame)
	}
}

func (g *Game) dispatch(frame protocol.Frame) {
	switch frame.Type {
	case protocol.TypePlayerAdd:
		p, err := protocol.DecodePlayerAdd(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		g.remotes[p.ID] = &remotePlayer{
			Name:   p.Name,
			Color:  p.Color,
			Health: p.Health,
			Remote: NewRemoteState(float64(g.cfg.TickRate), p.Position, p.Direction, p.State),
		}
		g.mu.Unlock()

	case protocol.TypePlayerRemove:
		p, err := protocol.DecodePlayerRemove(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		delete(g.remotes, p.ID)
		g.mu.Unlock()

	case protocol.TypePlayerUpdate:
		u, err := protocol.DecodePlayerUpdate(frame.Body)
		if err != nil {
			return
		}
		if u.ID == g.LocalID {
			g.Predictor.Reconcile(u)
			return
		}
		g.mu.Lock()
		if r, ok := g.remotes[u.ID]; ok {
			r.Remote.Observe(u)
		}
		g.mu.Unlock()

	case protocol.TypePlayerHealth:
		h, err := protocol.DecodePlayerHealth(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		if r, ok := g.remotes[h.ID]; ok {
			r.Health -= int32(h.Damage)
		}
		g.mu.Unlock()

	case protocol.TypePlayerDeath:
		// No extra bookkeeping: Sim always also emits a PlayerUpdate with
		// State=Dead for the same player in the tick it dies, which is what
		// actually drives the remote's rendered state.
		if _, err := protocol.DecodePlayerDeath(frame.Body); err != nil {
			return
		}

	case protocol.TypePlayerRespawn:
		r, err := protocol.DecodePlayerRespawn(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		if rp, ok := g.remotes[r.ID]; ok {
			rp.Health = r.Health
			rp.Remote = NewRemoteState(float64(g.cfg.TickRate), r.Position, r.Direction, r.State)
		}
		g.mu.Unlock()

	case protocol.TypeMessage:
		msg, err := protocol.DecodeMessage(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		g.Chat = append(g.Chat, msg)
		g.mu.Unlock()

	case protocol.TypeMessageHistory:
		h, err := protocol.DecodeMessageHistory(frame.Body)
		if err != nil {
			return
		}
		g.mu.Lock()
		g.Chat = append(g.Chat, h.Messages[:h.Count]...)
		g.mu.Unlock()

	case protocol.TypeGameWorldInit:
		w, err := protocol.DecodeGameWorldInit(frame.Body)
		if err != nil {
			return
		}
		g.World = worldgen.MapParams{Seed: w.Seed, OctaveCount: w.OctaveCount, Bias: w.Bias}
		g.Cache = worldgen.NewCache(g.World, g.cfg.ChunkCacheMax)
		var data eventbus.Data
		binary.LittleEndian.PutUint32(data[:4], w.Seed)
		g.Bus.Fire(eventbus.GameWorldInit, data)

	case protocol.TypeGameWorldObjectAdd:
		// Decorative props are re-derivable from worldgen.GenerateObjects
		// once the world params are known; the batch itself only needs to
		// wake up the render thread.
		g.Bus.Fire(eventbus.ChunkReceived, eventbus.Data{})

	case protocol.TypePing:
		// Ping frames need no handling on the client; nothing is sent back.
	}
}

// VisibleChunks materializes the chunks covering the local player's current
// predicted position, refreshing the age-based cache (C5).
func (g *Game) VisibleChunks(radius int32) []*worldgen.Chunk {
	if g.Cache == nil {
		return nil
	}
	const tilePx = 32 // TILE_WIDTH_PX == TILE_HEIGHT_PX
	pos := g.Predictor.State().Position
	chunkPx := float64(g.cfg.ChunkLength * tilePx)
	centerX := int32(math.Floor(float64(pos.X) / chunkPx))
	centerY := int32(math.Floor(float64(pos.Y) / chunkPx))

	var visible []worldgen.ChunkCoord
	for y := centerY - radius; y <= centerY+radius; y++ {
		for x := centerX - radius; x <= centerX+radius; x++ {
			visible = append(visible, worldgen.ChunkCoord{X: x, Y: y})
		}
	}
	return g.Cache.RenderVisible(visible)
}
