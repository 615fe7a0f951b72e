package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starlore/starlore/internal/chat"
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/ringbuf"
	"github.com/starlore/starlore/internal/worldgen"
)

// Server wires the simulation, chat log, input queue, and connection
// manager together and runs the accept loop plus the fixed-tick loop. The
// overall shape (listener ownership, Run/Serve split for testability,
// ctx-driven graceful shutdown via a watcher goroutine closing the
// listener) follows the same pattern as this codebase's other network
// servers.
type Server struct {
	cfg config.Server
	mgr *Manager
	sim *Sim

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server from cfg. The simulation's Hooks are wired to the
// connection manager's broadcast methods so Sim never touches the network
// directly.
func New(cfg config.Server) *Server {
	queue := ringbuf.New[Input](cfg.InputRingBufferCap)
	log := chat.New(cfg.MessageLogCapacity)
	world := worldgen.MapParams{Seed: cfg.WorldSeed, OctaveCount: cfg.OctaveCount, Bias: cfg.Bias}

	mgr := NewManager(cfg, nil, log, queue, world)
	sim := NewSim(cfg, queue, log, mgr.Hooks())
	mgr.sim = sim

	return &Server{cfg: cfg, mgr: mgr, sim: sim}
}

// Addr returns the address the server is listening on, or nil before Run
// has bound a listener.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close closes the listener, unblocking the accept loop.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run binds cfg.BindAddress and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.BindAddress, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve runs the accept loop and the tick loop over an already-bound
// listener, for tests that want to pick an ephemeral port.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.runTickLoop(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("server listening", "address", ln.Addr())
		s.acceptLoop(gctx, ln)
		return nil
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				slog.Error("accept failed", "error", err)
				continue
			}
		}

		go s.mgr.HandleConnection(conn)
	}
}

// runTickLoop drives Sim.Tick at cfg.TickRate until ctx is canceled. This is
// the single goroutine allowed to mutate simulation state via Tick; all
// other goroutines only enqueue inputs or read snapshots.
func (s *Server) runTickLoop(ctx context.Context) {
	period := time.Duration(float64(time.Second) / float64(s.cfg.TickRate))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sim.Tick()
		}
	}
}
