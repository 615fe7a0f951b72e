package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/starlore/starlore/internal/client"
	"github.com/starlore/starlore/internal/config"
	"github.com/starlore/starlore/internal/protocol"
	"github.com/starlore/starlore/internal/server"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (addr string, cancel context.CancelFunc) {
	t.Helper()
	cfg := config.DefaultServer()
	cfg.BindAddress = "127.0.0.1:0"

	ln, err := net.Listen("tcp", cfg.BindAddress)
	require.NoError(t, err)

	srv := server.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx, ln)

	t.Cleanup(cancel)
	return ln.Addr().String(), cancel
}

// E2 (join sequence): a joining client receives its own PlayerInit, a
// PlayerAdd for each already-connected player, paginated chat history, and
// the world init; existing clients receive a PlayerAdd + join system
// message for the newcomer.
func TestJoinSequence(t *testing.T) {
	addr, _ := startTestServer(t)
	cfg := config.DefaultClient()

	g1, err := client.Connect(cfg, addr, "alice")
	require.NoError(t, err)
	defer g1.Close()
	require.Equal(t, protocol.FirstPlayerID, g1.LocalID)

	time.Sleep(50 * time.Millisecond)

	g2, err := client.Connect(cfg, addr, "bob")
	require.NoError(t, err)
	defer g2.Close()
	require.Equal(t, protocol.FirstPlayerID+1, g2.LocalID)

	time.Sleep(50 * time.Millisecond)

	// g2 should have seen g1 as an existing player.
	_, _, _, ok := g2.RemoteRender(g1.LocalID)
	require.True(t, ok)

	// g1 should have learned about g2 joining via a broadcast PlayerAdd.
	_, _, _, ok = g1.RemoteRender(g2.LocalID)
	require.True(t, ok)

	require.NotEmpty(t, g1.Chat, "existing client should see a join system message")
}

// E3 (disconnect): closing a client's connection removes it from the other
// client's player table and announces a leave system message.
func TestDisconnectBroadcast(t *testing.T) {
	addr, _ := startTestServer(t)
	cfg := config.DefaultClient()

	g1, err := client.Connect(cfg, addr, "alice")
	require.NoError(t, err)
	defer g1.Close()

	g2, err := client.Connect(cfg, addr, "bob")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, _, _, ok := g1.RemoteRender(g2.LocalID)
	require.True(t, ok)

	require.NoError(t, g2.Close())
	time.Sleep(50 * time.Millisecond)

	_, _, _, ok = g1.RemoteRender(g2.LocalID)
	require.False(t, ok, "remote player should be removed after disconnect")
}

// E6 (movement + reconciliation end to end): a client's keypress is
// predicted locally and, once the server's tick loop processes it and
// broadcasts the authoritative PlayerUpdate back, reconciliation leaves the
// predicted position matching the server's.
func TestMovementReconciliationEndToEnd(t *testing.T) {
	addr, _ := startTestServer(t)
	cfg := config.DefaultClient()

	g, err := client.Connect(cfg, addr, "alice")
	require.NoError(t, err)
	defer g.Close()

	require.NoError(t, g.SendKey(protocol.KeyD, protocol.ActionPress))

	require.Eventually(t, func() bool {
		return g.Predictor.State().Position.X > 0 && g.Predictor.Pending() == 0
	}, 2*time.Second, 10*time.Millisecond, "server should acknowledge the move and drain pending inputs")
}
