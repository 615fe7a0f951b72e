package netstat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBandwidthAccumulatesWithinWindow(t *testing.T) {
	tr := New()
	tr.RecordSent(100)
	tr.RecordReceived(50)
	up, down := tr.Bandwidth()
	require.Zero(t, up, "snapshot only rolls over after the update period elapses")
	require.Zero(t, down)
}

func TestBandwidthSnapshotsAfterWindow(t *testing.T) {
	tr := New()
	tr.lastUpdate = time.Now().Add(-2 * time.Second)
	tr.RecordSent(1000)
	tr.RecordReceived(2000)

	up, down := tr.Bandwidth()
	require.EqualValues(t, 1000, up)
	require.EqualValues(t, 2000, down)

	// accumulator resets; a second immediate call within the window is flat.
	tr.RecordSent(5)
	up2, down2 := tr.Bandwidth()
	require.Equal(t, up, up2)
	require.Equal(t, down, down2)
}
