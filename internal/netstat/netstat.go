// Package netstat tracks per-process bandwidth: bytes sent/received are
// accumulated continuously and snapshotted once per second, so callers get
// a stable bytes/sec figure instead of a jittery instantaneous one.
//
// Grounded on original_source/src/common/net.c's accumulator: StarLore
// itself carries no disk/UI layer that reads this (the spec's Non-goals
// exclude persistence and rendering), so it's supplemented here purely as
// an ambient diagnostics counter. The server's connection manager records
// bytes into one Tracker; no code outside the tests calls Bandwidth.
package netstat

import (
	"sync"
	"sync/atomic"
	"time"
)

// updatePeriod matches net.c's STAT_UPDATE_PERIOD.
const updatePeriod = time.Second

// Tracker accumulates bytes sent/received and exposes a once-per-second
// bytes/sec snapshot. Safe for concurrent use: RecordSent/RecordReceived
// are called from IO goroutines, Bandwidth from a ticking maintenance loop
// or an on-demand caller.
type Tracker struct {
	sentAccum     atomic.Uint64
	receivedAccum atomic.Uint64

	mu            sync.Mutex
	lastUpdate    time.Time
	bytesPerSecUp uint64
	bytesPerSecDown uint64
}

// New creates a Tracker with its accumulation window starting now.
func New() *Tracker {
	return &Tracker{lastUpdate: time.Now()}
}

// RecordSent accounts n bytes written to the wire.
func (t *Tracker) RecordSent(n int) {
	if n > 0 {
		t.sentAccum.Add(uint64(n))
	}
}

// RecordReceived accounts n bytes read from the wire.
func (t *Tracker) RecordReceived(n int) {
	if n > 0 {
		t.receivedAccum.Add(uint64(n))
	}
}

// Bandwidth returns the most recently snapshotted (up, down) bytes/sec,
// rolling the accumulator into a fresh snapshot if updatePeriod has
// elapsed since the last one.
func (t *Tracker) Bandwidth() (up, down uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Since(t.lastUpdate) >= updatePeriod {
		t.bytesPerSecUp = t.sentAccum.Swap(0)
		t.bytesPerSecDown = t.receivedAccum.Swap(0)
		t.lastUpdate = time.Now()
	}
	return t.bytesPerSecUp, t.bytesPerSecDown
}
