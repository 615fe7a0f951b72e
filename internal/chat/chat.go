// Package chat implements the bounded append-only message log (C12):
// player and system chat lines, paginated to joining clients in batches
// bounded by spec.md's HISTORY_BATCH constant.
package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/starlore/starlore/internal/protocol"
)

// Log is a bounded, append-only, mutex-guarded message history. Oldest
// entries fall off once capacity is reached so long-running servers don't
// grow it unbounded; spec.md only requires it be "append-only" from the
// client's point of view (it always sees messages in arrival order).
type Log struct {
	mu       sync.Mutex
	messages []protocol.Message
	capacity int
}

// New creates a Log holding at most capacity messages.
func New(capacity int) *Log {
	return &Log{capacity: capacity}
}

// Append records a message, evicting the oldest entry if the log is full.
func (l *Log) Append(m protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.messages) >= l.capacity {
		copy(l.messages, l.messages[1:])
		l.messages = l.messages[:len(l.messages)-1]
	}
	l.messages = append(l.messages, m)
}

// AppendPlayer stamps m's timestamp to the current wall clock, appends it,
// and returns the stamped message so the caller can re-broadcast the exact
// bytes that went into the log (spec.md §4.10).
func (l *Log) AppendPlayer(author, content string) protocol.Message {
	m := protocol.Message{
		Kind:      protocol.MessagePlayer,
		Timestamp: time.Now().Unix(),
		Author:    author,
		Content:   content,
	}
	l.Append(m)
	return m
}

// System appends and returns a system-generated chat line (join/leave/death
// announcements). content is taken verbatim — callers format with
// JoinMessage/LeaveMessage/DeathMessage first.
func (l *Log) System(content string) protocol.Message {
	m := protocol.Message{
		Kind:      protocol.MessageSystem,
		Timestamp: time.Now().Unix(),
		Content:   content,
	}
	l.Append(m)
	return m
}

// Len reports how many messages are currently retained.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// History returns the full retained log, paginated into
// protocol.HistoryBatch-sized MessageHistory packets in oldest-first order.
func (l *Log) History() []protocol.MessageHistory {
	l.mu.Lock()
	snapshot := append([]protocol.Message(nil), l.messages...)
	l.mu.Unlock()

	var pages []protocol.MessageHistory
	for i := 0; i < len(snapshot); i += protocol.HistoryBatch {
		end := i + protocol.HistoryBatch
		if end > len(snapshot) {
			end = len(snapshot)
		}
		var page protocol.MessageHistory
		page.Count = uint32(end - i)
		copy(page.Messages[:], snapshot[i:end])
		pages = append(pages, page)
	}
	return pages
}

// JoinMessage produces the system line broadcast when a player joins.
func JoinMessage(name string) string {
	return fmt.Sprintf("new player %s joined the game!", name)
}

// LeaveMessage produces the system line broadcast when a player leaves.
func LeaveMessage(name string) string {
	return fmt.Sprintf("%s left the game.", name)
}

// DeathMessage produces the system line broadcast when a player dies.
func DeathMessage(name string) string {
	return fmt.Sprintf("player %s died!", name)
}
