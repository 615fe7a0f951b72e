package chat

import (
	"testing"

	"github.com/starlore/starlore/internal/protocol"
	"github.com/stretchr/testify/require"
)

func TestAppendPlayerStampsTimestamp(t *testing.T) {
	l := New(100)
	before := l.AppendPlayer("wren", "hello")
	require.Equal(t, protocol.MessagePlayer, before.Kind)
	require.NotZero(t, before.Timestamp)
	require.Equal(t, "wren", before.Author)
}

func TestHistoryPaginatesByHistoryBatch(t *testing.T) {
	l := New(1000)
	for i := 0; i < protocol.HistoryBatch+3; i++ {
		l.AppendPlayer("wren", "msg")
	}
	pages := l.History()
	require.Len(t, pages, 2)
	require.EqualValues(t, protocol.HistoryBatch, pages[0].Count)
	require.EqualValues(t, 3, pages[1].Count)
}

func TestLogEvictsOldestOnOverflow(t *testing.T) {
	l := New(3)
	l.AppendPlayer("a", "1")
	l.AppendPlayer("a", "2")
	l.AppendPlayer("a", "3")
	l.AppendPlayer("a", "4")
	require.Equal(t, 3, l.Len())
	pages := l.History()
	require.Equal(t, "2", pages[0].Messages[0].Content)
	require.Equal(t, "4", pages[0].Messages[2].Content)
}

func TestSystemMessagesFormat(t *testing.T) {
	require.Equal(t, "new player wren joined the game!", JoinMessage("wren"))
	require.Equal(t, "wren left the game.", LeaveMessage("wren"))
	require.Equal(t, "player wren died!", DeathMessage("wren"))
}
