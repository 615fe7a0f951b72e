package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFireReturnsFalseWhenFull(t *testing.T) {
	b := New(2)
	require.True(t, b.Fire(KeyPressed, Data{}))
	require.True(t, b.Fire(KeyPressed, Data{}))
	require.False(t, b.Fire(KeyPressed, Data{}))
	require.Equal(t, 2, b.Len())
}

func TestPollDrainsInFIFOOrder(t *testing.T) {
	b := New(16)
	var seen []byte
	b.On(KeyPressed, func(ev Event) bool {
		seen = append(seen, ev.Data[0])
		return true
	})
	for i := byte(0); i < 5; i++ {
		b.Fire(KeyPressed, Data{i})
	}
	n := b.Poll()
	require.Equal(t, 5, n)
	require.Equal(t, []byte{0, 1, 2, 3, 4}, seen)
	require.Equal(t, 0, b.Len())
}

func TestPollStopsAtFirstHandled(t *testing.T) {
	b := New(4)
	var calls []int
	b.On(WindowResized, func(ev Event) bool {
		calls = append(calls, 1)
		return true
	})
	b.On(WindowResized, func(ev Event) bool {
		calls = append(calls, 2)
		return true
	})
	b.Fire(WindowResized, Data{})
	b.Poll()
	require.Equal(t, []int{1}, calls)
}

func TestPollContinuesWhenNotHandled(t *testing.T) {
	b := New(4)
	var calls []int
	b.On(WindowResized, func(ev Event) bool {
		calls = append(calls, 1)
		return false
	})
	b.On(WindowResized, func(ev Event) bool {
		calls = append(calls, 2)
		return true
	})
	b.Fire(WindowResized, Data{})
	b.Poll()
	require.Equal(t, []int{1, 2}, calls)
}

func TestPollCapsAtMaxPollEvents(t *testing.T) {
	b := New(MaxPollEvents + 50)
	for i := 0; i < MaxPollEvents+50; i++ {
		b.Fire(KeyPressed, Data{})
	}
	n := b.Poll()
	require.Equal(t, MaxPollEvents, n)
	require.Equal(t, 50, b.Len())
}

func TestFireIsSafeForConcurrentProducers(t *testing.T) {
	b := New(1000)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				b.Fire(MouseMoved, Data{})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1000, b.Len())
}
