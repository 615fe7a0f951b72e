package ringbuf

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryPushDropsWhenFull(t *testing.T) {
	q := New[int](3)
	require.True(t, q.TryPush(1))
	require.True(t, q.TryPush(2))
	require.True(t, q.TryPush(3))
	require.False(t, q.TryPush(4))
	require.Equal(t, 3, q.Len())
}

func TestDrainPreservesEnqueueOrder(t *testing.T) {
	q := New[int](10)
	for i := 1; i <= 5; i++ {
		q.TryPush(i)
	}
	got := q.Drain(3)
	require.Equal(t, []int{1, 2, 3}, got)
	require.Equal(t, 2, q.Len())
	rest := q.Drain(10)
	require.Equal(t, []int{4, 5}, rest)
}

func TestDrainLimitLargerThanLenReturnsAll(t *testing.T) {
	q := New[int](10)
	q.TryPush(1)
	got := q.Drain(100)
	require.Equal(t, []int{1}, got)
}

func TestConcurrentPushDrain(t *testing.T) {
	q := New[int](1000)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.TryPush(j)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1000, q.Len())
	drained := q.Drain(1000)
	require.Len(t, drained, 1000)
}
