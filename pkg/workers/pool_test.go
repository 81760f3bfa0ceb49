package workers

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_TaskExecution(t *testing.T) {
	p := NewPool(2)
	p.Start()

	var called int32
	p.Submit(func() error { atomic.AddInt32(&called, 1); return nil })
	p.Submit(func() error { atomic.AddInt32(&called, 1); return nil })

	require.NoError(t, p.Close())
	require.Equal(t, int32(2), atomic.LoadInt32(&called))
}

func TestPool_CloseWaitsForLongTask(t *testing.T) {
	p := NewPool(1)
	p.Start()

	var done int32
	p.Submit(func() error {
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
		return nil
	})

	require.NoError(t, p.Close())
	require.Equal(t, int32(1), atomic.LoadInt32(&done))
}

func TestPool_CollectsErrors(t *testing.T) {
	p := NewPool(3)
	p.Start()

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	p.Submit(func() error { return errA })
	p.Submit(func() error { return nil })
	p.Submit(func() error { return errB })

	err := p.Close()
	require.Error(t, err)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

func TestPool_DefaultsToGOMAXPROCS(t *testing.T) {
	p := NewPool(0)
	require.Positive(t, p.Size())
}

func TestPool_SubmitAfterClosePanics(t *testing.T) {
	p := NewPool(1)
	p.Start()
	require.NoError(t, p.Close())

	require.Panics(t, func() {
		p.Submit(func() error { return nil })
	})
}

func TestForEachChunk_CoversRangeOnce(t *testing.T) {
	const n = 1003
	seen := make([]int32, n)

	var mu sync.Mutex
	var chunks int
	err := ForEachChunk(n, 100, 4, func(start, end int) error {
		mu.Lock()
		chunks++
		mu.Unlock()
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 11, chunks)
	for i, c := range seen {
		require.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestForEachChunk_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := ForEachChunk(10, 3, 2, func(start, end int) error {
		if start == 3 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestForEachChunk_EmptyRange(t *testing.T) {
	called := false
	err := ForEachChunk(0, 10, 2, func(int, int) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.False(t, called)
}
