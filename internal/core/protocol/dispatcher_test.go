package protocol_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/escrow-network/escrowd/internal/core/protocol"
)

func TestDispatcherRunsJobsInOrder(t *testing.T) {
	d := protocol.NewDispatcher()
	d.Start()
	defer d.Stop()

	var mtx sync.Mutex
	ran := make([]int, 0, 3)
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		i := i
		require.NoError(t, d.Enqueue(func() {
			mtx.Lock()
			ran = append(ran, i)
			if len(ran) == 3 {
				close(done)
			}
			mtx.Unlock()
		}))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs never drained")
	}
	mtx.Lock()
	defer mtx.Unlock()
	require.Equal(t, []int{0, 1, 2}, ran)
}

func TestDispatcherRejectsJobsWhenQueueIsFull(t *testing.T) {
	// Not started, so nothing drains the queue and Enqueue must
	// eventually reject instead of blocking the caller.
	d := protocol.NewDispatcher()
	defer d.Stop()

	var err error
	for i := 0; i < 1024; i++ {
		if err = d.Enqueue(func() {}); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, protocol.ErrDispatchQueueFull)
}
