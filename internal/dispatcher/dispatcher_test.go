package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"simple-push-service/internal/observability"
)

// fakeQueue returns a fixed batch of due ids exactly once, then reports
// empty forever, letting the dispatcher loop settle and get stopped.
type fakeQueue struct {
	mu     sync.Mutex
	ids    []int64
	popped bool
}

func (f *fakeQueue) PopDue(ctx context.Context, now int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.popped {
		return nil, nil
	}
	f.popped = true
	return f.ids, nil
}

func TestDispatcherRoundRobinsAcrossWorkerChannels(t *testing.T) {
	const workers = 3
	const idsPerWorker = 3

	ids := make([]int64, 0, workers*idsPerWorker)
	for i := int64(1); i <= workers*idsPerWorker; i++ {
		ids = append(ids, i)
	}

	q := &fakeQueue{ids: ids}
	channels := make([]chan int64, workers)
	for i := range channels {
		channels[i] = make(chan int64, workers*idsPerWorker)
	}

	d := New(q, channels, zap.NewNop(), observability.NewMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	// Give the dispatcher time to distribute the fixed batch. By then it has
	// made a second (empty) pop and is in its one-second idle sleep, so it
	// observes Stop once that sleep ends, well inside the timeout below.
	time.Sleep(50 * time.Millisecond)
	d.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop in time")
	}

	for i, ch := range channels {
		count := 0
		for range ch {
			count++
		}
		if count != idsPerWorker {
			t.Fatalf("worker %d received %d ids, want %d", i, count, idsPerWorker)
		}
	}
}
