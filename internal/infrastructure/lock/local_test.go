package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLocalExcludesSecondHolder(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	release, ok, err := l.TryAcquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire = %v, %v", ok, err)
	}

	if _, ok, _ := l.TryAcquire(context.Background()); ok {
		t.Fatal("second acquire succeeded while held")
	}

	release()
	release()

	release2, ok, err := l.TryAcquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("acquire after release = %v, %v", ok, err)
	}

	// a stale release from the first holder must not free the new lease
	release()
	if _, ok, _ := l.TryAcquire(context.Background()); ok {
		t.Fatal("stale release freed the lock")
	}
	release2()
}

func TestLocalConcurrentAcquire(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok, _ := l.TryAcquire(context.Background()); ok {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := winners.Load(); got != 1 {
		t.Fatalf("winners = %d, want 1", got)
	}
}
