package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"share-ingest-service/internal/service"
)

func TestBatch_FiresOnNthCompletion(t *testing.T) {
	var fires int
	b := service.NewBatch(3, func() { fires++ })

	b.RecordOne()
	if fires != 0 {
		t.Fatalf("terminal fired after 1/3")
	}
	b.RecordOne()
	if fires != 0 {
		t.Fatalf("terminal fired after 2/3")
	}
	b.RecordOne()
	if fires != 1 {
		t.Fatalf("expected exactly one fire after 3/3, got %d", fires)
	}

	if k, n := b.Progress(); k != 3 || n != 3 {
		t.Fatalf("expected progress 3/3, got %d/%d", k, n)
	}
}

func TestBatch_FiresExactlyOnceUnderConcurrency(t *testing.T) {
	const total = 64

	var fires atomic.Int64
	b := service.NewBatch(total, func() { fires.Add(1) })

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			b.RecordOne()
		}()
	}
	close(start)
	wg.Wait()

	if got := fires.Load(); got != 1 {
		t.Fatalf("expected exactly one terminal fire, got %d", got)
	}
}

func TestBatch_NeverFiresShortOfTotal(t *testing.T) {
	fired := false
	b := service.NewBatch(3, func() { fired = true })

	b.RecordOne()
	b.RecordOne()

	if fired {
		t.Fatalf("terminal fired with 2/3 completions")
	}
	if k, n := b.Progress(); k != 2 || n != 3 {
		t.Fatalf("expected progress 2/3, got %d/%d", k, n)
	}
}
