package pagewriter

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := q.Put(ctx, i); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if q.Len() != 5 {
		t.Fatalf("len = %d", q.Len())
	}
	for i := 0; i < 5; i++ {
		e, err := q.Take(ctx)
		if err != nil {
			t.Fatalf("take: %v", err)
		}
		if e.IsStop() || e.Record().(int) != i {
			t.Fatalf("entry %d: got %+v", i, e)
		}
	}
}

func TestQueueOfferTimeout(t *testing.T) {
	q := NewQueue(1)
	if !q.Offer("a", 0) {
		t.Fatalf("first offer should succeed")
	}
	start := time.Now()
	if q.Offer("b", 30*time.Millisecond) {
		t.Fatalf("offer on full queue should time out")
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Fatalf("offer returned before timeout")
	}
	if q.Offer("c", 0) {
		t.Fatalf("non-blocking offer on full queue should fail")
	}
}

func TestQueuePutHonoursContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Put(ctx, "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestQueueTakeHonoursContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Take(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}

func TestQueueTakeOrHalt(t *testing.T) {
	q := NewQueue(1)
	halt := make(chan struct{})
	close(halt)
	e, err := q.takeOrHalt(context.Background(), halt)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	if !e.IsStop() {
		t.Fatalf("closed halt should yield a stop entry")
	}
}

func TestNewQueueNegativeCapacity(t *testing.T) {
	if c := NewQueue(-1).Cap(); c != DefaultQueueCapacity {
		t.Fatalf("cap = %d", c)
	}
}
