package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if snap["totalDurationMs"].(uint64) != 42 {
		t.Fatalf("expected 42ms total, got %v", snap["totalDurationMs"])
	}
}

func TestCollectorEventsConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Incr("clock_in.accepted")
		}()
	}
	wg.Wait()
	if got := c.Event("clock_in.accepted"); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	events := c.Snapshot()["events"].(map[string]uint64)
	if events["clock_in.accepted"] != 50 {
		t.Fatalf("snapshot events mismatch: %v", events)
	}
}
