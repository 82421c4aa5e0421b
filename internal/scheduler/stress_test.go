package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEngineStressConcurrentSchedule(t *testing.T) {
	engine := NewEngine(64)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 200
	total := workers * perWorker

	now := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				delay := time.Duration((w+i)%50+10) * time.Millisecond
				ev := Event{
					ID:        fmt.Sprintf("w%d-%d", w, i),
					TaskID:    fmt.Sprintf("task-%d", i),
					Kind:      KindTimer,
					TriggerAt: now.Add(delay),
				}
				if err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, total)
	deadline := time.After(5 * time.Second)
	for len(seen) < total {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting events: received=%d total=%d", len(seen), total)
		case ev := <-engine.C():
			if _, dup := seen[ev.ID]; dup {
				t.Fatalf("event %s delivered twice", ev.ID)
			}
			seen[ev.ID] = struct{}{}
		}
	}
	if got := engine.Delivered(); got != uint64(total) {
		t.Fatalf("unexpected delivered count: got=%d want=%d", got, total)
	}
}

func TestEngineStressCancelRace(t *testing.T) {
	engine := NewEngine(16)
	engine.Start()
	defer engine.Stop()

	const n = 300
	now := time.Now()
	for i := 0; i < n; i++ {
		_ = engine.Schedule(Event{ID: fmt.Sprintf("e%d", i), TriggerAt: now.Add(time.Duration(i%20) * time.Millisecond)})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	cancelled := 0
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i += 2 {
			if engine.Cancel(fmt.Sprintf("e%d", i)) {
				mu.Lock()
				cancelled++
				mu.Unlock()
			}
		}
	}()

	received := 0
	wg.Wait()
	deadline := time.After(3 * time.Second)
	for received < n-cancelled {
		select {
		case <-engine.C():
			received++
		case <-deadline:
			t.Fatalf("timeout: received=%d cancelled=%d", received, cancelled)
		}
	}
	select {
	case ev := <-engine.C():
		t.Fatalf("cancelled event delivered: %s", ev.ID)
	case <-time.After(50 * time.Millisecond):
	}
}
