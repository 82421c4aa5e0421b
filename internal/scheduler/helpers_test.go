package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/storage"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

type recorder struct {
	mu    sync.Mutex
	items []model.Notification
}

func (r *recorder) Emit(n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) count(title string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Title == title {
			n++
		}
	}
	return n
}

func (r *recorder) find(title string) (model.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Title == title {
			return item, true
		}
	}
	return model.Notification{}, false
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type countingAlerter struct{ plays atomic.Int32 }

func (a *countingAlerter) PlayAlert(context.Context) error {
	a.plays.Add(1)
	return nil
}

type countingObserver struct {
	active    atomic.Int32
	completed atomic.Int32
	alarms    atomic.Int32
}

func (o *countingObserver) TimersActive(n int) { o.active.Store(int32(n)) }
func (o *countingObserver) TimerCompleted()    { o.completed.Add(1) }
func (o *countingObserver) AlarmFired()        { o.alarms.Add(1) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *tasks.Store {
	t.Helper()
	store := tasks.New(storage.NewMemory(), nil)
	if err := store.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func mustCreate(t *testing.T, store *tasks.Store, text string, opts tasks.CreateOptions) model.Task {
	t.Helper()
	task, err := store.Create(t.Context(), text, opts)
	if err != nil {
		t.Fatalf("create %q: %v", text, err)
	}
	return task
}

func mustGet(t *testing.T, store *tasks.Store, id string) model.Task {
	t.Helper()
	task, err := store.Get(id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return task
}
