package notify

import (
	"sync"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

const (
	DefaultToastTTL = 5 * time.Second
	DefaultHistory  = 50
)

// Feed is the in-app toast layer. Toasts are visible for ttl after they are
// emitted; older entries stay in a bounded history.
type Feed struct {
	mu        sync.Mutex
	items     []model.Notification
	ttl       time.Duration
	max       int
	now       func() time.Time
	subs      map[int]chan model.Notification
	nextSub   int
	onDismiss func(model.Notification)
}

func NewFeed(ttl time.Duration, max int) *Feed {
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	if max <= 0 {
		max = DefaultHistory
	}
	return &Feed{
		ttl:  ttl,
		max:  max,
		now:  time.Now,
		subs: make(map[int]chan model.Notification),
	}
}

func (f *Feed) SetClock(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// OnDismiss registers a hook run after a toast is dismissed.
func (f *Feed) OnDismiss(fn func(model.Notification)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDismiss = fn
}

func (f *Feed) Emit(n model.Notification) {
	f.mu.Lock()
	n = stamp(n, f.now())
	f.items = append(f.items, n)
	if over := len(f.items) - f.max; over > 0 {
		f.items = append([]model.Notification(nil), f.items[over:]...)
	}
	for _, ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
	f.mu.Unlock()
}

// Active returns toasts younger than the TTL, newest first.
func (f *Feed) Active(now time.Time) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Notification, 0)
	for i := len(f.items) - 1; i >= 0; i-- {
		if now.Sub(f.items[i].Timestamp) < f.ttl {
			out = append(out, f.items[i])
		}
	}
	return out
}

// Recent returns up to n entries from history, newest first. n <= 0 means all.
func (f *Feed) Recent(n int) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || n > len(f.items) {
		n = len(f.items)
	}
	out := make([]model.Notification, 0, n)
	for i := len(f.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.items[i])
	}
	return out
}

func (f *Feed) Dismiss(id string) bool {
	f.mu.Lock()
	var removed *model.Notification
	for i := range f.items {
		if f.items[i].ID == id {
			n := f.items[i]
			removed = &n
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	hook := f.onDismiss
	f.mu.Unlock()

	if removed == nil {
		return false
	}
	if hook != nil {
		hook(*removed)
	}
	return true
}

// Subscribe streams new toasts. Slow readers miss events rather than block
// emitters. The returned func unsubscribes and closes the channel.
func (f *Feed) Subscribe(buffer int) (<-chan model.Notification, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan model.Notification, buffer)
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
}
