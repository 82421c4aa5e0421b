package highlight

import (
	"sort"
	"sync"
	"time"
)

type Kind string

const (
	KindTimer Kind = "timer"
	KindAlarm Kind = "alarm"
)

// Hint is a transient glow a presentation layer may draw around a task.
type Hint struct {
	TaskID    string    `json:"taskId"`
	Kind      Kind      `json:"kind"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Tracker holds at most one hint per task. Expired hints are pruned on read.
type Tracker struct {
	mu    sync.Mutex
	hints map[string]Hint
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{hints: make(map[string]Hint), now: time.Now}
}

func (t *Tracker) SetClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Flash replaces any hint for taskID.
func (t *Tracker) Flash(taskID string, kind Kind, d time.Duration) {
	if taskID == "" || d <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hints[taskID] = Hint{TaskID: taskID, Kind: kind, ExpiresAt: t.now().Add(d)}
}

func (t *Tracker) Active(taskID string) (Hint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.hints[taskID]
	if !ok {
		return Hint{}, false
	}
	if !t.now().Before(h.ExpiresAt) {
		delete(t.hints, taskID)
		return Hint{}, false
	}
	return h, true
}

// Snapshot returns live hints ordered by task id.
func (t *Tracker) Snapshot() []Hint {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	out := make([]Hint, 0, len(t.hints))
	for id, h := range t.hints {
		if !now.Before(h.ExpiresAt) {
			delete(t.hints, id)
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskID < out[j].TaskID })
	return out
}

// Clear drops the hint for a removed task.
func (t *Tracker) Clear(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hints, taskID)
}
