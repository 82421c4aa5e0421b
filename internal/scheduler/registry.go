package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/audio"
	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/notify"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

var (
	ErrUnknownTask   = errors.New("scheduler: unknown task")
	ErrTaskCompleted = errors.New("scheduler: task already completed")
	ErrClosed        = errors.New("scheduler: registry closed")
)

const (
	KindTimer = "timer"

	DefaultTimerHighlight = 5 * time.Second
	DefaultAlarmHighlight = 10 * time.Second
	alertTimeout          = 5 * time.Second
)

// Observer receives engine activity for metrics.
type Observer interface {
	TimersActive(n int)
	TimerCompleted()
	AlarmFired()
}

type noopObserver struct{}

func (noopObserver) TimersActive(int) {}
func (noopObserver) TimerCompleted()  {}
func (noopObserver) AlarmFired()      {}

// Deps are the collaborators notified when a countdown or alarm fires.
// Nil members are replaced with no-ops.
type Deps struct {
	Alerter      audio.Alerter
	Emitter      notify.Emitter
	Highlights   *highlight.Tracker
	Observer     Observer
	Logger       logrus.FieldLogger
	HighlightFor time.Duration
}

func (d Deps) withDefaults(highlightFor time.Duration) Deps {
	if d.Alerter == nil {
		d.Alerter = audio.Noop{}
	}
	if d.Emitter == nil {
		d.Emitter = notify.EmitterFunc(func(model.Notification) {})
	}
	if d.Highlights == nil {
		d.Highlights = highlight.NewTracker()
	}
	if d.Observer == nil {
		d.Observer = noopObserver{}
	}
	if d.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Logger = l
	}
	if d.HighlightFor <= 0 {
		d.HighlightFor = highlightFor
	}
	return d
}

type timerHandle struct {
	generation uint64
	eventID    string
	duration   time.Duration
	endsAt     time.Time
}

// ActiveTimer describes one live countdown.
type ActiveTimer struct {
	TaskID   string        `json:"taskId"`
	Duration time.Duration `json:"duration"`
	EndsAt   time.Time     `json:"endsAt"`
}

// Registry owns at most one live countdown per task. Countdowns use
// deadline semantics: one event fires after the full duration and the
// task's timer field records the configured length. The engine runs on the
// store's clock, so timerEndsAt is exactly when the event fires.
//
// Lock order is registry, then store. The store never calls back into the
// registry while holding its own lock.
type Registry struct {
	mu      sync.Mutex
	store   *tasks.Store
	engine  *Engine
	handles map[string]timerHandle
	gen     uint64
	closed  bool
	done    chan struct{}
	deps    Deps
	logger  logrus.FieldLogger
}

// NewRegistry starts the backing engine and its dispatcher.
func NewRegistry(store *tasks.Store, deps Deps) *Registry {
	deps = deps.withDefaults(DefaultTimerHighlight)
	r := &Registry{
		store:   store,
		engine:  NewEngine(16),
		handles: make(map[string]timerHandle),
		done:    make(chan struct{}),
		deps:    deps,
		logger:  deps.Logger.WithField("component", "timers"),
	}
	r.engine.SetClock(store.Now)
	r.engine.Start()
	go r.run()
	return r
}

func timerEventID(taskID string) string { return "timer:" + taskID }

// Start schedules a countdown of d for taskID, replacing any live one.
func (r *Registry) Start(taskID string, d time.Duration) error {
	if d <= 0 {
		return &model.ValidationError{Field: "duration", Reason: fmt.Sprintf("%s is not positive", d), Err: model.ErrInvalidDuration}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	endsAt := r.store.Now().Add(d)
	_, err := r.store.Update(context.Background(), taskID, func(t *model.Task) error {
		if t.Completed {
			return ErrTaskCompleted
		}
		t.IsTimerRunning = true
		t.Timer = int(d / time.Second)
		t.TimerEndsAt = &endsAt
		return nil
	})
	if err != nil {
		log := r.logger.WithField("task_id", taskID)
		switch {
		case errors.Is(err, tasks.ErrNotFound):
			log.Warn("timer start ignored for unknown task")
			return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
		case errors.Is(err, ErrTaskCompleted):
			log.Warn("timer start ignored for completed task")
			return err
		default:
			return err
		}
	}

	if old, ok := r.handles[taskID]; ok {
		r.engine.Cancel(old.eventID)
		delete(r.handles, taskID)
	}
	r.gen++
	h := timerHandle{generation: r.gen, eventID: timerEventID(taskID), duration: d, endsAt: endsAt}
	ev := Event{ID: h.eventID, TaskID: taskID, Kind: KindTimer, Generation: h.generation, TriggerAt: endsAt}
	if err := r.engine.Schedule(ev); err != nil {
		r.clearFlagLocked(taskID)
		r.deps.Observer.TimersActive(len(r.handles))
		return fmt.Errorf("schedule timer: %w", err)
	}
	r.handles[taskID] = h
	r.deps.Observer.TimersActive(len(r.handles))
	r.logger.WithFields(logrus.Fields{"task_id": taskID, "duration": d.String()}).Debug("timer started")
	return nil
}

// Stop cancels the live countdown if there is one and clears the running
// flag. It reports whether a countdown was cancelled; only then is the
// "stopped" notification emitted.
func (r *Registry) Stop(taskID string) bool {
	r.mu.Lock()
	h, ok := r.handles[taskID]
	if ok {
		r.engine.Cancel(h.eventID)
		delete(r.handles, taskID)
	}
	task, found := r.clearFlagLocked(taskID)
	active := len(r.handles)
	r.mu.Unlock()

	if !ok {
		return false
	}
	r.deps.Observer.TimersActive(active)
	message := "Focus session paused. You can restart it anytime!"
	if found {
		message = fmt.Sprintf("Focus session on %q paused. You can restart it anytime!", task.Text)
	}
	r.deps.Emitter.Emit(model.Notification{
		Type:    model.NotificationInfo,
		Title:   "Timer Stopped",
		Message: message,
		TaskID:  taskID,
	})
	r.logger.WithField("task_id", taskID).Debug("timer stopped")
	return true
}

// Forget drops taskID's countdown without touching the store or emitting a
// notification. The store calls it after a task has been removed.
func (r *Registry) Forget(taskID string) bool {
	r.mu.Lock()
	h, ok := r.handles[taskID]
	if ok {
		r.engine.Cancel(h.eventID)
		delete(r.handles, taskID)
	}
	active := len(r.handles)
	r.mu.Unlock()

	if ok {
		r.deps.Observer.TimersActive(active)
		r.logger.WithField("task_id", taskID).Debug("timer dropped for removed task")
	}
	return ok
}

func (r *Registry) clearFlagLocked(taskID string) (model.Task, bool) {
	task, err := r.store.Update(context.Background(), taskID, func(t *model.Task) error {
		if !t.IsTimerRunning && t.TimerEndsAt == nil {
			return tasks.ErrNoChange
		}
		t.IsTimerRunning = false
		t.TimerEndsAt = nil
		return nil
	})
	if err != nil {
		if !errors.Is(err, tasks.ErrNotFound) {
			r.logger.WithError(err).WithField("task_id", taskID).Warn("clear running flag failed")
		}
		return model.Task{}, false
	}
	return task, true
}

func (r *Registry) Running(taskID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[taskID]
	return ok
}

// Remaining is the time left on taskID's countdown.
func (r *Registry) Remaining(taskID string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[taskID]
	if !ok {
		return 0, false
	}
	left := h.endsAt.Sub(r.store.Now())
	if left < 0 {
		left = 0
	}
	return left, true
}

// Active lists live countdowns, soonest first.
func (r *Registry) Active() []ActiveTimer {
	r.mu.Lock()
	out := make([]ActiveTimer, 0, len(r.handles))
	for id, h := range r.handles {
		out = append(out, ActiveTimer{TaskID: id, Duration: h.duration, EndsAt: h.endsAt})
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out
}

// Close cancels every countdown, clears the running flags, and stops the
// engine. Nothing fires after Close returns.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for id, h := range r.handles {
		r.engine.Cancel(h.eventID)
		delete(r.handles, id)
		r.clearFlagLocked(id)
	}
	r.mu.Unlock()

	r.engine.Stop()
	<-r.done
	r.deps.Observer.TimersActive(0)
}

func (r *Registry) run() {
	defer close(r.done)
	for ev := range r.engine.C() {
		r.dispatch(ev)
	}
}

func (r *Registry) dispatch(ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WithField("task_id", ev.TaskID).Errorf("timer callback panicked: %v", rec)
		}
	}()

	r.mu.Lock()
	h, ok := r.handles[ev.TaskID]
	if r.closed || !ok || h.generation != ev.Generation {
		r.mu.Unlock()
		r.logger.WithField("task_id", ev.TaskID).Debug("stale timer event ignored")
		return
	}
	delete(r.handles, ev.TaskID)
	task, found := r.clearFlagLocked(ev.TaskID)
	active := len(r.handles)
	r.mu.Unlock()

	r.deps.Observer.TimersActive(active)
	if !found {
		return
	}
	r.deps.Observer.TimerCompleted()
	playAlert(r.deps.Alerter, r.logger)
	r.deps.Emitter.Emit(model.Notification{
		Type:    model.NotificationSuccess,
		Title:   "Timer Complete!",
		Message: fmt.Sprintf("%q - %s timer finished! Great focus session!", task.Text, formatDuration(h.duration)),
		TaskID:  task.ID,
		Native:  true,
	})
	r.deps.Highlights.Flash(task.ID, highlight.KindTimer, r.deps.HighlightFor)
	r.logger.WithField("task_id", task.ID).Info("timer complete")
}

// playAlert swallows playback failures; a missing speaker must not stop the
// notification that follows.
func playAlert(a audio.Alerter, logger logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
	defer cancel()
	if err := a.PlayAlert(ctx); err != nil {
		logger.WithError(err).Debug("audio alert failed")
	}
}

func formatDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minute", int(d/time.Minute))
	}
	return d.String()
}
