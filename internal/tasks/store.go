package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/notify"
	"github.com/sandeepkv93/focusdeck/internal/storage"
)

// Local storage keys shared with the web dashboard.
const (
	TasksKey      = "dashboard-todos"
	LatestTaskKey = "latest-todo"
)

const persistTimeout = 5 * time.Second

// Timers is the countdown surface the store drives on completion and delete.
// Forget drops a countdown silently and must not write to the store.
type Timers interface {
	Start(taskID string, d time.Duration) error
	Stop(taskID string) bool
	Forget(taskID string) bool
}

// Store owns the ordered task list. Every mutation goes through Update so
// writes from request handlers and timer callbacks are serialized.
type Store struct {
	mu       sync.Mutex
	items    []model.Task
	latestID string
	lastID   int64

	storage storage.Storage
	timers  Timers
	emitter notify.Emitter
	logger  logrus.FieldLogger
	now     func() time.Time
}

func New(st storage.Storage, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Store{
		items:   make([]model.Task, 0),
		storage: st,
		logger:  logger.WithField("component", "tasks"),
		now:     time.Now,
	}
}

// SetTimers wires the countdown registry. Call before serving requests.
func (s *Store) SetTimers(t Timers) { s.timers = t }

func (s *Store) SetEmitter(e notify.Emitter) { s.emitter = e }

func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Now() time.Time { return s.now() }

// Load replaces the in-memory list with the persisted snapshot. Missing or
// corrupt data yields an empty list. Running flags are cleared because no
// countdown survives a restart.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.readSnapshot(ctx)
	if err != nil {
		var perr *PersistenceParseError
		if !errors.As(err, &perr) {
			return err
		}
		s.logger.WithError(err).Warn("stored tasks unreadable; starting empty")
		items = nil
	}

	loaded := make([]model.Task, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	var maxID int64
	for _, t := range items {
		normalizeLoaded(&t)
		if _, dup := seen[t.ID]; dup {
			s.logger.WithField("task_id", t.ID).Warn("dropping duplicate stored task")
			continue
		}
		if err := t.Validate(); err != nil {
			s.logger.WithError(err).WithField("task_id", t.ID).Warn("dropping invalid stored task")
			continue
		}
		seen[t.ID] = struct{}{}
		if n, convErr := strconv.ParseInt(t.ID, 10, 64); convErr == nil && n > maxID {
			maxID = n
		}
		loaded = append(loaded, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = loaded
	s.lastID = maxID
	s.latestID = ""
	if len(loaded) > 0 {
		s.latestID = loaded[len(loaded)-1].ID
	}
	s.logger.WithField("count", len(loaded)).Debug("tasks loaded")
	return nil
}

func (s *Store) readSnapshot(ctx context.Context) ([]model.Task, error) {
	if s.storage == nil {
		return nil, nil
	}
	raw, err := s.storage.GetItem(ctx, TasksKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", TasksKey, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var items []model.Task
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, &PersistenceParseError{Key: TasksKey, Err: err}
	}
	return items, nil
}

func normalizeLoaded(t *model.Task) {
	t.ID = strings.TrimSpace(t.ID)
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = model.DefaultCategory
	}
	if t.Completed && t.CompletedAt == nil {
		at := t.CreatedAt
		t.CompletedAt = &at
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	if t.HasAlarm && t.AlarmTime == "" {
		t.HasAlarm = false
	}
	t.IsTimerRunning = false
	t.TimerEndsAt = nil
	t.Tags = model.NormalizeTags(t.Tags)
}

type CreateOptions struct {
	Priority      string
	Category      string
	Tags          []string
	AlarmTime     string
	TimerSeconds  int
	DueDate       *time.Time
	EstimatedTime int
}

// Create appends a new task. A positive TimerSeconds starts its countdown
// right away.
func (s *Store) Create(ctx context.Context, text string, opts CreateOptions) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, &model.ValidationError{Field: "text", Reason: "text is required"}
	}
	priority, err := model.ParsePriority(opts.Priority)
	if err != nil {
		return model.Task{}, err
	}
	if opts.TimerSeconds < 0 {
		return model.Task{}, &model.ValidationError{Field: "timer", Reason: "duration must be positive", Err: model.ErrInvalidDuration}
	}
	if opts.EstimatedTime < 0 {
		return model.Task{}, &model.ValidationError{Field: "estimatedTime", Reason: "must not be negative"}
	}
	category := strings.TrimSpace(opts.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	alarm := ""
	if strings.TrimSpace(opts.AlarmTime) != "" {
		clock, err := model.ParseAlarmClock(opts.AlarmTime)
		if err != nil {
			return model.Task{}, err
		}
		alarm = clock.String()
	}

	s.mu.Lock()
	now := s.now()
	task := model.Task{
		ID:            s.nextIDLocked(now),
		Text:          text,
		CreatedAt:     now,
		Priority:      priority,
		Category:      category,
		AlarmTime:     alarm,
		HasAlarm:      alarm != "",
		Tags:          model.NormalizeTags(opts.Tags),
		DueDate:       opts.DueDate,
		EstimatedTime: opts.EstimatedTime,
	}
	if err := task.Validate(); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	s.items = append(s.items, task)
	s.latestID = task.ID
	s.persistLocked(ctx)
	s.mu.Unlock()

	message := fmt.Sprintf("Task: %q", task.Text)
	if opts.TimerSeconds > 0 {
		message += fmt.Sprintf(" | Timer: %s", formatMinutes(opts.TimerSeconds))
	}
	if alarm != "" {
		message += " | Alarm: " + alarm
	}
	s.emit(model.Notification{Type: model.NotificationSuccess, Title: "Task Added", Message: message, TaskID: task.ID})

	if opts.TimerSeconds > 0 && s.timers != nil {
		if err := s.timers.Start(task.ID, time.Duration(opts.TimerSeconds)*time.Second); err != nil {
			s.logger.WithError(err).WithField("task_id", task.ID).Warn("start timer for new task failed")
		}
		if current, err := s.Get(task.ID); err == nil {
			return current, nil
		}
	}
	return task.Clone(), nil
}

// nextIDLocked returns a millisecond timestamp id, bumped past the last one
// handed out so ids stay unique and increasing within a process.
func (s *Store) nextIDLocked(now time.Time) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for s.indexLocked(strconv.FormatInt(id, 10)) >= 0 {
		id++
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[idx].Clone(), nil
}

// List returns copies of the tasks matching f, in creation order.
func (s *Store) List(f ListFilter) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.items))
	for _, t := range s.items {
		if !f.Match(t) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// Latest returns the most recently created task that still exists.
func (s *Store) Latest() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.latestID)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.items[idx].Clone(), true
}

// Update applies fn to a copy of the task and commits it only when fn
// returns nil and the result validates. ErrNoChange commits nothing and is
// not reported to the caller.
func (s *Store) Update(ctx context.Context, id string, fn func(*model.Task) error) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := s.items[idx].Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return s.items[idx].Clone(), nil
		}
		return model.Task{}, err
	}
	next.ID = s.items[idx].ID
	next.CreatedAt = s.items[idx].CreatedAt
	if err := next.Validate(); err != nil {
		return model.Task{}, err
	}
	s.items[idx] = next
	s.persistLocked(ctx)
	return next.Clone(), nil
}

// ToggleComplete flips completion. Completing stops the countdown before the
// change is committed, and again after it in case a start raced in.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	current, err := s.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	completing := !current.Completed
	if completing && s.timers != nil {
		s.timers.Stop(id)
	}

	updated, err := s.Update(ctx, id, func(t *model.Task) error {
		t.Completed = !t.Completed
		if t.Completed {
			at := s.now()
			t.CompletedAt = &at
			if s.timers == nil {
				t.IsTimerRunning = false
				t.TimerEndsAt = nil
			}
		} else {
			t.CompletedAt = nil
		}
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}

	if updated.Completed {
		if s.timers != nil && s.timers.Stop(id) {
			if again, getErr := s.Get(id); getErr == nil {
				updated = again
			}
		}
		s.emit(model.Notification{
			Type:    model.NotificationSuccess,
			Title:   "Task Completed!",
			Message: fmt.Sprintf("Great job completing: %q", updated.Text),
			TaskID:  id,
		})
	}
	return updated, nil
}

// Delete stops the countdown before removing the task and drops any
// countdown started in between once it is gone.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if s.timers != nil {
		s.timers.Stop(id)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	if s.latestID == id {
		s.latestID = ""
		if n := len(s.items); n > 0 {
			s.latestID = s.items[n-1].ID
		}
	}
	s.persistLocked(ctx)
	s.mu.Unlock()

	// Drops a countdown started between Stop and the removal.
	if s.timers != nil {
		s.timers.Forget(id)
	}

	s.emit(model.Notification{
		Type:    model.NotificationInfo,
		Title:   "Task Deleted",
		Message: "Task has been removed from your list",
	})
	return nil
}

// SetAlarm sets or, for an empty clock, clears the daily alarm. It never
// fires anything itself.
func (s *Store) SetAlarm(ctx context.Context, id, clock string) (model.Task, error) {
	normalized := ""
	if strings.TrimSpace(clock) != "" {
		c, err := model.ParseAlarmClock(clock)
		if err != nil {
			return model.Task{}, err
		}
		normalized = c.String()
	}
	return s.Update(ctx, id, func(t *model.Task) error {
		if t.AlarmTime == normalized && t.HasAlarm == (normalized != "") {
			return ErrNoChange
		}
		t.AlarmTime = normalized
		t.HasAlarm = normalized != ""
		return nil
	})
}

// EditOptions carries the user-editable fields; nil means unchanged.
type EditOptions struct {
	Text          *string
	Priority      *string
	Category      *string
	Tags          []string
	DueDate       *time.Time
	ClearDueDate  bool
	EstimatedTime *int
}

func (s *Store) Edit(ctx context.Context, id string, opts EditOptions) (model.Task, error) {
	var priority model.Priority
	if opts.Priority != nil {
		p, err := model.ParsePriority(*opts.Priority)
		if err != nil {
			return model.Task{}, err
		}
		priority = p
	}
	if opts.Text != nil && strings.TrimSpace(*opts.Text) == "" {
		return model.Task{}, &model.ValidationError{Field: "text", Reason: "text is required"}
	}
	return s.Update(ctx, id, func(t *model.Task) error {
		if opts.Text != nil {
			t.Text = strings.TrimSpace(*opts.Text)
		}
		if opts.Priority != nil {
			t.Priority = priority
		}
		if opts.Category != nil {
			t.Category = strings.TrimSpace(*opts.Category)
			if t.Category == "" {
				t.Category = model.DefaultCategory
			}
		}
		if opts.Tags != nil {
			t.Tags = model.NormalizeTags(opts.Tags)
		}
		if opts.ClearDueDate {
			t.DueDate = nil
		} else if opts.DueDate != nil {
			due := *opts.DueDate
			t.DueDate = &due
		}
		if opts.EstimatedTime != nil {
			if *opts.EstimatedTime < 0 {
				return &model.ValidationError{Field: "estimatedTime", Reason: "must not be negative"}
			}
			t.EstimatedTime = *opts.EstimatedTime
		}
		return nil
	})
}

// Summary counts tasks for headers and health output.
type Summary struct {
	Total     int
	Completed int
	Running   int
	Alarms    int
}

func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out Summary
	for _, t := range s.items {
		out.Total++
		if t.Completed {
			out.Completed++
		}
		if t.IsTimerRunning {
			out.Running++
		}
		if t.AlarmArmed() {
			out.Alarms++
		}
	}
	return out
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the full list and the latest-task snapshot. Failures
// are logged; in-memory state stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	payload, err := json.Marshal(s.items)
	if err != nil {
		s.logger.WithError(err).Error("encode tasks failed")
		return
	}
	if err := s.storage.SetItem(ctx, TasksKey, string(payload)); err != nil {
		s.logger.WithError(err).Warn("persist tasks failed")
	}

	idx := s.indexLocked(s.latestID)
	if idx < 0 {
		if err := s.storage.RemoveItem(ctx, LatestTaskKey); err != nil {
			s.logger.WithError(err).Warn("clear latest task failed")
		}
		return
	}
	latest, err := json.Marshal(s.items[idx])
	if err != nil {
		s.logger.WithError(err).Error("encode latest task failed")
		return
	}
	if err := s.storage.SetItem(ctx, LatestTaskKey, string(latest)); err != nil {
		s.logger.WithError(err).Warn("persist latest task failed")
	}
}

func (s *Store) emit(n model.Notification) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(n)
}

func formatMinutes(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}
