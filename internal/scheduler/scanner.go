package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

const (
	DefaultScanInterval = 30 * time.Second
	MaxScanInterval     = time.Minute
)

// Scanner fires daily alarms. Each armed task fires at most once per
// calendar day and clock time; the dedup set is emptied at local midnight.
type Scanner struct {
	store    *tasks.Store
	deps     Deps
	logger   logrus.FieldLogger
	interval time.Duration
	onFired  func(model.Task)

	mu    sync.Mutex
	fired map[string]struct{}

	runMu   sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	now func() time.Time
}

// NewScanner clamps interval to (0, MaxScanInterval]; zero selects
// DefaultScanInterval.
func NewScanner(store *tasks.Store, deps Deps, interval time.Duration) *Scanner {
	deps = deps.withDefaults(DefaultAlarmHighlight)
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	if interval > MaxScanInterval {
		interval = MaxScanInterval
	}
	return &Scanner{
		store:    store,
		deps:     deps,
		logger:   deps.Logger.WithField("component", "alarms"),
		interval: interval,
		fired:    make(map[string]struct{}),
		now:      time.Now,
	}
}

func (s *Scanner) Interval() time.Duration { return s.interval }

// OnAlarmFired registers a hook run after each alarm fires. Set it before
// Start.
func (s *Scanner) OnAlarmFired(fn func(model.Task)) { s.onFired = fn }

func (s *Scanner) SetClock(now func() time.Time) { s.now = now }

func alarmKey(taskID string, now time.Time) string {
	return taskID + "@" + model.DayKey(now) + "T" + model.ClockString(now)
}

// Scan fires every armed, incomplete task whose alarm matches now's HH:MM and
// has not fired yet today. It returns the ids fired.
func (s *Scanner) Scan(now time.Time) []string {
	var due []model.Task
	s.mu.Lock()
	for _, t := range s.store.List(tasks.ListFilter{}) {
		if t.Completed || !t.AlarmArmed() {
			continue
		}
		clock, err := model.ParseAlarmClock(t.AlarmTime)
		if err != nil || !clock.Matches(now) {
			continue
		}
		key := alarmKey(t.ID, now)
		if _, seen := s.fired[key]; seen {
			continue
		}
		s.fired[key] = struct{}{}
		due = append(due, t)
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(due))
	for _, t := range due {
		s.fire(t)
		ids = append(ids, t.ID)
	}
	return ids
}

func (s *Scanner) fire(t model.Task) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.WithField("task_id", t.ID).Errorf("alarm callback panicked: %v", rec)
		}
	}()

	s.deps.Observer.AlarmFired()
	playAlert(s.deps.Alerter, s.logger)
	s.deps.Emitter.Emit(model.Notification{
		Type:    model.NotificationAlarm,
		Title:   "Alarm",
		Message: fmt.Sprintf("%q - It's %s! Time to take action!", t.Text, t.AlarmTime),
		TaskID:  t.ID,
		Native:  true,
	})
	s.deps.Highlights.Flash(t.ID, highlight.KindAlarm, s.deps.HighlightFor)
	s.logger.WithFields(logrus.Fields{"task_id": t.ID, "alarm": t.AlarmTime}).Info("alarm fired")
	if s.onFired != nil {
		s.onFired(t)
	}
}

// ResetDedup forgets which alarms fired.
func (s *Scanner) ResetDedup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = make(map[string]struct{})
}

func (s *Scanner) FiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fired)
}

// Start scans immediately, then on every tick, and clears the dedup set at
// each local midnight.
func (s *Scanner) Start() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

func (s *Scanner) Stop() {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.runMu.Unlock()
	<-done
}

func (s *Scanner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	s.Scan(s.now())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	midnight := time.NewTimer(time.Until(model.NextMidnight(s.now())))
	defer midnight.Stop()
	var daily *time.Ticker
	var dailyC <-chan time.Time
	defer func() {
		if daily != nil {
			daily.Stop()
		}
	}()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Scan(s.now())
		case <-midnight.C:
			s.ResetDedup()
			s.logger.Debug("alarm dedup reset")
			daily = time.NewTicker(24 * time.Hour)
			dailyC = daily.C
		case <-dailyC:
			s.ResetDedup()
			s.logger.Debug("alarm dedup reset")
		}
	}
}
