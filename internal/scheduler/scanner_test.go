package scheduler

import (
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

func at(day, hour, minute, second int) time.Time {
	return time.Date(2026, 3, day, hour, minute, second, 0, time.Local)
}

func TestScanFiresOncePerDay(t *testing.T) {
	store := newTestStore(t)
	rec := &recorder{}
	observer := &countingObserver{}
	hl := highlight.NewTracker()
	scanner := NewScanner(store, Deps{Emitter: rec, Observer: observer, Highlights: hl}, 0)
	task := mustCreate(t, store, "Stand-up", tasks.CreateOptions{AlarmTime: "9:30"})

	if got := scanner.Scan(at(2, 9, 29, 59)); len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}
	if got := scanner.Scan(at(2, 9, 30, 5)); len(got) != 1 || got[0] != task.ID {
		t.Fatalf("expected alarm to fire, got %v", got)
	}
	if got := scanner.Scan(at(2, 9, 30, 45)); len(got) != 0 {
		t.Fatalf("expected dedup within the minute, got %v", got)
	}
	if got := scanner.Scan(at(2, 9, 31, 0)); len(got) != 0 {
		t.Fatalf("fired after the minute passed: %v", got)
	}
	if got := scanner.Scan(at(3, 9, 30, 0)); len(got) != 1 {
		t.Fatalf("expected alarm again next day, got %v", got)
	}

	if observer.alarms.Load() != 2 {
		t.Fatalf("expected two alarms observed, got %d", observer.alarms.Load())
	}
	n, ok := rec.find("Alarm")
	if !ok || n.Type != model.NotificationAlarm || !n.Native || n.TaskID != task.ID {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if !strings.Contains(n.Message, `"Stand-up"`) || !strings.HasSuffix(n.Message, "Time to take action!") {
		t.Fatalf("unexpected message: %q", n.Message)
	}
	if h, ok := hl.Active(task.ID); !ok || h.Kind != highlight.KindAlarm {
		t.Fatal("expected alarm highlight")
	}
}

func TestScanResetDedupAllowsRefire(t *testing.T) {
	store := newTestStore(t)
	scanner := NewScanner(store, Deps{}, time.Minute)
	mustCreate(t, store, "Meds", tasks.CreateOptions{AlarmTime: "21:00"})

	now := at(4, 21, 0, 0)
	if len(scanner.Scan(now)) != 1 {
		t.Fatal("expected first fire")
	}
	if scanner.FiredCount() != 1 {
		t.Fatalf("expected one dedup entry, got %d", scanner.FiredCount())
	}
	scanner.ResetDedup()
	if len(scanner.Scan(now)) != 1 {
		t.Fatal("expected fire after reset")
	}
}

func TestScanSkipsCompletedAndDisarmed(t *testing.T) {
	store := newTestStore(t)
	scanner := NewScanner(store, Deps{}, 0)
	done := mustCreate(t, store, "Done", tasks.CreateOptions{AlarmTime: "08:00"})
	cleared := mustCreate(t, store, "Cleared", tasks.CreateOptions{AlarmTime: "08:00"})
	mustCreate(t, store, "No alarm", tasks.CreateOptions{})

	if _, err := store.ToggleComplete(t.Context(), done.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := store.SetAlarm(t.Context(), cleared.ID, ""); err != nil {
		t.Fatalf("clear alarm: %v", err)
	}
	if got := scanner.Scan(at(5, 8, 0, 0)); len(got) != 0 {
		t.Fatalf("expected nothing to fire, got %v", got)
	}
}

func TestAlarmLeavesCountdownRunning(t *testing.T) {
	store := newTestStore(t)
	reg, _, _, _ := newTestRegistry(t, store, &recorder{})
	var hooked []string
	scanner := NewScanner(store, Deps{}, 0)
	scanner.OnAlarmFired(func(task model.Task) { hooked = append(hooked, task.ID) })
	task := mustCreate(t, store, "Focus", tasks.CreateOptions{AlarmTime: "14:15"})

	if err := reg.Start(task.ID, time.Hour); err != nil {
		t.Fatalf("start: %v", err)
	}
	scanner.Scan(at(6, 14, 15, 0))
	if len(hooked) != 1 || hooked[0] != task.ID {
		t.Fatalf("expected hook for %s, got %v", task.ID, hooked)
	}
	if !mustGet(t, store, task.ID).IsTimerRunning || !reg.Running(task.ID) {
		t.Fatal("alarm must not touch the countdown")
	}
}

func TestScannerStartScansImmediately(t *testing.T) {
	store := newTestStore(t)
	rec := &recorder{}
	scanner := NewScanner(store, Deps{Emitter: rec}, time.Minute)
	fixed := at(7, 7, 45, 0)
	scanner.SetClock(func() time.Time { return fixed })
	mustCreate(t, store, "Run", tasks.CreateOptions{AlarmTime: "07:45"})

	scanner.Start()
	scanner.Start()
	t.Cleanup(scanner.Stop)
	waitFor(t, time.Second, func() bool { return rec.count("Alarm") == 1 })
	scanner.Stop()
	scanner.Stop()
}

func TestNewScannerClampsInterval(t *testing.T) {
	store := newTestStore(t)
	if got := NewScanner(store, Deps{}, 0).Interval(); got != DefaultScanInterval {
		t.Fatalf("expected default interval, got %s", got)
	}
	if got := NewScanner(store, Deps{}, 5*time.Minute).Interval(); got != MaxScanInterval {
		t.Fatalf("expected clamp to %s, got %s", MaxScanInterval, got)
	}
}
