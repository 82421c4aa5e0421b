package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/config"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Storage.Driver = "file"
	cfg.Storage.Path = filepath.Join(cfg.Paths.DataDir, "local_storage.json")
	cfg.Notifications.Desktop = false
	cfg.Audio.Mode = "off"
	return &cfg
}

func TestNewWiresEngine(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a.Start()
	a.Start()

	task, err := a.Store.Create(t.Context(), "Focus", tasks.CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := a.Timers.Start(task.ID, 20*time.Millisecond); err != nil {
		t.Fatalf("start timer: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for {
		var done bool
		for _, n := range a.Feed.Recent(0) {
			if n.Title == "Timer Complete!" {
				done = true
			}
		}
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timer completion never reached the feed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := a.Highlights.Active(task.ID); !ok {
		t.Fatal("expected highlight after completion")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCloseClearsRunningFlagsAndPersists(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	task, err := a.Store.Create(t.Context(), "Long", tasks.CreateOptions{TimerSeconds: 3600})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !task.IsTimerRunning {
		t.Fatal("expected running countdown")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := New(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	restored, err := b.Store.Get(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if restored.IsTimerRunning || restored.Timer != 3600 {
		t.Fatalf("expected restored idle task with timer length, got %+v", restored)
	}
	if latest, ok := b.Store.Latest(); !ok || latest.ID != task.ID {
		t.Fatal("expected latest task restored")
	}
}

func TestDismissAlarmToast(t *testing.T) {
	cfg := testConfig(t)
	a, err := New(t.Context(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	a.Notifier.Emit(model.Notification{Type: model.NotificationAlarm, Title: "Alarm", Message: "wake"})
	items := a.Feed.Active(time.Now())
	if len(items) != 1 {
		t.Fatalf("expected one toast, got %d", len(items))
	}
	if !a.Feed.Dismiss(items[0].ID) {
		t.Fatal("expected dismiss to succeed")
	}
}

func TestNewRejectsBadStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "postgres"
	if _, err := New(t.Context(), cfg, nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := New(t.Context(), nil, nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}
