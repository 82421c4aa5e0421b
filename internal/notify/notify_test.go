package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

func TestFeedActiveExpiresAfterTTL(t *testing.T) {
	base := time.Date(2026, 2, 9, 9, 0, 0, 0, time.UTC)
	now := base
	feed := NewFeed(5*time.Second, 10)
	feed.SetClock(func() time.Time { return now })

	feed.Emit(model.Notification{Title: "first", Type: model.NotificationInfo})
	now = base.Add(3 * time.Second)
	feed.Emit(model.Notification{Title: "second", Type: model.NotificationSuccess})

	active := feed.Active(base.Add(4 * time.Second))
	if len(active) != 2 || active[0].Title != "second" {
		t.Fatalf("unexpected active toasts: %+v", active)
	}
	if active[0].ID == "" || active[0].Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp to be stamped: %+v", active[0])
	}

	active = feed.Active(base.Add(6 * time.Second))
	if len(active) != 1 || active[0].Title != "second" {
		t.Fatalf("expected only second toast after ttl, got %+v", active)
	}
	if got := len(feed.Recent(0)); got != 2 {
		t.Fatalf("expected history to keep both, got %d", got)
	}
}

func TestFeedBoundsHistory(t *testing.T) {
	feed := NewFeed(time.Second, 3)
	for _, title := range []string{"a", "b", "c", "d"} {
		feed.Emit(model.Notification{Title: title})
	}
	recent := feed.Recent(0)
	if len(recent) != 3 || recent[0].Title != "d" || recent[2].Title != "b" {
		t.Fatalf("unexpected history: %+v", recent)
	}
}

func TestFeedDismissRunsHook(t *testing.T) {
	feed := NewFeed(time.Minute, 10)
	var dismissed []string
	feed.OnDismiss(func(n model.Notification) { dismissed = append(dismissed, n.Title) })
	feed.Emit(model.Notification{ID: "n1", Title: "Alarm", Type: model.NotificationAlarm})

	if !feed.Dismiss("n1") {
		t.Fatal("expected dismiss to succeed")
	}
	if feed.Dismiss("n1") {
		t.Fatal("expected second dismiss to report missing")
	}
	if len(dismissed) != 1 || dismissed[0] != "Alarm" {
		t.Fatalf("unexpected hook calls: %v", dismissed)
	}
}

func TestFeedSubscribe(t *testing.T) {
	feed := NewFeed(time.Minute, 10)
	ch, cancel := feed.Subscribe(1)
	feed.Emit(model.Notification{Title: "one"})
	feed.Emit(model.Notification{Title: "two"})

	got := <-ch
	if got.Title != "one" {
		t.Fatalf("unexpected event: %+v", got)
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatal("expected channel closed after cancel")
	}
	feed.Emit(model.Notification{Title: "three"})
}

func TestDesktopPermissionFlow(t *testing.T) {
	var calls [][]string
	d := NewDesktop(true)
	d.goos = "linux"
	d.lookPath = func(string) (string, error) { return "/usr/bin/notify-send", nil }
	d.run = func(_ context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}

	if d.Permission() != PermissionDefault {
		t.Fatalf("expected default permission, got %s", d.Permission())
	}
	if err := d.Send(t.Context(), model.Notification{Title: "x"}); err != nil || len(calls) != 0 {
		t.Fatalf("expected no send before permission, err=%v calls=%v", err, calls)
	}
	if d.RequestPermission() != PermissionGranted {
		t.Fatal("expected permission to be granted")
	}
	if err := d.Send(t.Context(), model.Notification{Title: "Alarm", Message: "wake", Type: model.NotificationAlarm}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(calls) != 1 || calls[0][0] != "notify-send" || calls[0][3] != "critical" || calls[0][4] != "Alarm" {
		t.Fatalf("unexpected command: %v", calls)
	}
}

func TestDesktopDeniedWhenBinaryMissing(t *testing.T) {
	d := NewDesktop(true)
	d.goos = "linux"
	d.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	d.run = func(context.Context, string, ...string) error {
		t.Fatal("runner must not be called when denied")
		return nil
	}
	if d.RequestPermission() != PermissionDenied {
		t.Fatal("expected denied permission")
	}
	if err := d.Send(t.Context(), model.Notification{Title: "x"}); err != nil {
		t.Fatalf("denied send must be silent, got %v", err)
	}

	disabled := NewDesktop(false)
	if disabled.RequestPermission() != PermissionDenied {
		t.Fatal("disabled desktop must stay denied")
	}
}

func TestEscapeAppleScript(t *testing.T) {
	if got := escapeAppleScript(`say "hi" \o/`); got != `say \"hi\" \\o/` {
		t.Fatalf("unexpected escape: %s", got)
	}
}

func TestNtfySend(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL+"/focus", time.Second)
	err := n.Send(t.Context(), model.Notification{Title: "Alarm", Message: "Stand up", Type: model.NotificationAlarm})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotTitle != "Alarm" || gotBody != "Stand up" || gotPriority != "high" || gotTags != "focusdeck,alarm_clock" {
		t.Fatalf("unexpected request: title=%q body=%q priority=%q tags=%q", gotTitle, gotBody, gotPriority, gotTags)
	}
}

func TestNtfyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()
	if err := NewNtfy(srv.URL, time.Second).Send(t.Context(), model.Notification{Title: "x"}); err == nil {
		t.Fatal("expected error for 403")
	}
	if NewNtfy("  ", time.Second) != nil {
		t.Fatal("expected nil ntfy for empty topic")
	}
}

type fakeSender struct {
	mu   sync.Mutex
	got  []model.Notification
	fail bool
}

func (f *fakeSender) Send(_ context.Context, n model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, n)
	if f.fail {
		return errors.New("boom")
	}
	return nil
}

func TestFanoutNativeOnlyWhenMarked(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	feed := NewFeed(time.Minute, 10)
	ok := &fakeSender{}
	bad := &fakeSender{fail: true}
	fan := NewFanout(feed, logger, time.Second, ok, bad, nil)

	fan.Emit(model.Notification{Title: "Task Added", Type: model.NotificationSuccess})
	fan.Emit(model.Notification{Title: "Timer Complete!", Type: model.NotificationSuccess, Native: true})
	fan.Wait()

	if got := len(feed.Recent(0)); got != 2 {
		t.Fatalf("expected both in-app, got %d", got)
	}
	if len(ok.got) != 1 || ok.got[0].Title != "Timer Complete!" {
		t.Fatalf("unexpected native deliveries: %+v", ok.got)
	}
	if ok.got[0].ID != feed.Recent(1)[0].ID {
		t.Fatal("expected native and in-app to share an id")
	}
	if len(bad.got) != 1 {
		t.Fatalf("expected failing sender to be attempted once, got %d", len(bad.got))
	}
	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "native notification failed" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected native failure to be logged")
	}
}
