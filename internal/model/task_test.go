package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "1770638400000",
		Text:      "Write release notes",
		Priority:  PriorityHigh,
		Category:  "Work",
		CreatedAt: now,
		AlarmTime: "09:00",
		HasAlarm:  true,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateCompletedRequiresCompletedAt(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:        "1",
		Text:      "Done task",
		Completed: true,
		Priority:  PriorityMedium,
		CreatedAt: now,
	}
	err := task.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "completedAt" {
		t.Fatalf("expected completedAt validation error, got: %v", err)
	}

	task.Completed = false
	task.CompletedAt = &now
	if err := task.Validate(); err == nil {
		t.Fatal("expected error for completedAt on open task")
	}
}

func TestTaskValidateRejectsBadFields(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{ID: "1", Text: "   ", Priority: PriorityLow, CreatedAt: now}
	var ve *ValidationError
	if err := task.Validate(); !errors.As(err, &ve) || ve.Field != "text" {
		t.Fatalf("expected text validation error, got: %v", err)
	}

	task.Text = "ok"
	task.Priority = Priority("urgent")
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task.Priority = PriorityLow
	task.AlarmTime = "25:00"
	task.HasAlarm = true
	if err := task.Validate(); !errors.Is(err, ErrInvalidAlarmTime) {
		t.Fatalf("expected ErrInvalidAlarmTime, got: %v", err)
	}

	task.AlarmTime = ""
	if err := task.Validate(); !errors.Is(err, ErrInvalidAlarmTime) {
		t.Fatalf("expected hasAlarm without time to fail, got: %v", err)
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]Priority{"": PriorityMedium, "HIGH": PriorityHigh, " low ": PriorityLow}
	for in, want := range cases {
		got, err := ParsePriority(in)
		if err != nil || got != want {
			t.Fatalf("ParsePriority(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParsePriority("critical"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
}

func TestTaskJSONRoundTripPreservesDates(t *testing.T) {
	created := time.Date(2026, 2, 9, 8, 30, 15, 123000000, time.UTC)
	completed := created.Add(90 * time.Minute)
	due := created.Add(48 * time.Hour)
	in := []Task{{
		ID:            "1770625815123",
		Text:          "Ship it",
		Completed:     true,
		CreatedAt:     created,
		CompletedAt:   &completed,
		Priority:      PriorityHigh,
		Category:      "Work",
		Timer:         1500,
		AlarmTime:     "07:45",
		HasAlarm:      true,
		Tags:          []string{"release", "q1"},
		DueDate:       &due,
		EstimatedTime: 45,
	}}

	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []Task
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 task, got %d", len(out))
	}
	got := out[0]
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("createdAt mismatch: %v vs %v", got.CreatedAt, created)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Fatalf("completedAt mismatch: %v", got.CompletedAt)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("dueDate mismatch: %v", got.DueDate)
	}
	if got.Text != "Ship it" || got.Timer != 1500 || got.AlarmTime != "07:45" || !got.HasAlarm || len(got.Tags) != 2 || got.EstimatedTime != 45 {
		t.Fatalf("unexpected round trip: %+v", got)
	}
}

func TestTaskUnmarshalLegacyAlarm(t *testing.T) {
	raw := `{"id":"1","text":"stretch","completed":false,"createdAt":"2026-02-09T12:00:00.000Z","priority":"low","category":"Health","alarm":"7:05"}`
	var task Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if task.AlarmTime != "07:05" || !task.HasAlarm {
		t.Fatalf("expected legacy alarm to map to 07:05, got %q %v", task.AlarmTime, task.HasAlarm)
	}
	if task.Tags == nil {
		t.Fatal("expected tags to default to empty slice")
	}

	raw = `{"id":"2","text":"x","createdAt":"2026-02-09T12:00:00Z","priority":"low","alarm":true}`
	task = Task{}
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		t.Fatalf("unmarshal bool alarm: %v", err)
	}
	if task.HasAlarm || task.AlarmTime != "" {
		t.Fatalf("expected boolean legacy alarm to be ignored, got %+v", task)
	}
}

func TestTaskMarshalEmitsEmptyTags(t *testing.T) {
	raw, err := json.Marshal(Task{ID: "1", Text: "x", Priority: PriorityLow})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tags, ok := generic["tags"].([]any)
	if !ok || len(tags) != 0 {
		t.Fatalf("expected tags: [], got %v", generic["tags"])
	}
}

func TestCloneDoesNotShare(t *testing.T) {
	now := time.Now()
	task := Task{Tags: []string{"a"}, CompletedAt: &now}
	cp := task.Clone()
	cp.Tags[0] = "b"
	*cp.CompletedAt = now.Add(time.Hour)
	if task.Tags[0] != "a" || !task.CompletedAt.Equal(now) {
		t.Fatal("clone shares memory with original")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"#focus", " Focus", "", "deep", "deep"})
	if len(got) != 2 || got[0] != "focus" || got[1] != "deep" {
		t.Fatalf("unexpected tags: %v", got)
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	ends := now.Add(90 * time.Second)
	task := Task{IsTimerRunning: true, TimerEndsAt: &ends}
	if got := task.Remaining(now); got != 90*time.Second {
		t.Fatalf("remaining = %v", got)
	}
	if got := task.Remaining(now.Add(time.Hour)); got != 0 {
		t.Fatalf("expected zero after deadline, got %v", got)
	}
	task.IsTimerRunning = false
	if got := task.Remaining(now); got != 0 {
		t.Fatalf("expected zero when stopped, got %v", got)
	}
}
