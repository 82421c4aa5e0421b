package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority  = errors.New("model: invalid task priority")
	ErrInvalidAlarmTime = errors.New("model: invalid alarm time")
	ErrInvalidDuration  = errors.New("model: invalid timer duration")
)

// ValidationError reports input that was rejected before any state changed.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority accepts any casing; an empty value yields PriorityMedium.
func ParsePriority(raw string) (Priority, error) {
	v := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return PriorityMedium, nil
	}
	if !v.IsValid() {
		return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of low, medium, high", raw), Err: ErrInvalidPriority}
	}
	return v, nil
}

const DefaultCategory = "Personal"

// Categories lists the labels offered by the dashboard. Other values are accepted.
var Categories = []string{"Work", "Personal", "Health", "Learning", "Shopping", "Other"}

type Task struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	Completed      bool       `json:"completed"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	Priority       Priority   `json:"priority"`
	Category       string     `json:"category"`
	Timer          int        `json:"timer,omitempty"`
	TimerEndsAt    *time.Time `json:"timerEndsAt,omitempty"`
	IsTimerRunning bool       `json:"isTimerRunning,omitempty"`
	AlarmTime      string     `json:"alarmTime,omitempty"`
	HasAlarm       bool       `json:"hasAlarm,omitempty"`
	Tags           []string   `json:"tags"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	EstimatedTime  int        `json:"estimatedTime,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return &ValidationError{Field: "id", Reason: "id is required"}
	}
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Field: "text", Reason: "text is required"}
	}
	if !t.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q", t.Priority), Err: ErrInvalidPriority}
	}
	if t.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Reason: "createdAt is required"}
	}
	if t.Completed && t.CompletedAt == nil {
		return &ValidationError{Field: "completedAt", Reason: "completedAt is required when completed"}
	}
	if !t.Completed && t.CompletedAt != nil {
		return &ValidationError{Field: "completedAt", Reason: "completedAt must be empty when not completed"}
	}
	if t.AlarmTime != "" {
		if _, err := ParseAlarmClock(t.AlarmTime); err != nil {
			return err
		}
	}
	if t.HasAlarm && t.AlarmTime == "" {
		return &ValidationError{Field: "alarmTime", Reason: "hasAlarm requires alarmTime", Err: ErrInvalidAlarmTime}
	}
	if t.Timer < 0 {
		return &ValidationError{Field: "timer", Reason: "timer must not be negative", Err: ErrInvalidDuration}
	}
	return nil
}

// Clone returns a copy that shares no pointers or slices with t.
func (t Task) Clone() Task {
	out := t
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.TimerEndsAt = cloneTime(t.TimerEndsAt)
	out.DueDate = cloneTime(t.DueDate)
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	return out
}

// AlarmArmed reports whether the alarm scanner should consider this task.
func (t Task) AlarmArmed() bool {
	return !t.Completed && t.HasAlarm && t.AlarmTime != ""
}

// Remaining is the time left on the live countdown, or zero.
func (t Task) Remaining(now time.Time) time.Duration {
	if !t.IsTimerRunning || t.TimerEndsAt == nil {
		return 0
	}
	left := t.TimerEndsAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	p := plain(t)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return json.Marshal(p)
}

// UnmarshalJSON also accepts the legacy "alarm" field, which older
// dashboards wrote as either an "HH:MM" string or a bare boolean.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	aux := struct {
		*plain
		Alarm json.RawMessage `json:"alarm,omitempty"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if t.AlarmTime == "" && len(aux.Alarm) > 0 {
		var legacy string
		if json.Unmarshal(aux.Alarm, &legacy) == nil {
			if clock, err := ParseAlarmClock(legacy); err == nil {
				t.AlarmTime = clock.String()
				t.HasAlarm = true
			}
		}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}

// NormalizeTags trims, strips a leading '#', and drops blanks and duplicates
// while keeping first-seen order.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		tag := strings.TrimPrefix(strings.TrimSpace(raw), "#")
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
