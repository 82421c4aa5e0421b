package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidNotificationType = errors.New("model: invalid notification type")

type NotificationType string

const (
	NotificationAlarm    NotificationType = "alarm"
	NotificationReminder NotificationType = "reminder"
	NotificationSuccess  NotificationType = "success"
	NotificationWarning  NotificationType = "warning"
	NotificationInfo     NotificationType = "info"
)

func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationAlarm, NotificationReminder, NotificationSuccess, NotificationWarning, NotificationInfo:
		return true
	default:
		return false
	}
}

// Notification is one toast event. Native asks the emitter to also deliver
// it through OS-level channels; it is never serialized.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	TaskID    string           `json:"taskId,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Native    bool             `json:"-"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.New("model: notification title is required")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	return nil
}
