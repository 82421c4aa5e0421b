package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

// Emitter accepts fire-and-forget notification events.
type Emitter interface {
	Emit(n model.Notification)
}

type EmitterFunc func(model.Notification)

func (f EmitterFunc) Emit(n model.Notification) { f(n) }

// Sender delivers a notification outside the process.
type Sender interface {
	Send(ctx context.Context, n model.Notification) error
}

func stamp(n model.Notification, now time.Time) model.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	return n
}
