package notify

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

const DefaultNativeTimeout = 5 * time.Second

// Fanout delivers every notification in-app, and those marked Native also to
// each Sender in the background. Native failures never reach the caller.
type Fanout struct {
	inApp   Emitter
	senders []Sender
	timeout time.Duration
	logger  logrus.FieldLogger
	wg      sync.WaitGroup
}

func NewFanout(inApp Emitter, logger logrus.FieldLogger, timeout time.Duration, senders ...Sender) *Fanout {
	if timeout <= 0 {
		timeout = DefaultNativeTimeout
	}
	active := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			active = append(active, s)
		}
	}
	return &Fanout{
		inApp:   inApp,
		senders: active,
		timeout: timeout,
		logger:  logger.WithField("component", "notify"),
	}
}

func (f *Fanout) Emit(n model.Notification) {
	n = stamp(n, time.Now())
	if f.inApp != nil {
		f.inApp.Emit(n)
	}
	if !n.Native {
		return
	}
	for _, s := range f.senders {
		f.wg.Add(1)
		go func(s Sender) {
			defer f.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
			defer cancel()
			if err := s.Send(ctx, n); err != nil {
				f.logger.WithError(err).WithField("title", n.Title).Debug("native notification failed")
			}
		}(s)
	}
}

// Wait blocks until in-flight native sends finish.
func (f *Fanout) Wait() {
	f.wg.Wait()
}
