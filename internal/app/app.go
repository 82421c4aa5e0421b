package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/audio"
	"github.com/sandeepkv93/focusdeck/internal/config"
	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/metrics"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
	"github.com/sandeepkv93/focusdeck/internal/notify"
	"github.com/sandeepkv93/focusdeck/internal/scheduler"
	"github.com/sandeepkv93/focusdeck/internal/storage"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

// App owns every engine component built from one configuration.
type App struct {
	Config     *config.Config
	Logger     logrus.FieldLogger
	Metrics    *metrics.Metrics
	Storage    storage.Storage
	Store      *tasks.Store
	Timers     *scheduler.Registry
	Alarms     *scheduler.Scanner
	Feed       *notify.Feed
	Notifier   *notify.Fanout
	Desktop    *notify.Desktop
	Alerter    audio.Alerter
	Highlights *highlight.Tracker
	Search     *musicsearch.Service

	started bool
}

// New wires the components and restores the task list. Nothing runs in the
// background until Start.
func New(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}

	st, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	alerter, err := audio.New(cfg.Audio.Mode, cfg.Audio.SamplePath, cfg.Audio.Player)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics.New(),
		Storage:    st,
		Alerter:    alerter,
		Highlights: highlight.NewTracker(),
	}

	a.Store = tasks.New(st, logger)
	if err := a.Store.Load(ctx); err != nil {
		_ = a.closeResources()
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	a.Feed = notify.NewFeed(cfg.ToastTTL(), cfg.Notifications.MaxToasts)
	a.Desktop = notify.NewDesktop(cfg.Notifications.Desktop)
	senders := []notify.Sender{a.Desktop}
	if ntfy := notify.NewNtfy(cfg.Notifications.NtfyTopic, cfg.NotificationTimeout()); ntfy != nil {
		senders = append(senders, ntfy)
	}
	a.Notifier = notify.NewFanout(a.Feed, logger, cfg.NotificationTimeout(), senders...)
	a.Store.SetEmitter(a.Notifier)

	// Dismissing an alarm toast silences a sample still playing for it.
	a.Feed.OnDismiss(func(n model.Notification) {
		if n.Type != model.NotificationAlarm {
			return
		}
		if d, ok := a.Alerter.(audio.Dismisser); ok {
			d.Dismiss()
		}
	})

	a.Timers = scheduler.NewRegistry(a.Store, scheduler.Deps{
		Alerter:      alerter,
		Emitter:      a.Notifier,
		Highlights:   a.Highlights,
		Observer:     a.Metrics,
		Logger:       logger,
		HighlightFor: cfg.TimerHighlight(),
	})
	a.Store.SetTimers(a.Timers)

	a.Alarms = scheduler.NewScanner(a.Store, scheduler.Deps{
		Alerter:      alerter,
		Emitter:      a.Notifier,
		Highlights:   a.Highlights,
		Observer:     a.Metrics,
		Logger:       logger,
		HighlightFor: cfg.AlarmHighlight(),
	}, cfg.AlarmScanInterval())

	provider, err := musicsearch.NewYouTube(ctx, cfg.Search.YouTubeAPIKey)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Search = musicsearch.NewService(provider, musicsearch.Options{
		CacheTTL:   cfg.SearchCacheTTL(),
		Timeout:    cfg.SearchTimeout(),
		MaxResults: cfg.Search.MaxResults,
		Observer:   a.Metrics,
		Logger:     logger,
	})
	return a, nil
}

// Start asks for notification permission once and begins scanning alarms.
func (a *App) Start() {
	if a.started {
		return
	}
	a.started = true
	perm := a.Desktop.RequestPermission()
	a.Logger.WithField("permission", string(perm)).Debug("desktop notifications")
	a.Alarms.Start()
	sum := a.Store.Summary()
	a.Logger.WithFields(logrus.Fields{
		"tasks":  sum.Total,
		"alarms": sum.Alarms,
		"driver": a.Config.Storage.Driver,
	}).Info("focusdeck engine started")
}

// Close stops the scanner and every countdown, waits for native sends, and
// releases storage. Running flags are cleared before storage closes.
func (a *App) Close() error {
	if a.Alarms != nil {
		a.Alarms.Stop()
	}
	if a.Timers != nil {
		a.Timers.Close()
	}
	if a.Notifier != nil {
		a.Notifier.Wait()
	}
	return a.closeResources()
}

func (a *App) closeResources() error {
	var errs []error
	if c, ok := a.Alerter.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio: %w", err))
		}
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		a.Storage = nil
	}
	return errors.Join(errs...)
}
