package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/metrics"
	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
	"github.com/sandeepkv93/focusdeck/internal/notify"
	"github.com/sandeepkv93/focusdeck/internal/scheduler"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Store      *tasks.Store
	Timers     *scheduler.Registry
	Feed       *notify.Feed
	Highlights *highlight.Tracker
	Search     *musicsearch.Service
	Metrics    *metrics.Metrics
	Logger     logrus.FieldLogger
}

// Server exposes the music search proxy and the task API.
type Server struct {
	store      *tasks.Store
	timers     *scheduler.Registry
	feed       *notify.Feed
	highlights *highlight.Tracker
	search     *musicsearch.Service
	metrics    *metrics.Metrics
	logger     logrus.FieldLogger

	handler  http.Handler
	server   *http.Server
	listener net.Listener
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	s := &Server{
		store:      opts.Store,
		timers:     opts.Timers,
		feed:       opts.Feed,
		highlights: opts.Highlights,
		search:     opts.Search,
		metrics:    opts.Metrics,
		logger:     logger.WithField("component", "http"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/music/search", s.handleSearch)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/latest", s.handleLatestTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", s.handleEditTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("POST /api/tasks/{id}/timer", s.handleStartTimer)
	mux.HandleFunc("DELETE /api/tasks/{id}/timer", s.handleStopTimer)
	mux.HandleFunc("PUT /api/tasks/{id}/alarm", s.handleSetAlarm)

	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	mux.HandleFunc("DELETE /api/notifications/{id}", s.handleDismissNotification)
	mux.HandleFunc("GET /api/highlights", s.handleHighlights)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	var h http.Handler = mux
	h = s.metrics.Middleware(h)
	h = s.logRequests(h)
	h = requestID(h)
	h = s.recoverPanics(h)
	s.handler = h
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Start listens on bind and serves until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context, bind string) error {
	bind = strings.TrimSpace(bind)
	if bind == "" {
		return errors.New("httpapi: bind address is required")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("api server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.WithField("address", listener.Addr().String()).Info("api server listening")
	return nil
}

// Addr is the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
