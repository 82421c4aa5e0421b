package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
	"github.com/sandeepkv93/focusdeck/internal/scheduler"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

const maxBodyBytes = 1 << 20

type searchResponse struct {
	Tracks []musicsearch.Track `json:"tracks"`
	Error  string              `json:"error,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()["query"]
	if len(values) != 1 {
		writeJSON(w, http.StatusBadRequest, searchResponse{Tracks: []musicsearch.Track{}, Error: "Invalid query parameter"})
		return
	}
	if s.search == nil {
		writeJSON(w, http.StatusInternalServerError, searchResponse{Tracks: []musicsearch.Track{}, Error: "Failed to fetch videos"})
		return
	}

	tracks, err := s.search.Search(r.Context(), values[0])
	if err != nil {
		status, msg := http.StatusInternalServerError, "Failed to fetch videos"
		switch {
		case errors.Is(err, musicsearch.ErrInvalidQuery):
			status, msg = http.StatusBadRequest, "Invalid query parameter"
		case errors.Is(err, musicsearch.ErrQueryTooShort):
			status, msg = http.StatusBadRequest, "Query too short"
		case errors.Is(err, musicsearch.ErrUpstreamTimeout):
			msg = "Search operation timed out"
		}
		writeJSON(w, status, searchResponse{Tracks: []musicsearch.Track{}, Error: msg})
		return
	}
	if tracks == nil {
		tracks = []musicsearch.Track{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Tracks: tracks})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := tasks.ParseListFilter(q.Get("status"), q.Get("priority"), q.Get("category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": s.store.List(filter)})
}

type createTaskRequest struct {
	Text          string     `json:"text"`
	Priority      string     `json:"priority"`
	Category      string     `json:"category"`
	Tags          []string   `json:"tags"`
	AlarmTime     string     `json:"alarmTime"`
	TimerSeconds  int        `json:"timerSeconds"`
	DueDate       *time.Time `json:"dueDate"`
	EstimatedTime int        `json:"estimatedTime"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := s.store.Create(r.Context(), req.Text, tasks.CreateOptions{
		Priority:      req.Priority,
		Category:      req.Category,
		Tags:          req.Tags,
		AlarmTime:     req.AlarmTime,
		TimerSeconds:  req.TimerSeconds,
		DueDate:       req.DueDate,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleLatestTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.store.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "no tasks")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type editTaskRequest struct {
	Text          *string    `json:"text"`
	Priority      *string    `json:"priority"`
	Category      *string    `json:"category"`
	Tags          []string   `json:"tags"`
	DueDate       *time.Time `json:"dueDate"`
	ClearDueDate  bool       `json:"clearDueDate"`
	EstimatedTime *int       `json:"estimatedTime"`
}

func (s *Server) handleEditTask(w http.ResponseWriter, r *http.Request) {
	var req editTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := s.store.Edit(r.Context(), r.PathValue("id"), tasks.EditOptions{
		Text:          req.Text,
		Priority:      req.Priority,
		Category:      req.Category,
		Tags:          req.Tags,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		EstimatedTime: req.EstimatedTime,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	if s.highlights != nil {
		s.highlights.Clear(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.ToggleComplete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type timerRequest struct {
	Seconds int `json:"seconds"`
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req timerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if s.timers == nil {
		writeError(w, http.StatusServiceUnavailable, "timers unavailable")
		return
	}
	id := r.PathValue("id")
	if err := s.timers.Start(id, time.Duration(req.Seconds)*time.Second); err != nil {
		writeDomainError(w, err)
		return
	}
	task, err := s.store.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.Get(id); err != nil {
		writeDomainError(w, err)
		return
	}
	stopped := false
	if s.timers != nil {
		stopped = s.timers.Stop(id)
	}
	task, err := s.store.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stopped": stopped, "task": task})
}

type alarmRequest struct {
	Time string `json:"time"`
}

func (s *Server) handleSetAlarm(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := s.store.SetAlarm(r.Context(), r.PathValue("id"), req.Time)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	items := []model.Notification{}
	if s.feed != nil {
		if r.URL.Query().Get("all") == "1" {
			items = s.feed.Recent(0)
		} else {
			items = s.feed.Active(time.Now())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil || !s.feed.Dismiss(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHighlights(w http.ResponseWriter, r *http.Request) {
	hints := []highlight.Hint{}
	if s.highlights != nil {
		hints = s.highlights.Snapshot()
	}
	writeJSON(w, http.StatusOK, map[string]any{"highlights": hints})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sum := s.store.Summary()
	active := 0
	if s.timers != nil {
		active = len(s.timers.Active())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"tasks":     sum.Total,
		"completed": sum.Completed,
		"timers":    active,
		"alarms":    sum.Alarms,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// statusFor maps engine errors onto HTTP statuses.
func statusFor(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, tasks.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, tasks.ErrNotFound), errors.Is(err, scheduler.ErrUnknownTask):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrTaskCompleted):
		return http.StatusConflict
	case errors.Is(err, scheduler.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
