package audio

import (
	"context"
	"os/exec"
	"sync"
)

// Sample plays an audio file. A new alert stops the previous playback so
// alerts never overlap, and Dismiss stops it outright.
type Sample struct {
	mu       sync.Mutex
	path     string
	player   string
	lookPath func(string) (string, error)
	launch   launcher
	current  handle
}

func NewSample(path, player string) *Sample {
	return &Sample{
		path:     path,
		player:   player,
		lookPath: exec.LookPath,
		launch:   execLaunch,
	}
}

func (s *Sample) PlayAlert(context.Context) error {
	name, args, err := resolvePlayer(s.lookPath, s.player)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	h, err := s.launch(name, append(append([]string(nil), args...), s.path)...)
	if err != nil {
		return err
	}
	s.current = h
	return nil
}

func (s *Sample) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Sample) stopLocked() {
	if s.current == nil {
		return
	}
	_ = s.current.Stop()
	s.current = nil
}
