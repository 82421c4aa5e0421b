package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

var ErrNoPlayer = errors.New("audio: no playback command available")

// Alerter plays the audible cue for timer expiry and alarms.
type Alerter interface {
	PlayAlert(ctx context.Context) error
}

// Dismisser is implemented by alerters whose playback can be cut short.
type Dismisser interface {
	Dismiss()
}

const (
	ModeTone   = "tone"
	ModeSample = "sample"
	ModeBell   = "bell"
	ModeOff    = "off"
)

// New builds the alerter for mode. player overrides playback command lookup.
func New(mode, samplePath, player string) (Alerter, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeTone, "":
		return NewTone(DefaultToneSpec(), player), nil
	case ModeSample:
		if strings.TrimSpace(samplePath) == "" {
			return nil, errors.New("audio: sample mode requires a sample path")
		}
		return NewSample(samplePath, player), nil
	case ModeBell:
		return NewBell(os.Stdout), nil
	case ModeOff:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("audio: unsupported mode %q", mode)
	}
}

type Noop struct{}

func (Noop) PlayAlert(context.Context) error { return nil }

// Bell rings the terminal bell three times.
type Bell struct {
	mu  sync.Mutex
	w   io.Writer
	gap time.Duration
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w, gap: 200 * time.Millisecond}
}

func (b *Bell) PlayAlert(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < 3; i++ {
		if i > 0 {
			if err := sleepContext(ctx, b.gap); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(b.w, "\a"); err != nil {
			return err
		}
	}
	return nil
}

// handle is a running playback.
type handle interface {
	Stop() error
}

type launcher func(name string, args ...string) (handle, error)

type execHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (h *execHandle) Stop() error {
	select {
	case <-h.done:
		return nil
	default:
	}
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func execLaunch(name string, args ...string) (handle, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	h := &execHandle{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

var playerCandidates = []string{"paplay", "aplay", "afplay", "ffplay"}

// resolvePlayer returns the playback command and its leading arguments.
func resolvePlayer(lookPath func(string) (string, error), preferred string) (string, []string, error) {
	candidates := playerCandidates
	if p := strings.TrimSpace(preferred); p != "" {
		candidates = []string{p}
	}
	for _, name := range candidates {
		if _, err := lookPath(name); err != nil {
			continue
		}
		return name, playerArgs(name), nil
	}
	return "", nil, ErrNoPlayer
}

func playerArgs(name string) []string {
	switch name {
	case "aplay":
		return []string{"-q"}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	default:
		return nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
