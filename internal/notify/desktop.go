package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

type commandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Desktop posts OS notifications via notify-send on Linux and osascript on
// macOS. Sends are silent no-ops unless permission was granted.
type Desktop struct {
	mu         sync.Mutex
	permission Permission
	goos       string
	lookPath   func(string) (string, error)
	run        commandRunner
}

// NewDesktop starts undecided when enabled, denied otherwise.
func NewDesktop(enabled bool) *Desktop {
	perm := PermissionDenied
	if enabled {
		perm = PermissionDefault
	}
	return &Desktop{
		permission: perm,
		goos:       runtime.GOOS,
		lookPath:   exec.LookPath,
		run:        execRunner,
	}
}

func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// RequestPermission resolves an undecided permission once by probing for a
// usable notifier binary. Decided permissions are returned unchanged.
func (d *Desktop) RequestPermission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission != PermissionDefault {
		return d.permission
	}
	bin := d.binary()
	if bin == "" {
		d.permission = PermissionDenied
		return d.permission
	}
	if _, err := d.lookPath(bin); err != nil {
		d.permission = PermissionDenied
		return d.permission
	}
	d.permission = PermissionGranted
	return d.permission
}

func (d *Desktop) binary() string {
	switch d.goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (d *Desktop) Send(ctx context.Context, n model.Notification) error {
	if d.Permission() != PermissionGranted {
		return nil
	}
	switch d.goos {
	case "linux":
		urgency := "normal"
		if n.Type == model.NotificationAlarm {
			urgency = "critical"
		}
		return d.run(ctx, "notify-send", "--app-name=focusdeck", "-u", urgency, n.Title, n.Message)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Message), escapeAppleScript(n.Title))
		return d.run(ctx, "osascript", "-e", script)
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
