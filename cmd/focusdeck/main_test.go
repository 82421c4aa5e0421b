package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`[paths]
data_dir = %q

[storage]
driver = "file"

[audio]
mode = "off"

[logging]
level = "error"
format = "json"
`, filepath.Join(dir, "data"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLITaskLifecycle(t *testing.T) {
	t.Setenv("FOCUSDECK_YOUTUBE_API_KEY", "")
	configPath := writeTestConfig(t, t.TempDir())

	out, _, err := runCLI(t, []string{"tasks", "list"}, configPath)
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	if !strings.Contains(out, "No tasks yet") {
		t.Fatalf("expected empty list, got %q", out)
	}

	out, _, err = runCLI(t, []string{"tasks", "add", "Write", "report", "-p", "high", "-t", "work", "--alarm", "9:05"}, configPath)
	if err != nil {
		t.Fatalf("tasks add: %v", err)
	}
	if !strings.Contains(out, "Added task") || !strings.Contains(out, "Write report") {
		t.Fatalf("unexpected add output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"tasks", "add", "Stretch"}, configPath); err != nil {
		t.Fatalf("tasks add second: %v", err)
	}

	out, _, err = runCLI(t, []string{"tasks", "list"}, configPath)
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	for _, want := range []string{"Write report", "Stretch", "09:05", "high", "2 task(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in list output: %q", want, out)
		}
	}

	out, _, err = runCLI(t, []string{"tasks", "done", "1"}, configPath)
	if err != nil || !strings.Contains(out, "completed") {
		t.Fatalf("tasks done: %v %q", err, out)
	}
	out, _, err = runCLI(t, []string{"tasks", "list", "--open"}, configPath)
	if err != nil {
		t.Fatalf("tasks list --open: %v", err)
	}
	if strings.Contains(out, "Write report") {
		t.Fatalf("completed task should be hidden: %q", out)
	}

	out, _, err = runCLI(t, []string{"tasks", "list", "--status", "completed", "--category", "personal"}, configPath)
	if err != nil {
		t.Fatalf("tasks list --status completed: %v", err)
	}
	if !strings.Contains(out, "Write report") || strings.Contains(out, "Stretch") || !strings.Contains(out, "1 shown") {
		t.Fatalf("expected only the completed task: %q", out)
	}
	out, _, err = runCLI(t, []string{"tasks", "list", "--status", "active", "-p", "high"}, configPath)
	if err != nil || !strings.Contains(out, "No tasks match") {
		t.Fatalf("expected no matches: %v %q", err, out)
	}
	for _, args := range [][]string{
		{"tasks", "list", "--status", "later"},
		{"tasks", "list", "--priority", "urgent"},
		{"tasks", "list", "--open", "--status", "completed"},
	} {
		if _, _, err := runCLI(t, args, configPath); err == nil {
			t.Fatalf("%v: expected filter error", args)
		}
	}

	out, _, err = runCLI(t, []string{"tasks", "alarm", "latest", "07:30"}, configPath)
	if err != nil || !strings.Contains(out, "07:30") {
		t.Fatalf("tasks alarm: %v %q", err, out)
	}
	if _, _, err := runCLI(t, []string{"tasks", "alarm", "latest", "7am"}, configPath); err == nil {
		t.Fatal("expected invalid alarm time error")
	}

	if _, _, err := runCLI(t, []string{"tasks", "rm", "2"}, configPath); err != nil {
		t.Fatalf("tasks rm: %v", err)
	}
	if _, _, err := runCLI(t, []string{"tasks", "rm", "nope"}, configPath); err == nil {
		t.Fatal("expected unknown task error")
	}
	out, _, _ = runCLI(t, []string{"tasks", "list"}, configPath)
	if strings.Contains(out, "Stretch") {
		t.Fatalf("expected deleted task gone: %q", out)
	}
}

func TestCLIConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	t.Setenv("FOCUSDECK_YOUTUBE_API_KEY", "secret-key")
	configPath := writeTestConfig(t, dir)
	out, _, err = runCLI(t, []string{"config", "show"}, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "127.0.0.1:7420") {
		t.Fatalf("expected default bind in output: %q", out)
	}
	if strings.Contains(out, "secret-key") {
		t.Fatalf("api key must be masked: %q", out)
	}
}

func TestCLISearchWithoutKey(t *testing.T) {
	t.Setenv("FOCUSDECK_YOUTUBE_API_KEY", "")
	configPath := writeTestConfig(t, t.TempDir())

	_, _, err := runCLI(t, []string{"search", "lofi", "beats"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "FOCUSDECK_YOUTUBE_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
	if _, _, err := runCLI(t, []string{"search", " "}, configPath); err == nil {
		t.Fatal("expected invalid query error")
	}
}

func TestCLIRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[unknown]\nkey = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, []string{"tasks", "list"}, path); err == nil {
		t.Fatal("expected unknown config section to fail")
	}
}
