package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestNewJSONUsesRenamedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Output: &buf, Fields: logrus.Fields{"service": "focusdeck"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.WithField("task_id", "42").Debug("timer started")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	for _, key := range []string{"ts", "level", "message", "task_id", "service"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("missing key %q in %v", key, entry)
		}
	}
	if entry["message"] != "timer started" || entry["level"] != "debug" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestAutoFormatIsJSONOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", logger.Formatter)
	}
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatal("default level must be info")
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected bad level error")
	}
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected bad format error")
	}
}

func TestWithRequestID(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	WithRequestID(logger, "req-1").Info("done")
	WithRequestID(logger, "").Info("bare")

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Data["request_id"] != "req-1" {
		t.Fatalf("expected request id, got %v", entries[0].Data)
	}
	if _, ok := entries[1].Data["request_id"]; ok {
		t.Fatal("empty request id must not be attached")
	}
}
