package views

import (
	"strings"
	"testing"
)

func TestRenderAppIncludesSections(t *testing.T) {
	out := RenderApp(AppData{
		Header:     "focusdeck",
		LeftPane:   "tasks:",
		RightPane:  "details:",
		StatusLine: "ready",
		Footer:     "q quit",
	})
	for _, want := range []string{"focusdeck", "tasks:", "details:", "ready", "q quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderTaskPanelEmpty(t *testing.T) {
	out := RenderTaskPanel("", nil, true)
	if !strings.Contains(out, "no tasks yet") {
		t.Fatalf("expected empty hint, got %q", out)
	}
}

func TestRenderHighlightKinds(t *testing.T) {
	if out := RenderHighlight(HighlightData{Text: "Write", Kind: "alarm"}); !strings.Contains(out, "ALARM") {
		t.Fatalf("expected alarm glow, got %q", out)
	}
	if out := RenderHighlight(HighlightData{Text: "Write", Kind: "timer"}); !strings.Contains(out, "DONE") {
		t.Fatalf("expected timer glow, got %q", out)
	}
}

func TestRenderTaskDetail(t *testing.T) {
	if out := RenderTaskDetail(TaskDetailData{}); !strings.Contains(out, "no selection") {
		t.Fatalf("unexpected output %q", out)
	}
	out := RenderTaskDetail(TaskDetailData{ID: "1", Text: "Stretch", Priority: "low", Category: "Health", Tags: []string{"am"}, Timer: "-", Alarm: "07:00", Created: "now"})
	for _, want := range []string{"Stretch", "#am", "alarm: 07:00", "priority: low"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestRenderSearchPanelStates(t *testing.T) {
	if RenderSearchPanel(SearchPanelData{}) != "" {
		t.Fatal("no query should render nothing")
	}
	if out := RenderSearchPanel(SearchPanelData{Query: "lofi", Pending: true}); !strings.Contains(out, "searching") {
		t.Fatalf("unexpected pending output %q", out)
	}
	out := RenderSearchPanel(SearchPanelData{Query: "lofi", Tracks: []TrackData{{Title: "Beats", Channel: "Chill"}}})
	if !strings.Contains(out, "1. Beats") {
		t.Fatalf("expected track listing, got %q", out)
	}
}

func TestRenderToasts(t *testing.T) {
	if RenderToasts(nil) != "" {
		t.Fatal("expected empty output")
	}
	out := RenderToasts([]ToastData{{Type: "alarm", Title: "Alarm", Message: "wake"}, {Type: "weird", Title: "x", Message: "y"}})
	if !strings.Contains(out, "Alarm") || !strings.Contains(out, "wake") {
		t.Fatalf("unexpected toast output %q", out)
	}
}
