package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskDetailData struct {
	ID        string
	Text      string
	Priority  string
	Category  string
	Tags      []string
	Created   string
	Timer     string
	Alarm     string
	Completed bool
	Highlight string
}

type HighlightData struct {
	Text string
	Kind string
}

type ToastData struct {
	Type    string
	Title   string
	Message string
}

type TrackData struct {
	Title   string
	Channel string
	URL     string
}

type SearchPanelData struct {
	Query   string
	Pending bool
	Err     string
	Tracks  []TrackData
}

var (
	timerGlow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	alarmGlow = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	toastStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("10")).Padding(0, 1),
		"warning": lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1),
		"alarm":   lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("11")).Padding(0, 1),
		"info":    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1),
	}
)

func RenderTaskPanel(tableView string, highlights []HighlightData, empty bool) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	if empty {
		b.WriteString(dimStyle.Render("(no tasks yet, press a to add one)"))
		return b.String()
	}
	b.WriteString(tableView)
	if len(highlights) > 0 {
		b.WriteString("\n")
		for _, h := range highlights {
			b.WriteString("\n" + RenderHighlight(h))
		}
	}
	return strings.TrimSpace(b.String())
}

// RenderHighlight draws the glow for a task that just finished a countdown
// or hit its alarm.
func RenderHighlight(h HighlightData) string {
	switch h.Kind {
	case "alarm":
		return alarmGlow.Render(" ALARM ") + " " + h.Text
	default:
		return timerGlow.Render(" DONE ") + " " + h.Text
	}
}

func RenderTaskDetail(data TaskDetailData) string {
	if strings.TrimSpace(data.ID) == "" {
		return "details:\n(no selection)"
	}
	state := "open"
	if data.Completed {
		state = "completed"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(fmt.Sprintf("%s\n", data.Text))
	b.WriteString(fmt.Sprintf("id: %s\n", data.ID))
	b.WriteString(fmt.Sprintf("state: %s\n", state))
	b.WriteString(fmt.Sprintf("priority: %s | category: %s\n", data.Priority, data.Category))
	if len(data.Tags) > 0 {
		b.WriteString("tags: #" + strings.Join(data.Tags, " #") + "\n")
	}
	b.WriteString(fmt.Sprintf("timer: %s\n", data.Timer))
	b.WriteString(fmt.Sprintf("alarm: %s\n", data.Alarm))
	b.WriteString(fmt.Sprintf("added: %s", data.Created))
	if data.Highlight != "" {
		b.WriteString("\n" + RenderHighlight(HighlightData{Text: data.Text, Kind: data.Highlight}))
	}
	return b.String()
}

func RenderSearchPanel(data SearchPanelData) string {
	if data.Query == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n\nmusic: %q\n", data.Query))
	switch {
	case data.Pending:
		b.WriteString(dimStyle.Render("searching..."))
	case data.Err != "":
		b.WriteString(errorStyle.Render(data.Err))
	case len(data.Tracks) == 0:
		b.WriteString(dimStyle.Render("(no results)"))
	default:
		for i, tr := range data.Tracks {
			b.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, tr.Title, dimStyle.Render(tr.Channel+" "+tr.URL)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderToasts(toasts []ToastData) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style, ok := toastStyles[t.Type]
		if !ok {
			style = toastStyles["info"]
		}
		rendered = append(rendered, style.Render(lipgloss.NewStyle().Bold(true).Render(t.Title)+"\n"+t.Message))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}
