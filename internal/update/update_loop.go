package update

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if m.toastCh != nil {
		cmds = append(cmds, waitForToastCmd(m.toastCh))
	}
	return tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func waitForToastCmd(ch <-chan model.Notification) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return ToastMsg{Notification: n}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.helpModel.Width = typed.Width
		if h := typed.Height - 16; h > 4 {
			m.taskTable.SetHeight(h)
		}
		return m, nil
	case TickMsg:
		m.Now = time.Time(typed)
		m.refresh()
		return m, tickCmd()
	case ToastMsg:
		m.refresh()
		m.deps.Logger.WithField("type", typed.Notification.Type).Debug("toast received")
		return m, waitForToastCmd(m.toastCh)
	case SearchResultMsg:
		if typed.Query != m.Search.Query {
			return m, nil
		}
		m.Search.Pending = false
		m.Search.Tracks = typed.Tracks
		m.Search.Err = ""
		if typed.Err != nil {
			m.Search.Err = typed.Err.Error()
			m.Status = StatusBar{Text: "search failed: " + typed.Err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: fmt.Sprintf("%d track(s) for %q", len(typed.Tracks), typed.Query)}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Palette):
		m.openPalette("")
		return m, nil
	case key.Matches(msg, m.keys.Add):
		m.openPalette("add ")
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.HelpVisible = !m.HelpVisible
		m.helpModel.ShowAll = m.HelpVisible
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.taskTable.MoveUp(1)
		m.syncSelection()
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.taskTable.MoveDown(1)
		m.syncSelection()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if len(m.Toasts) > 0 && m.deps.Feed != nil {
			m.deps.Feed.Dismiss(m.Toasts[0].ID)
			m.refresh()
		}
		return m, nil
	}

	if m.SelectedTaskID == "" {
		return m, nil
	}
	var err error
	switch {
	case key.Matches(msg, m.keys.Toggle):
		_, err = m.deps.Store.ToggleComplete(ctx, m.SelectedTaskID)
	case key.Matches(msg, m.keys.Start):
		err = m.startTimer(m.SelectedTaskID, 0)
	case key.Matches(msg, m.keys.Stop):
		if m.deps.Timers != nil && !m.deps.Timers.Stop(m.SelectedTaskID) {
			m.Status = StatusBar{Text: "no timer running"}
		}
	case key.Matches(msg, m.keys.Delete):
		err = m.deps.Store.Delete(ctx, m.SelectedTaskID)
	default:
		return m, nil
	}
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
	m.refresh()
	return m, nil
}

// startTimer falls back to the task's configured length, then to
// DefaultFocusDuration, when d is zero.
func (m *Model) startTimer(taskID string, d time.Duration) error {
	if m.deps.Timers == nil {
		return fmt.Errorf("timers unavailable")
	}
	if d <= 0 {
		d = DefaultFocusDuration
		if t, err := m.deps.Store.Get(taskID); err == nil && t.Timer > 0 {
			d = time.Duration(t.Timer) * time.Second
		}
	}
	if err := m.deps.Timers.Start(taskID, d); err != nil {
		return err
	}
	m.Status = StatusBar{Text: fmt.Sprintf("timer started: %s", formatCountdown(d))}
	return nil
}

func (m *Model) openPalette(prefill string) {
	m.Palette.Active = true
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Palette.Input = prefill
}

// refresh re-reads the store and feed and keeps the cursor on the selected
// task when it still exists.
func (m *Model) refresh() {
	if m.deps.Store != nil {
		m.Tasks = m.deps.Store.List(m.Filter)
	}
	if m.deps.Feed != nil {
		m.Toasts = m.deps.Feed.Active(m.Now)
	}

	rows := make([]table.Row, 0, len(m.Tasks))
	cursor := -1
	for i, t := range m.Tasks {
		rows = append(rows, taskRow(i, t, m.Now))
		if t.ID == m.SelectedTaskID {
			cursor = i
		}
	}
	m.taskTable.SetRows(rows)
	if len(rows) == 0 {
		m.SelectedTaskID = ""
		return
	}
	if cursor < 0 {
		cursor = min(m.taskTable.Cursor(), len(rows)-1)
		if cursor < 0 {
			cursor = 0
		}
	}
	m.taskTable.SetCursor(cursor)
	m.SelectedTaskID = m.Tasks[cursor].ID
}

func (m *Model) syncSelection() {
	i := m.taskTable.Cursor()
	if i >= 0 && i < len(m.Tasks) {
		m.SelectedTaskID = m.Tasks[i].ID
	}
}

func taskRow(i int, t model.Task, now time.Time) table.Row {
	text := t.Text
	if t.Completed {
		text = "✓ " + text
	}
	timer := "-"
	switch {
	case t.IsTimerRunning:
		timer = "▶ " + formatCountdown(t.Remaining(now))
	case t.Timer > 0:
		timer = formatCountdown(time.Duration(t.Timer) * time.Second)
	}
	alarm := "-"
	if t.AlarmArmed() {
		alarm = t.AlarmTime
	}
	return table.Row{strconv.Itoa(i + 1), text, string(t.Priority), t.Category, timer, alarm}
}

func (m Model) selectedTask() (model.Task, bool) {
	for _, t := range m.Tasks {
		if t.ID == m.SelectedTaskID {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var highlights []views.HighlightData
	texts := make(map[string]string, len(m.Tasks))
	for _, t := range m.Tasks {
		texts[t.ID] = t.Text
	}
	for _, h := range m.deps.Highlights.Snapshot() {
		if text, ok := texts[h.TaskID]; ok {
			highlights = append(highlights, views.HighlightData{Text: text, Kind: string(h.Kind)})
		}
	}

	right := m.renderDetail() + views.RenderSearchPanel(m.searchPanelData())
	if m.HelpVisible {
		right += "\n\n" + views.RenderMarkdown(helpMarkdown)
	}

	toasts := make([]views.ToastData, 0, len(m.Toasts))
	for _, n := range m.Toasts {
		toasts = append(toasts, views.ToastData{Type: string(n.Type), Title: n.Title, Message: n.Message})
	}

	return views.RenderApp(views.AppData{
		Header:     m.header(),
		LeftPane:   views.RenderTaskPanel(m.taskTable.View(), highlights, len(m.Tasks) == 0),
		RightPane:  right,
		Toasts:     views.RenderToasts(toasts),
		StatusLine: m.Status.Text,
		StatusErr:  m.Status.IsError,
		Palette:    views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		Footer:     m.helpModel.View(m.keys),
	})
}

func (m Model) header() string {
	total, done, running, alarms := len(m.Tasks), 0, 0, 0
	for _, t := range m.Tasks {
		if t.Completed {
			done++
		}
		if t.IsTimerRunning {
			running++
		}
		if t.AlarmArmed() {
			alarms++
		}
	}
	out := fmt.Sprintf("focusdeck | tasks: %d | done: %d | running: %d | alarms: %d | %s",
		total, done, running, alarms, m.Now.Format("15:04:05"))
	if !m.Filter.IsZero() {
		out += " | filter: " + m.Filter.String()
	}
	return out
}

func (m Model) renderDetail() string {
	t, ok := m.selectedTask()
	if !ok {
		return views.RenderTaskDetail(views.TaskDetailData{})
	}
	timer := "-"
	switch {
	case t.IsTimerRunning && t.TimerEndsAt != nil:
		timer = fmt.Sprintf("%s left (ends %s)", formatCountdown(t.Remaining(m.Now)), t.TimerEndsAt.Format("15:04:05"))
	case t.Timer > 0:
		timer = formatCountdown(time.Duration(t.Timer)*time.Second) + " (stopped)"
	}
	alarm := "-"
	if t.AlarmArmed() {
		clock, err := model.ParseAlarmClock(t.AlarmTime)
		if err == nil {
			alarm = fmt.Sprintf("%s (%s)", t.AlarmTime, humanize.RelTime(clock.NextAfter(m.Now), m.Now, "ago", "from now"))
		}
	}
	hl := ""
	if h, ok := m.deps.Highlights.Active(t.ID); ok {
		hl = string(h.Kind)
	}
	return views.RenderTaskDetail(views.TaskDetailData{
		ID:        t.ID,
		Text:      t.Text,
		Priority:  string(t.Priority),
		Category:  t.Category,
		Tags:      t.Tags,
		Created:   humanize.RelTime(t.CreatedAt, m.Now, "ago", "from now"),
		Timer:     timer,
		Alarm:     alarm,
		Completed: t.Completed,
		Highlight: hl,
	})
}

func (m Model) searchPanelData() views.SearchPanelData {
	data := views.SearchPanelData{Query: m.Search.Query, Pending: m.Search.Pending, Err: m.Search.Err}
	for _, tr := range m.Search.Tracks {
		data.Tracks = append(data.Tracks, views.TrackData{Title: tr.Title, Channel: tr.Channel, URL: watchURL(tr.ID)})
	}
	return data
}
