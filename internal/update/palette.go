package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/focusdeck/internal/commands"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

const searchTimeout = 10 * time.Second

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	case "ctrl+c":
		m.Quitting = true
		return m, tea.Quit
	}
	if msg.Type == tea.KeyRunes {
		m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		m.commandInput.CursorEnd()
		m.Palette.Input = m.commandInput.Value()
		return m, nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	ctx := context.Background()
	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			t, err := m.deps.Store.Create(ctx, a.Text, tasks.CreateOptions{
				Priority:     a.Priority,
				Category:     a.Category,
				Tags:         a.Tags,
				AlarmTime:    a.Alarm,
				TimerSeconds: int(a.Timer / time.Second),
			})
			if err != nil {
				return commands.Result{}, err
			}
			m.SelectedTaskID = t.ID
			return commands.Result{Message: fmt.Sprintf("added: %s", t.Text)}, nil
		},
		Timer: func(a commands.TimerArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.startTimer(t.ID, a.Duration); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("timer started on %q: %s", t.Text, formatCountdown(a.Duration))}, nil
		},
		Stop: func(target commands.Target) (commands.Result, error) {
			t, err := m.resolve(target)
			if err != nil {
				return commands.Result{}, err
			}
			if m.deps.Timers == nil || !m.deps.Timers.Stop(t.ID) {
				return commands.Result{Message: fmt.Sprintf("no timer running on %q", t.Text)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("timer stopped on %q", t.Text)}, nil
		},
		Alarm: func(a commands.AlarmArgs) (commands.Result, error) {
			t, err := m.resolve(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			if _, err := m.deps.Store.SetAlarm(ctx, t.ID, a.Clock); err != nil {
				return commands.Result{}, err
			}
			if a.Clock == "" {
				return commands.Result{Message: fmt.Sprintf("alarm cleared on %q", t.Text)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("alarm set on %q for %s", t.Text, a.Clock)}, nil
		},
		Done: func(target commands.Target) (commands.Result, error) {
			t, err := m.resolve(target)
			if err != nil {
				return commands.Result{}, err
			}
			updated, err := m.deps.Store.ToggleComplete(ctx, t.ID)
			if err != nil {
				return commands.Result{}, err
			}
			if updated.Completed {
				return commands.Result{Message: fmt.Sprintf("completed %q", t.Text)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("reopened %q", t.Text)}, nil
		},
		Remove: func(target commands.Target) (commands.Result, error) {
			t, err := m.resolve(target)
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.deps.Store.Delete(ctx, t.ID); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("deleted %q", t.Text)}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			if m.deps.Search == nil {
				return commands.Result{}, errors.New("music search is not configured")
			}
			m.Search = SearchState{Query: a.Query, Pending: true}
			follow = searchCmd(m.deps.Search, a.Query)
			return commands.Result{Message: fmt.Sprintf("searching for %q", a.Query)}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			f, err := tasks.ParseListFilter(a.Status, a.Priority, a.Category)
			if err != nil {
				return commands.Result{}, err
			}
			m.Filter = f
			return commands.Result{Message: "showing " + f.String() + " tasks"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.deps.Logger.WithError(err).WithField("command", string(cmd.Type)).Debug("palette command failed")
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.refresh()
	return m, follow
}

type searchService interface {
	Search(ctx context.Context, raw string) ([]musicsearch.Track, error)
}

func searchCmd(s searchService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		tracks, err := s.Search(ctx, query)
		return SearchResultMsg{Query: query, Tracks: tracks, Err: err}
	}
}

// resolve maps a palette target to a task: "." is the selection, a small
// number is a 1-based row, "latest" is the most recently added task, and
// anything else is a task id.
func (m Model) resolve(target commands.Target) (model.Task, error) {
	switch {
	case target.Selected():
		if t, ok := m.selectedTask(); ok {
			return t, nil
		}
		return model.Task{}, errors.New("no task selected")
	case strings.EqualFold(string(target), "latest"):
		if t, ok := m.deps.Store.Latest(); ok {
			return t, nil
		}
		return model.Task{}, errors.New("no tasks yet")
	}
	if n, ok := target.Index(); ok && n <= len(m.Tasks) {
		return m.Tasks[n-1], nil
	}
	t, err := m.deps.Store.Get(string(target))
	if err != nil {
		return model.Task{}, fmt.Errorf("no task %s", target)
	}
	return t, nil
}
