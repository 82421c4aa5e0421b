package update

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/focusdeck/internal/highlight"
	"github.com/sandeepkv93/focusdeck/internal/model"
	"github.com/sandeepkv93/focusdeck/internal/musicsearch"
	"github.com/sandeepkv93/focusdeck/internal/notify"
	"github.com/sandeepkv93/focusdeck/internal/scheduler"
	"github.com/sandeepkv93/focusdeck/internal/tasks"
)

// DefaultFocusDuration is used by the start key when the task has no
// configured timer length.
const DefaultFocusDuration = 25 * time.Minute

const tickInterval = time.Second

// Deps are the engine components the dashboard drives. Search may be nil.
type Deps struct {
	Store      *tasks.Store
	Timers     *scheduler.Registry
	Feed       *notify.Feed
	Highlights *highlight.Tracker
	Search     *musicsearch.Service
	Logger     logrus.FieldLogger
}

type StatusBar struct {
	Text    string
	IsError bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type SearchState struct {
	Query   string
	Pending bool
	Err     string
	Tracks  []musicsearch.Track
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Palette key.Binding
	Toggle  key.Binding
	Start   key.Binding
	Stop    key.Binding
	Delete  key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "down")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Palette: key.NewBinding(key.WithKeys("/", ":"), key.WithHelp("/", "command")),
		Toggle:  key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "done/undo")),
		Start:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "start timer")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop timer")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss toast")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Palette, k.Toggle, k.Start, k.Stop, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Delete},
		{k.Start, k.Stop, k.Add, k.Palette},
		{k.Dismiss, k.Help, k.Quit},
	}
}

type Model struct {
	deps Deps

	Tasks          []model.Task
	Filter         tasks.ListFilter
	SelectedTaskID string
	Toasts         []model.Notification
	Search         SearchState
	Palette        CommandPaletteState
	HelpVisible    bool
	Status         StatusBar
	Quitting       bool
	LastError      error
	Now            time.Time

	keys         keyMap
	taskTable    table.Model
	commandInput textinput.Model
	helpModel    help.Model
	toastCh      <-chan model.Notification
	unsubscribe  func()
	clock        func() time.Time
}

// NewModel subscribes to the toast feed. Call Close when the program exits.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Logger = l
	}
	if deps.Highlights == nil {
		deps.Highlights = highlight.NewTracker()
	}

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "add Write report !high #work ~25m"
	input.CharLimit = 256

	tbl := table.New(
		table.WithColumns(taskColumns()),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m := Model{
		deps:         deps,
		keys:         defaultKeys(),
		taskTable:    tbl,
		commandInput: input,
		helpModel:    help.New(),
		clock:        time.Now,
	}
	if deps.Feed != nil {
		m.toastCh, m.unsubscribe = deps.Feed.Subscribe(32)
	}
	m.Now = m.clock()
	m.refresh()
	return m
}

// Close drops the feed subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func taskColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Task", Width: 26},
		{Title: "Pri", Width: 6},
		{Title: "Category", Width: 9},
		{Title: "Timer", Width: 8},
		{Title: "Alarm", Width: 6},
	}
}

// Messages.

type TickMsg time.Time

type ToastMsg struct {
	Notification model.Notification
}

type SearchResultMsg struct {
	Query  string
	Tracks []musicsearch.Track
	Err    error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}
