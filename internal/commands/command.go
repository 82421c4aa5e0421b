package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeTimer  Type = "timer"
	TypeStop   Type = "stop"
	TypeAlarm  Type = "alarm"
	TypeDone   Type = "done"
	TypeRemove Type = "rm"
	TypeSearch Type = "search"
	TypeFilter Type = "filter"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs is the parsed form of
//
//	/add <text> [!priority] [+Category] [#tag ...] [@HH:MM] [~duration]
type AddArgs struct {
	Text     string
	Priority string
	Category string
	Tags     []string
	Alarm    string
	Timer    time.Duration
}

// Target names a task by 1-based row number, id, or "." for the selection.
type Target string

type TimerArgs struct {
	Target   Target
	Duration time.Duration
}

type AlarmArgs struct {
	Target Target
	// Clock is empty when the alarm should be cleared.
	Clock string
}

type SearchArgs struct {
	Query string
}

// FilterArgs is the parsed form of
//
//	/filter [all|active|completed] [!priority] [+Category]
//
// A bare /filter clears every criterion.
type FilterArgs struct {
	Status   string
	Priority string
	Category string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Timer  *TimerArgs
	Alarm  *AlarmArgs
	Target Target
	Search *SearchArgs
	Filter *FilterArgs
}

var aliases = map[string]Type{
	"new":    TypeAdd,
	"start":  TypeTimer,
	"pause":  TypeStop,
	"toggle": TypeDone,
	"delete": TypeRemove,
	"del":    TypeRemove,
	"music":  TypeSearch,
	"show":   TypeFilter,
}

var filterStatuses = map[string]string{
	"all":       "all",
	"active":    "active",
	"open":      "active",
	"completed": "completed",
	"done":      "completed",
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	if alias, ok := aliases[string(head)]; ok {
		head = alias
	}
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeTimer:
		return parseTimer(input, args)
	case TypeAlarm:
		return parseAlarm(input, args)
	case TypeStop, TypeDone, TypeRemove:
		return parseTargetOnly(input, head, args)
	case TypeSearch:
		return parseSearch(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	var out AddArgs
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg) > 1 && arg[0] == '!':
			p, err := model.ParsePriority(arg[1:])
			if err != nil {
				return Command{}, invalid("unknown priority %q", arg[1:])
			}
			out.Priority = string(p)
		case len(arg) > 1 && arg[0] == '+':
			out.Category = arg[1:]
		case len(arg) > 1 && arg[0] == '#':
			out.Tags = append(out.Tags, arg[1:])
		case len(arg) > 1 && arg[0] == '@':
			clock, err := model.ParseAlarmClock(arg[1:])
			if err != nil {
				return Command{}, invalid("bad alarm time %q, want HH:MM", arg[1:])
			}
			out.Alarm = clock.String()
		case len(arg) > 1 && arg[0] == '~':
			d, err := ParseDuration(arg[1:])
			if err != nil {
				return Command{}, err
			}
			out.Timer = d
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, invalid("add requires task text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseTimer(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("timer requires a target and a duration")
	}
	target, rest := Target("."), args
	if len(args) >= 2 {
		target, rest = Target(args[0]), args[1:]
	}
	d, err := ParseDuration(strings.Join(rest, ""))
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeTimer, Raw: raw, Target: target, Timer: &TimerArgs{Target: target, Duration: d}}, nil
}

func parseAlarm(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("alarm requires a time (HH:MM) or off")
	}
	target, value := Target("."), args[0]
	if len(args) >= 2 {
		target, value = Target(args[0]), args[1]
	}
	clock := ""
	switch strings.ToLower(value) {
	case "off", "none", "clear":
	default:
		c, err := model.ParseAlarmClock(value)
		if err != nil {
			return Command{}, invalid("bad alarm time %q, want HH:MM", value)
		}
		clock = c.String()
	}
	return Command{Type: TypeAlarm, Raw: raw, Target: target, Alarm: &AlarmArgs{Target: target, Clock: clock}}, nil
}

func parseTargetOnly(raw string, t Type, args []string) (Command, error) {
	target := Target(".")
	if len(args) > 0 {
		target = Target(args[0])
	}
	return Command{Type: t, Raw: raw, Target: target}, nil
}

func parseSearch(raw string, args []string) (Command, error) {
	q := strings.TrimSpace(strings.Join(args, " "))
	if q == "" {
		return Command{}, invalid("search requires a query")
	}
	return Command{Type: TypeSearch, Raw: raw, Search: &SearchArgs{Query: q}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	var out FilterArgs
	for _, arg := range args {
		switch {
		case len(arg) > 1 && arg[0] == '!':
			if strings.EqualFold(arg[1:], "all") {
				out.Priority = ""
				continue
			}
			p, err := model.ParsePriority(arg[1:])
			if err != nil {
				return Command{}, invalid("unknown priority %q", arg[1:])
			}
			out.Priority = string(p)
		case len(arg) > 1 && arg[0] == '+':
			out.Category = arg[1:]
			if strings.EqualFold(out.Category, "all") {
				out.Category = ""
			}
		default:
			status, ok := filterStatuses[strings.ToLower(arg)]
			if !ok {
				return Command{}, invalid("unknown filter %q, want all, active or completed", arg)
			}
			out.Status = status
		}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &out}, nil
}

// ParseDuration accepts Go durations ("25m", "1h30m") and bare minutes ("25").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 0, invalid("duration is required")
	}
	var d time.Duration
	if n, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(n) * time.Minute
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, invalid("bad duration %q", raw)
		}
		d = parsed
	}
	if d < time.Second {
		return 0, invalid("duration must be at least one second")
	}
	return d.Truncate(time.Second), nil
}

// Index reports the 1-based row number a target names, if it is one.
func (t Target) Index() (int, bool) {
	s := strings.TrimPrefix(string(t), "#")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || len(s) > 6 {
		return 0, false
	}
	return n, true
}

func (t Target) Selected() bool { return t == "" || t == "." }

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}
