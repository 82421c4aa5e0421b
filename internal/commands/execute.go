package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Timer  func(TimerArgs) (Result, error)
	Stop   func(Target) (Result, error)
	Alarm  func(AlarmArgs) (Result, error)
	Done   func(Target) (Result, error)
	Remove func(Target) (Result, error)
	Search func(SearchArgs) (Result, error)
	Filter func(FilterArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeTimer:
		if handlers.Timer == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Timer(*cmd.Timer)
	case TypeStop:
		if handlers.Stop == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Stop(cmd.Target)
	case TypeAlarm:
		if handlers.Alarm == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Alarm(*cmd.Alarm)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(cmd.Target)
	case TypeRemove:
		if handlers.Remove == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Remove(cmd.Target)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Search(*cmd.Search)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) *CommandError {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
