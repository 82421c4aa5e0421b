package tasks

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/focusdeck/internal/model"
)

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ListFilter narrows List. Zero values and "all" match everything.
type ListFilter struct {
	Status   Status
	Priority model.Priority
	Category string
}

// ParseListFilter validates user-supplied filter values. Status and priority
// must be known values; any category is accepted.
func ParseListFilter(status, priority, category string) (ListFilter, error) {
	var f ListFilter

	switch s := Status(strings.ToLower(strings.TrimSpace(status))); s {
	case "", StatusAll:
	case StatusActive, StatusCompleted:
		f.Status = s
	default:
		return ListFilter{}, fmt.Errorf("%w: status %q is not one of all, active, completed", ErrInvalidFilter, status)
	}

	if p := strings.ToLower(strings.TrimSpace(priority)); p != "" && p != "all" {
		parsed, err := model.ParsePriority(p)
		if err != nil {
			return ListFilter{}, fmt.Errorf("%w: priority %q is not one of all, low, medium, high", ErrInvalidFilter, priority)
		}
		f.Priority = parsed
	}

	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, "all") {
		f.Category = c
	}
	return f, nil
}

func (f ListFilter) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) && f.Priority == "" && f.Category == ""
}

// Match reports whether t passes every set criterion. Categories compare
// case-insensitively.
func (f ListFilter) Match(t model.Task) bool {
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	return true
}

func (f ListFilter) String() string {
	if f.IsZero() {
		return "all"
	}
	parts := make([]string, 0, 3)
	if f.Status != "" && f.Status != StatusAll {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	return strings.Join(parts, " ")
}
